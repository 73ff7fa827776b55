package models

import (
	"mediaalbums/gallery"
)

// Upload holds the columns every media kind shares
type Upload struct {
	ID          uint64 `gorm:"primaryKey"`
	AlbumID     uint64 `gorm:"not null;index"`
	Album       Album  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name        string `gorm:"type:varchar(200);not null"`
	CreatedAt   int64  `gorm:"not null"`
	Ordering    int    `gorm:"not null;index"`
	Caption     string `gorm:"type:varchar(255)"`
	Description string `gorm:"type:text"`
	IsCover     bool   `gorm:"column:album_photo;not null"`
}

func (u *Upload) ItemID() uint64    { return u.ID }
func (u *Upload) ItemName() string  { return u.Name }
func (u *Upload) ItemOrdering() int { return u.Ordering }
func (u *Upload) AlbumCover() bool  { return u.IsCover }
func (u *Upload) upload() *Upload   { return u }

func (u *Upload) validate(v *gallery.ValidationError) {
	v.Required("name", u.Name)
	if len(u.Name) > 200 {
		v.Add("name", "Ensure this value has at most 200 characters.")
	}
	if len(u.Caption) > 255 {
		v.Add("caption", "Ensure this value has at most 255 characters.")
	}
	if u.AlbumID == 0 {
		v.Add("album_id", "This field is required.")
	}
}

// MediaItem is a persisted photo, video or audio clip
type MediaItem interface {
	gallery.Item
	Validate(cfg gallery.Config) error
	// FileFields lists the form/column names of the stored files
	FileFields() []string
	File(field string) string
	SetFile(field, path string)
	StoredFiles() []string
	upload() *Upload
}

type Photo struct {
	Upload
	Image string `gorm:"type:varchar(300);not null"`
	Thumb string `gorm:"type:varchar(300)"`
}

type Video struct {
	Upload
	VideoFile1 string `gorm:"column:video_file_1;type:varchar(300);not null"`
	VideoFile2 string `gorm:"column:video_file_2;type:varchar(300)"`
	Poster     string `gorm:"type:varchar(300)"`
}

type Audio struct {
	Upload
	AudioFile1 string `gorm:"column:audio_file_1;type:varchar(300);not null"`
	AudioFile2 string `gorm:"column:audio_file_2;type:varchar(300)"`
	CoverArt   string `gorm:"type:varchar(300)"`
}

// UserPhoto is a photo submitted by a site visitor, waiting for approval.
// It always lives in the pending album.
type UserPhoto struct {
	Photo
	AddedByID *uint64
	AddedBy   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (Video) TableName() string     { return "video_files" }
func (Audio) TableName() string     { return "audio_files" }
func (UserPhoto) TableName() string { return "user_photos" }

func (p *Photo) ItemKind() gallery.Kind { return gallery.KindPhoto }
func (v *Video) ItemKind() gallery.Kind { return gallery.KindVideo }
func (a *Audio) ItemKind() gallery.Kind { return gallery.KindAudio }

func (p *Photo) CoverImage() string { return p.Image }
func (v *Video) CoverImage() string { return v.Poster }
func (a *Audio) CoverImage() string { return a.CoverArt }

func (p *Photo) Validate(cfg gallery.Config) error {
	var v gallery.ValidationError
	p.validate(&v)
	v.Required("image", p.Image)
	return v.Err()
}

func (vf *Video) Validate(cfg gallery.Config) error {
	var v gallery.ValidationError
	vf.validate(&v)
	v.Required("video_file_1", vf.VideoFile1)
	v.CheckExtension("video_file_1", vf.VideoFile1, cfg.VideoFormat1Extension)
	if cfg.VideoFormat2Required {
		v.Required("video_file_2", vf.VideoFile2)
	}
	v.CheckExtension("video_file_2", vf.VideoFile2, cfg.VideoFormat2Extension)
	if vf.IsCover && vf.Poster == "" {
		v.Add("album_photo", "You must upload a poster image if you want to use this video as the album cover.")
	}
	return v.Err()
}

func (a *Audio) Validate(cfg gallery.Config) error {
	var v gallery.ValidationError
	a.validate(&v)
	v.Required("audio_file_1", a.AudioFile1)
	v.CheckExtension("audio_file_1", a.AudioFile1, cfg.AudioFormat1Extension)
	if cfg.AudioFormat2Required {
		v.Required("audio_file_2", a.AudioFile2)
	}
	v.CheckExtension("audio_file_2", a.AudioFile2, cfg.AudioFormat2Extension)
	if a.IsCover && a.CoverArt == "" {
		v.Add("album_photo", "You must upload cover art if you want to use this audio file as the album cover.")
	}
	return v.Err()
}

func (p *Photo) FileFields() []string { return []string{"image"} }
func (v *Video) FileFields() []string { return []string{"video_file_1", "video_file_2", "poster"} }
func (a *Audio) FileFields() []string { return []string{"audio_file_1", "audio_file_2", "cover_art"} }

func (p *Photo) File(field string) string {
	switch field {
	case "image":
		return p.Image
	case "thumb":
		return p.Thumb
	}
	return ""
}

func (v *Video) File(field string) string {
	switch field {
	case "video_file_1":
		return v.VideoFile1
	case "video_file_2":
		return v.VideoFile2
	case "poster":
		return v.Poster
	}
	return ""
}

func (a *Audio) File(field string) string {
	switch field {
	case "audio_file_1":
		return a.AudioFile1
	case "audio_file_2":
		return a.AudioFile2
	case "cover_art":
		return a.CoverArt
	}
	return ""
}

func (p *Photo) SetFile(field, path string) {
	switch field {
	case "image":
		p.Image = path
	case "thumb":
		p.Thumb = path
	}
}

func (v *Video) SetFile(field, path string) {
	switch field {
	case "video_file_1":
		v.VideoFile1 = path
	case "video_file_2":
		v.VideoFile2 = path
	case "poster":
		v.Poster = path
	}
}

func (a *Audio) SetFile(field, path string) {
	switch field {
	case "audio_file_1":
		a.AudioFile1 = path
	case "audio_file_2":
		a.AudioFile2 = path
	case "cover_art":
		a.CoverArt = path
	}
}

func (p *Photo) StoredFiles() []string { return nonEmpty(p.Image, p.Thumb) }
func (v *Video) StoredFiles() []string { return nonEmpty(v.VideoFile1, v.VideoFile2, v.Poster) }
func (a *Audio) StoredFiles() []string { return nonEmpty(a.AudioFile1, a.AudioFile2, a.CoverArt) }

func nonEmpty(paths ...string) (result []string) {
	for _, p := range paths {
		if p != "" {
			result = append(result, p)
		}
	}
	return
}

// NewItem returns an empty item of the given kind
func NewItem(kind gallery.Kind) MediaItem {
	switch kind {
	case gallery.KindPhoto:
		return &Photo{}
	case gallery.KindVideo:
		return &Video{}
	case gallery.KindAudio:
		return &Audio{}
	}
	return nil
}
