package handlers

import (
	"mediaalbums/gallery"
	"mediaalbums/models"
	"mediaalbums/storage"

	"gorm.io/gorm"
)

type AlbumInfo struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Visibility  models.Visibility `json:"visibility"`
	Ordering    int               `json:"ordering"`
	Created     int64             `json:"created"`
	NumItems    int64             `json:"num_items"`
	Image       string            `json:"image"`
	URL         string            `json:"url"`
}

type FileInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

type ItemInfo struct {
	ID          uint64       `json:"id"`
	Kind        gallery.Kind `json:"kind"`
	AlbumID     uint64       `json:"album_id"`
	Name        string       `json:"name"`
	Caption     string       `json:"caption"`
	Description string       `json:"description"`
	Ordering    int          `json:"ordering"`
	IsCover     bool         `json:"album_photo"`
	Created     int64        `json:"created"`
	URL         string       `json:"url"`
	Image       string       `json:"image"`
	Thumb       string       `json:"thumb"`
	Files       []FileInfo   `json:"files"`
}

type PendingInfo struct {
	ItemInfo
	AddedBy string `json:"added_by"`
}

func AlbumURL(slug string) string {
	return "/album/" + slug + "/"
}

// thumbOrImage prefers the generated photo thumbnail
func thumbOrImage(item gallery.Item) string {
	switch v := item.(type) {
	case *models.Photo:
		if v.Thumb != "" {
			return v.Thumb
		}
	case *models.UserPhoto:
		if v.Thumb != "" {
			return v.Thumb
		}
	}
	return gallery.CoverImage(item)
}

func NewAlbumInfo(db *gorm.DB, album *models.Album, cfg gallery.Config) (AlbumInfo, error) {
	info := AlbumInfo{
		ID:          album.ID,
		Name:        album.Name,
		Slug:        album.Slug,
		Description: album.Description,
		Visibility:  album.Visibility,
		Ordering:    album.Ordering,
		Created:     album.CreatedAt,
		URL:         AlbumURL(album.Slug),
	}
	var err error
	if info.NumItems, err = models.CountItems(db, album.ID, cfg); err != nil {
		return info, err
	}
	cover, err := models.CoverItem(db, album.ID, cfg)
	if err != nil {
		return info, err
	}
	info.Image = storage.URL(thumbOrImage(cover))
	return info, nil
}

func NewItemInfo(item gallery.Item) ItemInfo {
	info := ItemInfo{
		ID:       item.ItemID(),
		Kind:     item.ItemKind(),
		Name:     item.ItemName(),
		Ordering: item.ItemOrdering(),
		IsCover:  item.AlbumCover(),
		URL:      gallery.ItemURL(item),
		Image:    storage.URL(item.CoverImage()),
		Thumb:    storage.URL(thumbOrImage(item)),
		Files:    []FileInfo{},
	}
	if m, ok := item.(models.MediaItem); ok {
		upload := models.ItemUpload(m)
		info.AlbumID = upload.AlbumID
		info.Caption = upload.Caption
		info.Description = upload.Description
		info.Created = upload.CreatedAt
	}
	switch v := item.(type) {
	case *models.Photo:
		info.Files = append(info.Files, FileInfo{URL: storage.URL(v.Image)})
	case *models.Video:
		info.Files = appendSources(info.Files, gallery.KindVideo, v.VideoFile1, v.VideoFile2)
	case *models.Audio:
		info.Files = appendSources(info.Files, gallery.KindAudio, v.AudioFile1, v.AudioFile2)
	}
	return info
}

func appendSources(files []FileInfo, kind gallery.Kind, paths ...string) []FileInfo {
	for _, p := range paths {
		if p != "" {
			files = append(files, FileInfo{URL: storage.URL(p), MimeType: gallery.MimeType(kind, p)})
		}
	}
	return files
}

func NewPendingInfo(p *models.UserPhoto) PendingInfo {
	info := PendingInfo{ItemInfo: NewItemInfo(p)}
	info.URL = ""
	info.Files = []FileInfo{{URL: storage.URL(p.Image)}}
	if p.AddedBy != nil {
		info.AddedBy = p.AddedBy.Email
	}
	return info
}
