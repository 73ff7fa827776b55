package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mediaalbums/gallery"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"

	PendingAlbumName     = "User Uploaded Photos Pending Approval"
	PendingAlbumSlug     = "user-uploaded-photos-pending-approval"
	PendingAlbumOrdering = 999
)

var slugRegexp = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type Album struct {
	ID          uint64     `gorm:"primaryKey"`
	CreatedAt   int64      `gorm:"not null"`
	Name        string     `gorm:"type:varchar(200);not null;index:uniq_album_name,unique"`
	Slug        string     `gorm:"type:varchar(50);not null;index:uniq_album_slug,unique"`
	Description string     `gorm:"type:text"`
	Visibility  Visibility `gorm:"type:varchar(8);not null"`
	Ordering    int        `gorm:"not null;index:album_ordering"`
}

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityUnlisted || v == VisibilityPrivate
}

func (a *Album) IsPrivate() bool {
	return a.Visibility == VisibilityPrivate
}

// BeforeCreate fills in the slug from the name when none was given
func (a *Album) BeforeCreate(tx *gorm.DB) error {
	if a.Slug == "" {
		a.Slug = Slugify(a.Name)
	}
	return nil
}

func (a *Album) Validate() error {
	var v gallery.ValidationError
	v.Required("name", a.Name)
	if len(a.Name) > 200 {
		v.Add("name", "Ensure this value has at most 200 characters.")
	}
	if a.Slug == "" {
		v.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	} else if !slugRegexp.MatchString(a.Slug) {
		v.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	if len(a.Slug) > 50 {
		v.Add("slug", "Ensure this value has at most 50 characters.")
	}
	if !a.Visibility.Valid() {
		v.Add("visibility", "Select a valid choice.")
	}
	return v.Err()
}

// SaveAlbum validates and stores the album, reporting name and slug clashes
// as field errors. The slug of an existing album is never changed.
func SaveAlbum(db *gorm.DB, album *Album) error {
	if album.ID == 0 && album.Slug == "" {
		album.Slug = Slugify(album.Name)
	}
	if err := album.Validate(); err != nil {
		return err
	}
	var v gallery.ValidationError
	var count int64
	if err := db.Model(&Album{}).Where("name = ? AND id <> ?", album.Name, album.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking album name: %w", err)
	}
	if count > 0 {
		v.Add("name", "Album with this Name already exists.")
	}
	if album.ID == 0 {
		if err := db.Model(&Album{}).Where("slug = ?", album.Slug).Count(&count).Error; err != nil {
			return fmt.Errorf("checking album slug: %w", err)
		}
		if count > 0 {
			v.Add("slug", "Album with this Slug already exists.")
		}
	}
	if err := v.Err(); err != nil {
		return err
	}
	if album.ID == 0 {
		return db.Create(album).Error
	}
	return db.Model(album).Select("name", "description", "visibility", "ordering").Updates(album).Error
}

// GetOrCreateAlbum looks the album up by name and creates it with the given
// attributes when it does not exist yet
func GetOrCreateAlbum(db *gorm.DB, name, slug string, visibility Visibility, ordering int) (album Album, err error) {
	err = db.Where(Album{Name: name}).
		Attrs(Album{Slug: slug, Visibility: visibility, Ordering: ordering}).
		FirstOrCreate(&album).Error
	return
}

func PendingAlbum(db *gorm.DB) (Album, error) {
	return GetOrCreateAlbum(db, PendingAlbumName, PendingAlbumSlug, VisibilityPrivate, PendingAlbumOrdering)
}

func AlbumByID(db *gorm.DB, id uint64) (album Album, err error) {
	err = db.First(&album, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = gallery.ErrNotFound
	}
	return
}

// AlbumBySlug loads the album behind slug. Private albums are only found
// when includePrivate is set.
func AlbumBySlug(db *gorm.DB, slug string, includePrivate bool) (album Album, err error) {
	query := db.Where("slug = ?", slug)
	if !includePrivate {
		query = query.Where("visibility <> ?", VisibilityPrivate)
	}
	err = query.First(&album).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = gallery.ErrNotFound
	}
	return
}

func PublicAlbums(db *gorm.DB) (albums []Album, err error) {
	err = db.Where("visibility = ?", VisibilityPublic).Order("ordering, name").Find(&albums).Error
	return
}

func AllAlbums(db *gorm.DB) (albums []Album, err error) {
	err = db.Order("ordering, name").Find(&albums).Error
	return
}

// DeleteAlbum removes the album and, through the foreign keys, all of its
// items. It returns the stored file paths that are no longer referenced.
func DeleteAlbum(db *gorm.DB, id uint64) (files []string, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := AlbumByID(tx, id); err != nil {
			return err
		}
		for _, kind := range gallery.Kinds {
			items, err := albumItemsOfKind(tx, id, kind)
			if err != nil {
				return err
			}
			for _, item := range items {
				files = append(files, item.StoredFiles()...)
			}
		}
		var pending []UserPhoto
		if err := tx.Where("album_id = ?", id).Find(&pending).Error; err != nil {
			return err
		}
		for i := range pending {
			files = append(files, pending[i].StoredFiles()...)
		}
		return tx.Delete(&Album{}, id).Error
	})
	return
}

// Slugify transliterates s to ASCII, lower-cases it and joins words with
// hyphens. The result may be empty when s has nothing to transliterate.
func Slugify(s string) string {
	s = slug.Make(s)
	if len(s) > 50 {
		s = strings.Trim(s[:50], "-_")
	}
	return s
}
