package moderation

import (
	"errors"
	"fmt"
	"time"

	"mediaalbums/gallery"
	"mediaalbums/models"

	"gorm.io/gorm"
)

// Submission is a visitor provided photo whose image is already stored
type Submission struct {
	Name        string
	Caption     string
	Description string
	Image       string
	AddedBy     *models.User
}

// Submit files the photo into the pending album, creating the album on
// first use
func Submit(db *gorm.DB, s Submission) (*models.UserPhoto, error) {
	pending := &models.UserPhoto{
		Photo: models.Photo{
			Upload: models.Upload{
				Name:        s.Name,
				Caption:     s.Caption,
				Description: s.Description,
			},
			Image: s.Image,
		},
	}
	if s.AddedBy != nil && s.AddedBy.ID != 0 {
		pending.AddedByID = &s.AddedBy.ID
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		album, err := models.PendingAlbum(tx)
		if err != nil {
			return fmt.Errorf("pending album: %w", err)
		}
		pending.AlbumID = album.ID
		if err := pending.Validate(gallery.Config{}); err != nil {
			return err
		}
		return tx.Omit("Album", "AddedBy").Create(pending).Error
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// Pending lists photos waiting for approval, oldest first
func Pending(db *gorm.DB) (photos []models.UserPhoto, err error) {
	err = db.Preload("AddedBy").Order("created_at, id").Find(&photos).Error
	return
}

// Approve moves a pending photo into the configured user photos album. The
// approved photo is dated at approval time. The pending row is gone
// afterwards, so a second approval reports ErrNotFound.
func Approve(db *gorm.DB, pendingID uint64, cfg gallery.Config) (*models.Photo, error) {
	var photo *models.Photo
	err := db.Transaction(func(tx *gorm.DB) error {
		var pending models.UserPhoto
		err := tx.First(&pending, pendingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gallery.ErrNotFound
		}
		if err != nil {
			return err
		}
		album, err := models.GetOrCreateAlbum(tx, cfg.UserUploadsAlbumName, cfg.UserUploadsAlbumSlug, models.VisibilityPublic, 0)
		if err != nil {
			return fmt.Errorf("user photos album: %w", err)
		}

		approved := pending.Photo
		approved.ID = 0
		approved.AlbumID = album.ID
		approved.Album = models.Album{}
		approved.CreatedAt = time.Now().Unix()
		if err := models.SaveItem(tx, &approved, cfg); err != nil {
			return err
		}
		result := tx.Delete(&models.UserPhoto{}, pendingID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gallery.ErrNotFound
		}
		photo = &approved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// Result of one approval in a bulk operation
type Result struct {
	ID    uint64
	Photo *models.Photo
	Err   error
}

// ApproveAll approves each id on its own, so one failure does not hold back
// the others
func ApproveAll(db *gorm.DB, ids []uint64, cfg gallery.Config) (results []Result) {
	for _, id := range ids {
		photo, err := Approve(db, id, cfg)
		results = append(results, Result{ID: id, Photo: photo, Err: err})
	}
	return
}

// Discard deletes a pending photo without approving it and returns its
// stored files
func Discard(db *gorm.DB, pendingID uint64) ([]string, error) {
	var pending models.UserPhoto
	err := db.First(&pending, pendingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gallery.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	result := db.Delete(&models.UserPhoto{}, pendingID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gallery.ErrNotFound
	}
	return pending.StoredFiles(), nil
}
