package models

import (
	"errors"
	"fmt"

	"mediaalbums/gallery"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveItem validates and stores item. When the item is flagged as the album
// cover, the flag is first cleared on every photo, video and audio clip of
// the same album, all within one transaction.
func SaveItem(db *gorm.DB, item MediaItem, cfg gallery.Config) error {
	if err := item.Validate(cfg); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if item.AlbumCover() {
			if err := clearCover(tx, item.upload().AlbumID); err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(item).Error
	})
}

func clearCover(tx *gorm.DB, albumID uint64) error {
	for _, kind := range gallery.Kinds {
		err := tx.Model(NewItem(kind)).
			Where("album_id = ? AND album_photo = ?", albumID, true).
			Update("album_photo", false).Error
		if err != nil {
			return fmt.Errorf("clearing %s cover flags: %w", kind, err)
		}
	}
	return nil
}

// CoverItem returns the flagged item of the album, checking photos, then
// videos, then audio clips of the enabled kinds. Nil when there is none.
func CoverItem(db *gorm.DB, albumID uint64, cfg gallery.Config) (gallery.Item, error) {
	for _, kind := range cfg.EnabledKinds() {
		item := NewItem(kind)
		err := db.Where("album_id = ? AND album_photo = ?", albumID, true).First(item).Error
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func albumItemsOfKind(db *gorm.DB, albumID uint64, kind gallery.Kind) (items []MediaItem, err error) {
	switch kind {
	case gallery.KindPhoto:
		var photos []Photo
		err = db.Where("album_id = ?", albumID).Order("ordering, name, id").Find(&photos).Error
		for i := range photos {
			items = append(items, &photos[i])
		}
	case gallery.KindVideo:
		var videos []Video
		err = db.Where("album_id = ?", albumID).Order("ordering, name, id").Find(&videos).Error
		for i := range videos {
			items = append(items, &videos[i])
		}
	case gallery.KindAudio:
		var audio []Audio
		err = db.Where("album_id = ?", albumID).Order("ordering, name, id").Find(&audio).Error
		for i := range audio {
			items = append(items, &audio[i])
		}
	}
	return
}

// OrderedItems returns the album sequence: enabled kinds in priority order,
// each by (ordering, name)
func OrderedItems(db *gorm.DB, albumID uint64, cfg gallery.Config) ([]gallery.Item, error) {
	groups := map[gallery.Kind][]gallery.Item{}
	for _, kind := range cfg.EnabledKinds() {
		items, err := albumItemsOfKind(db, albumID, kind)
		if err != nil {
			return nil, fmt.Errorf("loading %s items: %w", kind, err)
		}
		for _, item := range items {
			groups[kind] = append(groups[kind], item)
		}
	}
	return gallery.Sequence(cfg, groups), nil
}

// CountItems is the number of items of enabled kinds in the album
func CountItems(db *gorm.DB, albumID uint64, cfg gallery.Config) (total int64, err error) {
	for _, kind := range cfg.EnabledKinds() {
		var count int64
		if err = db.Model(NewItem(kind)).Where("album_id = ?", albumID).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return
}

// AlbumItemsByName returns the sequence of the album called name, or nil
// when there is no such album
func AlbumItemsByName(db *gorm.DB, name string, cfg gallery.Config) ([]gallery.Item, error) {
	var album Album
	err := db.Where("name = ?", name).First(&album).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return OrderedItems(db, album.ID, cfg)
}

// FindItem loads a single item together with its album
func FindItem(db *gorm.DB, kind gallery.Kind, id uint64) (MediaItem, error) {
	item := NewItem(kind)
	if item == nil {
		return nil, gallery.ErrNotFound
	}
	err := db.Preload("Album").First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gallery.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ItemAlbum returns the album preloaded by FindItem
func ItemAlbum(item MediaItem) *Album {
	return &item.upload().Album
}

// ItemUpload exposes the shared columns of any item
func ItemUpload(item MediaItem) *Upload {
	return item.upload()
}

func DeleteItem(db *gorm.DB, item MediaItem) error {
	result := db.Delete(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gallery.ErrNotFound
	}
	return nil
}
