package processing

import (
	"bytes"
	"fmt"
	"time"

	"mediaalbums/gallery"
	"mediaalbums/logger"
	"mediaalbums/models"
	"mediaalbums/storage"
	"mediaalbums/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const thumbSize = 1280

// Photo rotates the stored image upright and (re)creates its thumbnail.
// It updates p.Thumb but does not persist it.
func Photo(store storage.StorageAPI, p *models.Photo) error {
	if p.Image == "" {
		return nil
	}
	if _, err := AutoRotate(store, p.Image); err != nil {
		return err
	}
	var src bytes.Buffer
	if _, err := store.Load(p.Image, &src); err != nil {
		return fmt.Errorf("loading %s: %w", p.Image, err)
	}
	var thumb bytes.Buffer
	if _, err := utils.CreateThumb(thumbSize, &src, &thumb); err != nil {
		return fmt.Errorf("creating thumbnail for %s: %w", p.Image, err)
	}
	thumbPath := utils.ThumbPath(p.Image)
	if _, err := store.Save(thumbPath, &thumb); err != nil {
		return fmt.Errorf("saving thumbnail %s: %w", thumbPath, err)
	}
	p.Thumb = thumbPath
	return nil
}

// AudioCoverArt stores the picture embedded in the first audio file as the
// cover art, unless one was uploaded
func AudioCoverArt(store storage.StorageAPI, a *models.Audio, now time.Time) (bool, error) {
	if a.CoverArt != "" || a.AudioFile1 == "" {
		return false, nil
	}
	var src bytes.Buffer
	if _, err := store.Load(a.AudioFile1, &src); err != nil {
		return false, fmt.Errorf("loading %s: %w", a.AudioFile1, err)
	}
	picture, ext, err := ExtractCoverArt(&src)
	if err != nil {
		// untagged file or no picture frame
		return false, nil
	}
	p := storage.UploadPath(gallery.KindAudio, "cover."+ext, now)
	if _, err := store.Save(p, bytes.NewReader(picture)); err != nil {
		return false, fmt.Errorf("saving cover art %s: %w", p, err)
	}
	a.CoverArt = p
	return true, nil
}

// AfterSave runs the media processing for a freshly saved item and stores
// the generated file references. Failures are logged; the item stays saved.
func AfterSave(db *gorm.DB, store storage.StorageAPI, item models.MediaItem) {
	log := logger.L().With(zap.String("kind", string(item.ItemKind())), zap.Uint64("id", item.ItemID()))
	switch v := item.(type) {
	case *models.Photo:
		processPhoto(db, store, item, v, log)
	case *models.UserPhoto:
		processPhoto(db, store, item, &v.Photo, log)
	case *models.Audio:
		changed, err := AudioCoverArt(store, v, time.Now())
		if err != nil {
			log.Error("extracting cover art", zap.Error(err))
			return
		}
		if changed {
			if err := db.Model(item).Update("cover_art", v.CoverArt).Error; err != nil {
				log.Error("saving cover art", zap.Error(err))
			}
		}
	}
}

func processPhoto(db *gorm.DB, store storage.StorageAPI, item models.MediaItem, p *models.Photo, log *zap.Logger) {
	previous := p.Thumb
	if err := Photo(store, p); err != nil {
		log.Error("processing photo", zap.String("image", p.Image), zap.Error(err))
		return
	}
	if p.Thumb == previous {
		return
	}
	if err := db.Model(item).Update("thumb", p.Thumb).Error; err != nil {
		log.Error("saving thumbnail reference", zap.Error(err))
	}
}
