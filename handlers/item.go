package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"slices"
	"time"

	"mediaalbums/gallery"
	"mediaalbums/models"
	"mediaalbums/processing"
	"mediaalbums/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ItemForm struct {
	AlbumID     uint64 `form:"album_id" binding:"required"`
	Name        string `form:"name" binding:"required,max=200"`
	Ordering    int    `form:"ordering"`
	Caption     string `form:"caption" binding:"max=255"`
	Description string `form:"description"`
	IsCover     bool   `form:"album_photo"`
}

// pendingFile is an upload that has a destination but is not stored yet
type pendingFile struct {
	path   string
	header *multipart.FileHeader
}

func (a *API) kindParam(c *gin.Context) (gallery.Kind, bool) {
	kind, ok := gallery.ParseKind(c.Param("kind"))
	if !ok || !a.Gallery.Enabled(kind) {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return "", false
	}
	return kind, true
}

func (a *API) findItem(c *gin.Context) (models.MediaItem, bool) {
	kind, ok := a.kindParam(c)
	if !ok {
		return nil, false
	}
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return nil, false
	}
	item, err := models.FindItem(a.DB, kind, id)
	if err != nil {
		WriteError(c, err)
		return nil, false
	}
	return item, true
}

func (a *API) ItemGet(c *gin.Context, user *models.User) {
	item, ok := a.findItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewItemInfo(item))
}

func (a *API) ItemCreate(c *gin.Context, user *models.User) {
	kind, ok := a.kindParam(c)
	if !ok {
		return
	}
	a.saveItem(c, models.NewItem(kind), http.StatusCreated)
}

func (a *API) ItemUpdate(c *gin.Context, user *models.User) {
	item, ok := a.findItem(c)
	if !ok {
		return
	}
	a.saveItem(c, item, http.StatusOK)
}

// saveItem applies the form to item, stores the uploaded files and saves.
// Files replaced or cleared by the update are removed from storage.
func (a *API) saveItem(c *gin.Context, item models.MediaItem, status int) {
	form := ItemForm{}
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		WriteError(c, BindErrors(err))
		return
	}
	if _, err := models.AlbumByID(a.DB, form.AlbumID); err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			verr := &gallery.ValidationError{}
			verr.Add("album_id", "Select a valid choice.")
			err = verr
		}
		WriteError(c, err)
		return
	}

	previous := item.StoredFiles()
	upload := models.ItemUpload(item)
	upload.AlbumID = form.AlbumID
	upload.Album = models.Album{}
	upload.Name = form.Name
	upload.Ordering = form.Ordering
	upload.Caption = form.Caption
	upload.Description = form.Description
	upload.IsCover = form.IsCover
	if upload.ID == 0 {
		upload.CreatedAt = time.Now().Unix()
	}

	files, err := a.collectFiles(c, item)
	if err != nil {
		WriteError(c, err)
		return
	}
	if err := item.Validate(a.Gallery); err != nil {
		WriteError(c, err)
		return
	}

	stored, err := a.storeFiles(files)
	if err != nil {
		a.removeFiles(stored)
		WriteError(c, err)
		return
	}
	if err := models.SaveItem(a.DB, item, a.Gallery); err != nil {
		a.removeFiles(stored)
		WriteError(c, err)
		return
	}
	processing.AfterSave(a.DB, a.Storage, item)

	current := item.StoredFiles()
	var stale []string
	for _, p := range previous {
		if !slices.Contains(current, p) {
			stale = append(stale, p)
		}
	}
	a.removeFiles(stale)
	c.JSON(status, NewItemInfo(item))
}

// collectFiles points the file fields at their new destinations. A
// clear_<field> value empties the field when no new file is sent.
func (a *API) collectFiles(c *gin.Context, item models.MediaItem) ([]pendingFile, error) {
	var files []pendingFile
	now := time.Now()
	for _, field := range item.FileFields() {
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			if c.PostForm("clear_"+field) != "" {
				item.SetFile(field, "")
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", field, err)
		}
		p := storage.UploadPath(item.ItemKind(), header.Filename, now)
		item.SetFile(field, p)
		files = append(files, pendingFile{path: p, header: header})
	}
	return files, nil
}

func (a *API) storeFiles(files []pendingFile) (stored []string, err error) {
	for _, f := range files {
		if err = a.storeFile(f); err != nil {
			return
		}
		stored = append(stored, f.path)
	}
	return
}

func (a *API) storeFile(f pendingFile) error {
	src, err := f.header.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := a.Storage.Save(f.path, src); err != nil {
		return fmt.Errorf("storing %s: %w", f.path, err)
	}
	return nil
}

func (a *API) ItemDelete(c *gin.Context, user *models.User) {
	item, ok := a.findItem(c)
	if !ok {
		return
	}
	if err := models.DeleteItem(a.DB, item); err != nil {
		WriteError(c, err)
		return
	}
	a.removeFiles(item.StoredFiles())
	c.JSON(http.StatusOK, OKResponse)
}
