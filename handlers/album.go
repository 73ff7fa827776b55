package handlers

import (
	"net/http"

	"mediaalbums/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type AlbumForm struct {
	Name        string `form:"name" binding:"required,max=200"`
	Slug        string `form:"slug" binding:"omitempty,max=50"`
	Description string `form:"description"`
	Visibility  string `form:"visibility" binding:"required,oneof=public unlisted private"`
	Ordering    int    `form:"ordering"`
}

type AlbumDetail struct {
	AlbumInfo
	Items []ItemInfo `json:"items"`
}

// AlbumList returns every album, private and pending ones included
func (a *API) AlbumList(c *gin.Context, user *models.User) {
	albums, err := models.AllAlbums(a.DB)
	if err != nil {
		WriteError(c, err)
		return
	}
	result := make([]AlbumInfo, 0, len(albums))
	for i := range albums {
		info, err := NewAlbumInfo(a.DB, &albums[i], a.Gallery)
		if err != nil {
			WriteError(c, err)
			return
		}
		result = append(result, info)
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) AlbumGet(c *gin.Context, user *models.User) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	album, err := models.AlbumByID(a.DB, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	info, err := NewAlbumInfo(a.DB, &album, a.Gallery)
	if err != nil {
		WriteError(c, err)
		return
	}
	items, err := models.OrderedItems(a.DB, album.ID, a.Gallery)
	if err != nil {
		WriteError(c, err)
		return
	}
	detail := AlbumDetail{AlbumInfo: info, Items: make([]ItemInfo, 0, len(items))}
	for _, item := range items {
		detail.Items = append(detail.Items, NewItemInfo(item))
	}
	c.JSON(http.StatusOK, detail)
}

func (a *API) AlbumCreate(c *gin.Context, user *models.User) {
	form := AlbumForm{}
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		WriteError(c, BindErrors(err))
		return
	}
	album := models.Album{
		Name:        form.Name,
		Slug:        form.Slug,
		Description: form.Description,
		Visibility:  models.Visibility(form.Visibility),
		Ordering:    form.Ordering,
	}
	a.saveAlbum(c, &album, http.StatusCreated)
}

// AlbumUpdate changes everything but the slug
func (a *API) AlbumUpdate(c *gin.Context, user *models.User) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	album, err := models.AlbumByID(a.DB, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	form := AlbumForm{}
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		WriteError(c, BindErrors(err))
		return
	}
	album.Name = form.Name
	album.Description = form.Description
	album.Visibility = models.Visibility(form.Visibility)
	album.Ordering = form.Ordering
	a.saveAlbum(c, &album, http.StatusOK)
}

func (a *API) saveAlbum(c *gin.Context, album *models.Album, status int) {
	if err := models.SaveAlbum(a.DB, album); err != nil {
		WriteError(c, err)
		return
	}
	info, err := NewAlbumInfo(a.DB, album, a.Gallery)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(status, info)
}

// AlbumDelete removes the album with all its items and their stored files
func (a *API) AlbumDelete(c *gin.Context, user *models.User) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	files, err := models.DeleteAlbum(a.DB, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	a.removeFiles(files)
	c.JSON(http.StatusOK, OKResponse)
}
