package web

import (
	"net/http"
	"strconv"

	"mediaalbums/auth"
	"mediaalbums/gallery"
	"mediaalbums/handlers"
	"mediaalbums/models"

	"github.com/gin-gonic/gin"
)

// NavigationInfo links an item to its neighbours in the album
type NavigationInfo struct {
	Next             handlers.ItemInfo `json:"next"`
	Previous         handlers.ItemInfo `json:"previous"`
	Position         int               `json:"position"`
	NextPosition     int               `json:"next_position"`
	PreviousPosition int               `json:"previous_position"`
	Total            int               `json:"total"`
}

// AlbumList shows the public albums, a page at a time
func (s *Site) AlbumList(c *gin.Context) {
	number, ok := pageNumber(c)
	if !ok {
		notFound(c)
		return
	}
	albums, err := models.PublicAlbums(s.DB)
	if err != nil {
		s.fail(c, err)
		return
	}
	page, err := gallery.Paginate(albums, s.Gallery.PaginateBy, number)
	if err != nil {
		s.fail(c, err)
		return
	}
	infos, err := mapPage(page, func(album models.Album) (handlers.AlbumInfo, error) {
		return handlers.NewAlbumInfo(s.DB, &album, s.Gallery)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	render(c, http.StatusOK, "album_list.tmpl", gin.H{
		"albums":       infos.Items,
		"page":         infos,
		"is_paginated": infos.IsPaginated(),
		"user":         userInfo(c),
	})
}

// AlbumDetail lists the album items in sequence. Private albums are only
// shown to staff.
func (s *Site) AlbumDetail(c *gin.Context) {
	user := auth.UserFrom(c)
	album, err := models.AlbumBySlug(s.DB, c.Param("slug"), user.IsStaff())
	if err != nil {
		s.fail(c, err)
		return
	}
	number, ok := pageNumber(c)
	if !ok {
		notFound(c)
		return
	}
	items, err := models.OrderedItems(s.DB, album.ID, s.Gallery)
	if err != nil {
		s.fail(c, err)
		return
	}
	page, err := gallery.Paginate(items, s.Gallery.PaginateBy, number)
	if err != nil {
		s.fail(c, err)
		return
	}
	infos, err := mapPage(page, func(item gallery.Item) (handlers.ItemInfo, error) {
		return handlers.NewItemInfo(item), nil
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	albumInfo, err := handlers.NewAlbumInfo(s.DB, &album, s.Gallery)
	if err != nil {
		s.fail(c, err)
		return
	}
	render(c, http.StatusOK, "album_detail.tmpl", gin.H{
		"album":        albumInfo,
		"items":        infos.Items,
		"page":         infos,
		"is_paginated": infos.IsPaginated(),
		"user":         userInfo(c),
	})
}

// ItemDetail shows one item of the given kind with links to its neighbours
func (s *Site) ItemDetail(kind gallery.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Gallery.Enabled(kind) {
			notFound(c)
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			notFound(c)
			return
		}
		item, err := models.FindItem(s.DB, kind, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		album := models.ItemAlbum(item)
		user := auth.UserFrom(c)
		if album.IsPrivate() && !user.IsStaff() {
			notFound(c)
			return
		}
		items, err := models.OrderedItems(s.DB, album.ID, s.Gallery)
		if err != nil {
			s.fail(c, err)
			return
		}
		nav, err := gallery.NextPrevious(item, items)
		if err != nil {
			s.fail(c, err)
			return
		}
		render(c, http.StatusOK, "item_detail.tmpl", gin.H{
			"item":  handlers.NewItemInfo(item),
			"album": gin.H{"name": album.Name, "url": handlers.AlbumURL(album.Slug)},
			"navigation": NavigationInfo{
				Next:             handlers.NewItemInfo(nav.Next),
				Previous:         handlers.NewItemInfo(nav.Previous),
				Position:         nav.Position,
				NextPosition:     nav.NextPosition,
				PreviousPosition: nav.PreviousPosition,
				Total:            nav.Total,
			},
			"user": userInfo(c),
		})
	}
}

func userInfo(c *gin.Context) gin.H {
	user := auth.UserFrom(c)
	return gin.H{"authenticated": user.IsAuthenticated(), "staff": user.IsStaff(), "name": user.Name}
}
