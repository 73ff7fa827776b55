package web

import (
	"errors"
	"net/http"
	"strconv"

	"mediaalbums/gallery"
	"mediaalbums/handlers"
	"mediaalbums/logger"
	"mediaalbums/notify"
	"mediaalbums/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Site serves the public gallery pages
type Site struct {
	DB        *gorm.DB
	Storage   storage.StorageAPI
	Gallery   gallery.Config
	Mailer    notify.Mailer
	FromEmail string
	PublicURL string // used in e-mails, e.g. https://gallery.example.com
}

func (s *Site) Register(r gin.IRoutes) {
	r.GET("/", s.AlbumList)
	r.GET("/album/:slug/", s.AlbumDetail)
	for _, kind := range gallery.Kinds {
		r.GET("/"+string(kind)+"/:id/", s.ItemDetail(kind))
	}
	r.GET("/add/", s.UploadForm)
	r.POST("/add/", s.UploadSubmit)
	r.GET("/add/success/", s.UploadSuccess)
	r.GET("/login/", s.LoginForm)
	r.POST("/login/", s.LoginSubmit)
	r.GET("/logout/", s.Logout)
	r.GET(storage.URLPrefix+"*filepath", s.Media)
}

// render writes the page, or its data as JSON when ?format=json is given
func render(c *gin.Context, status int, template string, data gin.H) {
	if c.Query("format") == "json" {
		c.JSON(status, data)
		return
	}
	c.HTML(status, template, data)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.tmpl", gin.H{"error": handlers.NotFoundResponse.Error})
}

func (s *Site) fail(c *gin.Context, err error) {
	if errors.Is(err, gallery.ErrNotFound) || errors.Is(err, gallery.ErrInvalidPage) {
		notFound(c)
		return
	}
	logger.L().Error("page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	render(c, http.StatusInternalServerError, "error.tmpl", gin.H{"error": handlers.InternalResponse.Error})
}

// pageNumber reads the 1-based ?page parameter. Missing and empty values
// mean the first page.
func pageNumber(c *gin.Context) (int, bool) {
	page := c.Query("page")
	if page == "" {
		return 1, true
	}
	number, err := strconv.Atoi(page)
	return number, err == nil
}

func mapPage[T, U any](page gallery.Page[T], convert func(T) (U, error)) (result gallery.Page[U], err error) {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		u, err := convert(item)
		if err != nil {
			return result, err
		}
		items = append(items, u)
	}
	result = gallery.Page[U]{
		Items:          items,
		Number:         page.Number,
		NumPages:       page.NumPages,
		Count:          page.Count,
		HasNext:        page.HasNext,
		HasPrevious:    page.HasPrevious,
		NextNumber:     page.NextNumber,
		PreviousNumber: page.PreviousNumber,
		Range:          page.Range,
	}
	return result, nil
}

// Media serves stored files
func (s *Site) Media(c *gin.Context) {
	p, ok := storage.CleanPath(c.Param("filepath"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	s.Storage.Serve(p, c.Request, c.Writer)
}
