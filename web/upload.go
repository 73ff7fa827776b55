package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediaalbums/auth"
	"mediaalbums/gallery"
	"mediaalbums/handlers"
	"mediaalbums/logger"
	"mediaalbums/models"
	"mediaalbums/moderation"
	"mediaalbums/notify"
	"mediaalbums/processing"
	"mediaalbums/storage"
	"mediaalbums/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const invalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

type UploadRequest struct {
	Name        string `form:"name" binding:"required,max=200"`
	Caption     string `form:"caption" binding:"max=255"`
	Description string `form:"description"`
}

type LoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// uploadAllowed answers with 404 or a login redirect when the visitor may
// not submit photos
func (s *Site) uploadAllowed(c *gin.Context) (models.User, bool) {
	if !s.Gallery.UserUploadsEnabled {
		notFound(c)
		return models.User{}, false
	}
	user := auth.UserFrom(c)
	if s.Gallery.UserUploadsLoginRequired && !user.IsAuthenticated() {
		c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.Path))
		return user, false
	}
	return user, true
}

func (s *Site) UploadForm(c *gin.Context) {
	if _, ok := s.uploadAllowed(c); !ok {
		return
	}
	render(c, http.StatusOK, "upload.tmpl", gin.H{"form": UploadRequest{}, "errors": map[string]string{}, "user": userInfo(c)})
}

// UploadSubmit files the photo for approval and notifies the operator
func (s *Site) UploadSubmit(c *gin.Context) {
	user, ok := s.uploadAllowed(c)
	if !ok {
		return
	}
	form := UploadRequest{}
	verr := &gallery.ValidationError{}
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		verr = handlers.BindErrors(err)
	}
	header, err := c.FormFile("image")
	if err != nil {
		verr.Add("image", "This field is required.")
	}
	var image string
	if verr.Err() == nil {
		if image, err = s.storeImage(header); err != nil {
			var imageErr *gallery.ValidationError
			if !errors.As(err, &imageErr) {
				s.fail(c, err)
				return
			}
			verr = imageErr
		}
	}
	if verr.Err() != nil {
		s.uploadInvalid(c, form, verr)
		return
	}

	submission := moderation.Submission{
		Name:        form.Name,
		Caption:     form.Caption,
		Description: form.Description,
		Image:       image,
	}
	if user.IsAuthenticated() {
		submission.AddedBy = &user
	}
	pending, err := moderation.Submit(s.DB, submission)
	if err != nil {
		handlers.RemoveFiles(s.Storage, []string{image})
		if errors.As(err, &verr) {
			s.uploadInvalid(c, form, verr)
			return
		}
		s.fail(c, err)
		return
	}
	processing.AfterSave(s.DB, s.Storage, pending)
	s.notify(pending, &user)
	c.Redirect(http.StatusFound, "/add/success/")
}

func (s *Site) uploadInvalid(c *gin.Context, form UploadRequest, verr *gallery.ValidationError) {
	render(c, http.StatusBadRequest, "upload.tmpl", gin.H{"form": form, "errors": verr.Fields, "user": userInfo(c)})
}

// storeImage checks that the upload decodes as an image and stores it
func (s *Site) storeImage(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	if !utils.IsImage(src) {
		verr := &gallery.ValidationError{}
		verr.Add("image", invalidImage)
		return "", verr
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	p := storage.UploadPath(gallery.KindPhoto, header.Filename, time.Now())
	if _, err := s.Storage.Save(p, src); err != nil {
		return "", err
	}
	return p, nil
}

// notify e-mails the operator. A failed e-mail does not fail the upload.
func (s *Site) notify(pending *models.UserPhoto, user *models.User) {
	if s.Mailer == nil || s.FromEmail == "" {
		return
	}
	notice := notify.UploadNotice{
		Name:      pending.Name,
		ReviewURL: strings.TrimSuffix(s.PublicURL, "/") + "/admin/pending",
	}
	if user.IsAuthenticated() {
		notice.By = user.Email
	}
	if err := notify.PhotoUploaded(s.Mailer, s.FromEmail, notice); err != nil {
		logger.L().Warn("upload notification failed", zap.Uint64("id", pending.ID), zap.Error(err))
	}
}

func (s *Site) UploadSuccess(c *gin.Context) {
	if _, ok := s.uploadAllowed(c); !ok {
		return
	}
	render(c, http.StatusOK, "upload_success.tmpl", gin.H{"user": userInfo(c)})
}

func (s *Site) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.tmpl", gin.H{"next": safeNext(c.Query("next")), "user": userInfo(c)})
}

func (s *Site) LoginSubmit(c *gin.Context) {
	req := LoginRequest{}
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		render(c, http.StatusBadRequest, "login.tmpl", gin.H{
			"next":   safeNext(req.Next),
			"errors": handlers.BindErrors(err).Fields,
			"user":   userInfo(c),
		})
		return
	}
	user, err := models.UserLogin(s.DB, req.Email, req.Password)
	if errors.Is(err, models.ErrInvalidLogin) {
		render(c, http.StatusUnauthorized, "login.tmpl", gin.H{
			"next":  safeNext(req.Next),
			"error": handlers.InvalidLoginResponse.Error,
			"user":  userInfo(c),
		})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := auth.LoadSession(c).LoginUser(&user); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(req.Next))
}

func (s *Site) Logout(c *gin.Context) {
	auth.LoadSession(c).LogoutUser()
	c.Redirect(http.StatusFound, "/")
}

// safeNext only allows redirects within the site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}
