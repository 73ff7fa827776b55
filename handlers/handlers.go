package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"mediaalbums/gallery"
	"mediaalbums/logger"
	"mediaalbums/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Response struct {
	Error string `json:"error"`
}

type MultiResponse struct {
	Error  string   `json:"error"`
	Failed []uint64 `json:"failed"`
}

type ValidationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

var (
	// Predefined errors
	OKResponse           = Response{}
	NotFoundResponse     = Response{"not found"}
	InternalResponse     = Response{"internal error"}
	BadRequestResponse   = Response{"bad request"}
	InvalidLoginResponse = Response{"invalid email or password"}
)

// API serves the operator endpoints
type API struct {
	DB      *gorm.DB
	Storage storage.StorageAPI
	Gallery gallery.Config
}

func init() {
	// Report form field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "oneof":
		return "Select a valid choice."
	case "email":
		return "Enter a valid email address."
	}
	return "Enter a valid value."
}

// BindErrors turns a binding failure into per-field messages
func BindErrors(err error) *gallery.ValidationError {
	result := &gallery.ValidationError{}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, fe := range errs {
			result.Add(fe.Field(), fieldMessage(fe))
		}
		return result
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		result.Add("form", "Enter a whole number.")
		return result
	}
	result.Add("form", err.Error())
	return result
}

// WriteError maps errors to HTTP status codes and JSON bodies
func WriteError(c *gin.Context, err error) {
	var verr *gallery.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ValidationResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, gallery.ErrNotFound), errors.Is(err, gallery.ErrInvalidPage):
		c.JSON(http.StatusNotFound, NotFoundResponse)
	default:
		logger.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, InternalResponse)
	}
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// removeFiles deletes stored blobs that are no longer referenced
func (a *API) removeFiles(paths []string) {
	RemoveFiles(a.Storage, paths)
}

func RemoveFiles(store storage.StorageAPI, paths []string) {
	for _, p := range paths {
		if err := store.Delete(p); err != nil {
			logger.L().Warn("removing stored file", zap.String("path", p), zap.Error(err))
		}
	}
}
