package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mediaalbums/gallery"
	"mediaalbums/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the server configuration, read from the environment and an
// optional .env file
type Settings struct {
	BindAddress string
	TLSDomains  []string // e.g. "example.com,example2.com"
	Debug       bool
	SessionKey  string
	PublicURL   string

	// MySQL is used when MySQLDSN is set, SQLite otherwise
	MySQLDSN   string
	SQLiteFile string

	Storage storage.Bucket

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	DefaultFromEmail string

	// Initial staff account, created when there are no users
	AdminName     string
	AdminEmail    string
	AdminPassword string

	gallery gallery.Config
}

var defaults = map[string]any{
	"BIND_ADDRESS": "0.0.0.0:8080",
	"DEBUG_MODE":   false,
	"STORAGE_TYPE": "disk",
	"STORAGE_PATH": "./media",
	"SMTP_PORT":    587,
	"ADMIN_NAME":   "Admin",

	"PHOTOS_ENABLED":                      true,
	"AUDIO_FILES_ENABLED":                 false,
	"AUDIO_FILES_FORMAT1_EXTENSION":       "mp3",
	"AUDIO_FILES_FORMAT2_EXTENSION":       "ogg",
	"AUDIO_FILES_FORMAT2_REQUIRED":        false,
	"VIDEO_FILES_ENABLED":                 false,
	"VIDEO_FILES_FORMAT1_EXTENSION":       "mp4",
	"VIDEO_FILES_FORMAT2_EXTENSION":       "webm",
	"VIDEO_FILES_FORMAT2_REQUIRED":        false,
	"USER_UPLOADED_PHOTOS_ENABLED":        false,
	"USER_UPLOADED_PHOTOS_LOGIN_REQUIRED": true,
	"USER_UPLOADED_PHOTOS_ALBUM_NAME":     "User Photos",
	"USER_UPLOADED_PHOTOS_ALBUM_SLUG":     "user-photos",
	"PAGINATE_BY":                         10,
}

// Load reads the settings. Values from the process environment win over the
// .env file, which is optional.
func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	storageType, err := storage.ParseStorageType(v.GetString("STORAGE_TYPE"))
	if err != nil {
		return nil, err
	}
	s := &Settings{
		BindAddress: v.GetString("BIND_ADDRESS"),
		TLSDomains:  splitList(v.GetString("TLS_DOMAINS")),
		Debug:       v.GetBool("DEBUG_MODE"),
		SessionKey:  v.GetString("SESSION_KEY"),
		PublicURL:   v.GetString("PUBLIC_URL"),
		MySQLDSN:    v.GetString("MYSQL_DSN"),
		SQLiteFile:  v.GetString("SQLITE_FILE"),
		Storage: storage.Bucket{
			Name:        v.GetString("S3_BUCKET"),
			StorageType: storageType,
			Path:        v.GetString("STORAGE_PATH"),
			Region:      v.GetString("S3_REGION"),
			Endpoint:    v.GetString("S3_ENDPOINT"),
		},
		SMTPHost:         v.GetString("SMTP_HOST"),
		SMTPPort:         v.GetInt("SMTP_PORT"),
		SMTPUser:         v.GetString("SMTP_USER"),
		SMTPPassword:     v.GetString("SMTP_PASSWORD"),
		DefaultFromEmail: v.GetString("DEFAULT_FROM_EMAIL"),
		AdminName:        v.GetString("ADMIN_NAME"),
		AdminEmail:       v.GetString("ADMIN_EMAIL"),
		AdminPassword:    v.GetString("ADMIN_PASSWORD"),
		gallery: gallery.Config{
			PhotosEnabled:            v.GetBool("PHOTOS_ENABLED"),
			AudioFilesEnabled:        v.GetBool("AUDIO_FILES_ENABLED"),
			AudioFormat1Extension:    v.GetString("AUDIO_FILES_FORMAT1_EXTENSION"),
			AudioFormat2Extension:    v.GetString("AUDIO_FILES_FORMAT2_EXTENSION"),
			AudioFormat2Required:     v.GetBool("AUDIO_FILES_FORMAT2_REQUIRED"),
			VideoFilesEnabled:        v.GetBool("VIDEO_FILES_ENABLED"),
			VideoFormat1Extension:    v.GetString("VIDEO_FILES_FORMAT1_EXTENSION"),
			VideoFormat2Extension:    v.GetString("VIDEO_FILES_FORMAT2_EXTENSION"),
			VideoFormat2Required:     v.GetBool("VIDEO_FILES_FORMAT2_REQUIRED"),
			UserUploadsEnabled:       v.GetBool("USER_UPLOADED_PHOTOS_ENABLED"),
			UserUploadsLoginRequired: v.GetBool("USER_UPLOADED_PHOTOS_LOGIN_REQUIRED"),
			UserUploadsAlbumName:     v.GetString("USER_UPLOADED_PHOTOS_ALBUM_NAME"),
			UserUploadsAlbumSlug:     v.GetString("USER_UPLOADED_PHOTOS_ALBUM_SLUG"),
			PaginateBy:               v.GetInt("PAGINATE_BY"),
		},
	}
	if key := v.GetString("S3_KEY"); key != "" {
		s.Storage.AuthDetails = key + ":" + v.GetString("S3_SECRET")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.MySQLDSN == "" && s.SQLiteFile == "" {
		return errors.New("MYSQL_DSN or SQLITE_FILE is required")
	}
	if s.gallery.PaginateBy < 1 {
		return fmt.Errorf("PAGINATE_BY must be at least 1, got %d", s.gallery.PaginateBy)
	}
	if s.Storage.StorageType == storage.StorageTypeS3 && s.Storage.Name == "" {
		return errors.New("S3_BUCKET is required for s3 storage")
	}
	if s.gallery.UserUploadsEnabled && s.gallery.UserUploadsAlbumName == "" {
		return errors.New("USER_UPLOADED_PHOTOS_ALBUM_NAME is required when uploads are enabled")
	}
	return nil
}

// Gallery returns the gallery behaviour options
func (s *Settings) Gallery() gallery.Config {
	return s.gallery
}

func splitList(s string) (result []string) {
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return
}
