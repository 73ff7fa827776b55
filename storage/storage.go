package storage

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"mediaalbums/gallery"
	"mediaalbums/utils"

	"github.com/google/uuid"
)

const (
	// URLPrefix is where stored files are served from
	URLPrefix = "/media/"

	uploadRoot = "media_albums"
)

type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
	GetBucket() *Bucket
}

// New returns the storage implementation for the bucket type
func New(bucket *Bucket) (StorageAPI, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		s, err := NewS3Storage(bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("storage type %d unavailable for bucket %q", bucket.StorageType, bucket.Name)
}

// UploadPath returns a fresh destination for an uploaded file, e.g.
//   - media_albums/2024/05/01/photo/1f0c..._beach.jpg
func UploadPath(kind gallery.Kind, filename string, now time.Time) string {
	name := utils.SanitizeName(filename)
	return path.Join(uploadRoot, now.Format("2006/01/02"), string(kind), uuid.NewString()+"_"+name)
}

// URL is the public address of a stored file
func URL(p string) string {
	if p == "" {
		return ""
	}
	return URLPrefix + strings.TrimPrefix(p, "/")
}

// CleanPath rejects paths that would escape the storage root
func CleanPath(p string) (string, bool) {
	p = strings.TrimPrefix(p, "/")
	cleaned := path.Clean(p)
	if p == "" || cleaned == "." || cleaned != p || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", false
	}
	return cleaned, true
}
