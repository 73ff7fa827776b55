package storage

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

var errBadPath = errors.New("invalid storage path")

type DiskStorage struct {
	Bucket Bucket
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *DiskStorage) getFullPath(path string) (string, error) {
	cleaned, ok := CleanPath(path)
	if !ok {
		return "", errBadPath
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(cleaned)), nil
}

func (s *DiskStorage) Save(path string, reader io.Reader) (int64, error) {
	fileName, err := s.getFullPath(path)
	if err != nil {
		return 0, err
	}
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return 0, err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return result, err
}

func (s *DiskStorage) Load(path string, writer io.Writer) (int64, error) {
	fileName, err := s.getFullPath(path)
	if err != nil {
		return 0, err
	}
	file, err := os.Open(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(writer, file)
	file.Close()
	return result, err
}

func (s *DiskStorage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	fileName, err := s.getFullPath(path)
	if err != nil {
		http.NotFound(writer, request)
		return
	}
	http.ServeFile(writer, request, fileName)
}

func (s *DiskStorage) Delete(path string) error {
	fileName, err := s.getFullPath(path)
	if err != nil {
		return err
	}
	return os.Remove(fileName)
}

func (s *DiskStorage) GetBucket() *Bucket {
	return &s.Bucket
}

func NewDiskStorage(bucket *Bucket) *DiskStorage {
	return &DiskStorage{
		BasePath: bucket.Path,
		Bucket:   *bucket,
		dirs:     make(map[string]bool, 10),
	}
}
