package storage

import (
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"mediaalbums/logger"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

const presignViewURLFor = time.Hour * 24 * 7

type S3Storage struct {
	Bucket   Bucket
	s3Client *s3.S3
}

func NewS3Storage(bucket *Bucket) (*S3Storage, error) {
	client, err := bucket.CreateSVC()
	if err != nil {
		return nil, err
	}
	return &S3Storage{
		Bucket:   *bucket,
		s3Client: client,
	}, nil
}

type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}

func (s *S3Storage) Save(p string, reader io.Reader) (int64, error) {
	body := &countingReader{Reader: reader}
	input := s3manager.UploadInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(p)),
		Body:   body,
	}
	if mimeType := mime.TypeByExtension(path.Ext(p)); mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	_, err := uploader.Upload(&input)
	return body.n, err
}

func (s *S3Storage) Load(p string, writer io.Writer) (int64, error) {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(p)),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(writer, resp.Body)
}

// Serve redirects to a presigned URL of the object
func (s *S3Storage) Serve(p string, request *http.Request, writer http.ResponseWriter) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(p)),
	})
	url, err := req.Presign(presignViewURLFor)
	if err != nil {
		logger.L().Error("presigning object", zap.String("path", p), zap.Error(err))
		http.Error(writer, "storage unavailable", http.StatusBadGateway)
		return
	}
	http.Redirect(writer, request, url, http.StatusFound)
}

func (s *S3Storage) Delete(p string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(p)),
	})
	return err
}

func (s *S3Storage) GetBucket() *Bucket {
	return &s.Bucket
}
