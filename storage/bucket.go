package storage

import (
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

type Bucket struct {
	Name        string
	StorageType StorageType
	Path        string // Path on a drive or a prefix in a S3 bucket
	Region      string
	Endpoint    string
	AuthDetails string // Authentication details. In case of S3 bucket - "key:secret"
}

func ParseStorageType(s string) (StorageType, error) {
	switch strings.ToLower(s) {
	case "", "disk", "file":
		return StorageTypeFile, nil
	case "s3":
		return StorageTypeS3, nil
	}
	return 0, errors.New("unknown storage type " + s)
}

// GetRemotePath prefixes path with the bucket path, if any
func (b *Bucket) GetRemotePath(path string) string {
	prefix := strings.Trim(b.Path, "/")
	if prefix == "" {
		return path
	}
	return prefix + "/" + path
}

func (b *Bucket) CreateSVC() (*s3.S3, error) {
	config := &aws.Config{
		Region: aws.String(b.Region),
	}
	if b.Endpoint != "" {
		config.Endpoint = aws.String(b.Endpoint)
		config.S3ForcePathStyle = aws.Bool(true)
	}
	if b.AuthDetails != "" {
		key, secret, found := strings.Cut(b.AuthDetails, ":")
		if !found {
			return nil, errors.New("bucket auth details must be in the key:secret format")
		}
		config.Credentials = credentials.NewStaticCredentials(key, secret, "")
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}
