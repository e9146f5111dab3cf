package storage

import (
	"context"
	"fmt"
	"io"
)

// ImageStorage is implemented by every backend that can hold uploaded images.
type ImageStorage interface {
	// UploadImage stores the image read from r and returns its URL.
	// folder is a logical grouping such as "housing" or "avatars".
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage removes the image previously returned by UploadImage.
	DeleteImage(ctx context.Context, fileURL string) error
}

type Config struct {
	Driver string

	LocalDir      string
	PublicBaseURL string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// New returns the backend selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (ImageStorage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
	case "cloudinary":
		return NewCloudinaryStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
