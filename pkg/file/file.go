package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrInvalidConfig      = errors.New("file: invalid storage configuration")
	ErrInvalidKey         = errors.New("file: invalid object key")
	ErrFileNotFound       = errors.New("file: not found")
	ErrAccessDenied       = errors.New("file: access denied")
	ErrBucketNotFound     = errors.New("file: bucket not found")
	ErrServiceUnavailable = errors.New("file: storage service unavailable")
	ErrOperationTimeout   = errors.New("file: operation timed out")
	ErrUploadFailed       = errors.New("file: upload failed")
)

// Object describes a stored blob.
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// Storage is a blob store addressed by key.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Config selects and configures the storage backend.
type Config struct {
	Driver  string `env:"FILE_STORAGE_DRIVER" envDefault:"local"` // local | s3
	BaseURL string `env:"FILE_BASE_URL" envDefault:"/files/"`

	LocalDir string `env:"FILE_LOCAL_DIR" envDefault:"./uploads"`

	S3Bucket         string `env:"S3_BUCKET"`
	S3Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// New builds the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	case "s3":
		baseURL := cfg.BaseURL
		if baseURL == "/files/" {
			// the local default makes no sense for a bucket
			baseURL = ""
		}
		return NewS3Storage(ctx, S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			AccessKeyID:    cfg.S3AccessKeyID,
			SecretKey:      cfg.S3SecretKey,
			Endpoint:       cfg.S3Endpoint,
			BaseURL:        baseURL,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}

// CleanKey validates and normalizes an object key.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") || strings.ContainsRune(key, '\\') {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Clean(key), nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExtension returns the file extension for a supported raster image
// media type. The second result is false for anything else, SVG included.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	return ext, ok
}

func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
