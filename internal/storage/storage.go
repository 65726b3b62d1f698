// Package storage keeps uploaded images on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkpost/internal/config"
)

// Upload folders.
const (
	FolderPrimary    = "blog_images"
	FolderAdditional = "blog_images/additional"
	FolderEditor     = "uploads"
)

// ImageStore saves and removes image objects. Keys are folder/name paths
// relative to the store root and are what the database records.
type ImageStore interface {
	Save(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Default is the store used by the HTTP handlers.
var Default ImageStore

// Init builds Default from cfg.
func Init(ctx context.Context, cfg *config.Config) error {
	store, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	Default = store
	return nil
}

func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.Storage {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}

var errBadKey = errors.New("storage: invalid key")

// objectKey names a new object in folder with a random UUID, keeping the
// lowercased extension of the uploaded filename.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(folder, uuid.NewString()+ext)
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || key == "." {
		return "", errBadKey
	}
	return key, nil
}
