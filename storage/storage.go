package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Open when no blob exists for the locator.
var ErrNotFound = errors.New("blob not found")

// Storage is the blob storage collaborator. Locators returned by Store are
// opaque relative paths; a successful Store is immediately visible to Open.
type Storage interface {
	// Store writes a blob under a name derived from blobID (never from the
	// user-supplied filename) and returns its locator.
	Store(ctx context.Context, blobID uuid.UUID, filename string, data io.Reader) (string, error)

	// Open returns the blob contents, or ErrNotFound if absent.
	Open(ctx context.Context, locator string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, locator string) error
}

// Type selects the storage backend
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds settings for building a Storage backend
type Config struct {
	Type         Type
	LocalPath    string // local backend base directory
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New builds the Storage backend selected by cfg.Type
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case TypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// storageName builds the blob's storage path from its id. Only the extension
// of the original filename survives, which keeps path traversal and name
// collisions out of the storage area.
func storageName(blobID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	id := blobID.String()
	return fmt.Sprintf("%s/%s%s", id[:2], id, ext)
}
