package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage keeps blobs on the local filesystem under a base directory.
// The default backend for development and single-node deployments.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Store writes the blob to disk under its generated name
func (s *LocalStorage) Store(ctx context.Context, blobID uuid.UUID, filename string, data io.Reader) (string, error) {
	locator := storageName(blobID, filename)
	fullPath := filepath.Join(s.basePath, locator)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(fullPath) // don't leave a truncated blob behind
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return locator, nil
}

// Open returns the blob contents, or ErrNotFound if the file is missing
func (s *LocalStorage) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, locator))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes the blob; an already-absent blob is treated as success
func (s *LocalStorage) Delete(ctx context.Context, locator string) error {
	err := os.Remove(filepath.Join(s.basePath, locator))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
