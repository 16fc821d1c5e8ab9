package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a company, license or file does not exist,
// or when a file does not belong to the license it was addressed through.
var ErrNotFound = errors.New("not found")

// CapExceededError is returned when adding a batch of files would push a
// license past its attachment cap. Carries the counts so callers can render
// a useful message.
type CapExceededError struct {
	Current   int
	Attempted int
	Cap       int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("attachment cap of %d files per license exceeded: currently %d, attempted to add %d",
		e.Cap, e.Current, e.Attempted)
}

// ValidationError is returned when required fields are missing or malformed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps a blob storage I/O failure
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// orNotFound maps the persistence layer's no-rows error to ErrNotFound and
// passes everything else through.
func orNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
