package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"licensetracker/models"
	"licensetracker/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAttachmentCap limits how many files a single license may carry.
const DefaultAttachmentCap = 20

// Upload is one file payload in an AddFiles batch. Size limits are enforced
// by the upload-accepting layer before it builds an Upload.
type Upload struct {
	FileName string
	Data     io.Reader
}

// AttachmentService mediates every addition and removal of license
// attachments, keeping the file rows and their backing blobs mutually
// consistent and bounded by the per-license cap.
type AttachmentService struct {
	licenses LicenseStore
	files    LicenseFileStore
	blobs    storage.Storage
	cap      int
	logger   *zap.Logger

	// serializes the count-check-and-insert sequence per license so two
	// concurrent batches cannot jointly exceed the cap
	locks keyedMutex
}

// AttachmentServiceOption is a functional option for AttachmentService
type AttachmentServiceOption func(*AttachmentService)

// WithAttachmentCap overrides the per-license attachment cap
func WithAttachmentCap(n int) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.cap = n
	}
}

// WithAttachmentLogger sets the logger
func WithAttachmentLogger(logger *zap.Logger) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.logger = logger
	}
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(licenses LicenseStore, files LicenseFileStore, blobs storage.Storage, opts ...AttachmentServiceOption) *AttachmentService {
	s := &AttachmentService{
		licenses: licenses,
		files:    files,
		blobs:    blobs,
		cap:      DefaultAttachmentCap,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cap returns the per-license attachment cap
func (s *AttachmentService) Cap() int {
	return s.cap
}

// AddFiles attaches a batch of uploads to a license. The whole batch is
// gated on the cap before any blob is written; a storage failure mid-batch
// removes the blobs already written for this batch before returning. Rows
// are only created for blobs that stored successfully, and the license's
// legacy single-file fields are backfilled from the first file when empty.
func (s *AttachmentService) AddFiles(ctx context.Context, licenseID uuid.UUID, uploads []Upload) ([]*models.LicenseFile, error) {
	if len(uploads) == 0 {
		return nil, &ValidationError{Field: "files", Message: "no files in upload"}
	}

	unlock := s.locks.lock(licenseID)
	defer unlock()

	license, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return nil, orNotFound(err)
	}

	count, err := s.files.CountByLicenseID(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	if int(count)+len(uploads) > s.cap {
		return nil, &CapExceededError{
			Current:   int(count),
			Attempted: len(uploads),
			Cap:       s.cap,
		}
	}

	// Phase one: write every blob. All blobs written so far are removed if
	// any write fails, so a rejected batch never leaves stray blobs behind.
	type pending struct {
		id      uuid.UUID
		name    string
		locator string
	}
	stored := make([]pending, 0, len(uploads))
	discard := func(from int) {
		for _, p := range stored[from:] {
			if err := s.blobs.Delete(ctx, p.locator); err != nil {
				s.logger.Warn("failed to remove blob while unwinding upload",
					zap.String("locator", p.locator),
					zap.Error(err))
			}
		}
	}

	for _, up := range uploads {
		fileID := uuid.New()
		locator, err := s.blobs.Store(ctx, fileID, up.FileName, up.Data)
		if err != nil {
			discard(0)
			return nil, &StorageError{Op: "store", Err: err}
		}
		stored = append(stored, pending{id: fileID, name: up.FileName, locator: locator})
	}

	// Phase two: create the rows. A row failure keeps the files committed
	// so far and discards the blobs that never got a row.
	created := make([]*models.LicenseFile, 0, len(stored))
	for i, p := range stored {
		file := &models.LicenseFile{
			ID:        p.id,
			LicenseID: licenseID,
			FileName:  p.name,
			FileURL:   p.locator,
		}
		if err := s.files.Create(ctx, file); err != nil {
			discard(i)
			s.backfillLegacy(ctx, license, created)
			return nil, err
		}
		created = append(created, file)
	}

	s.backfillLegacy(ctx, license, created)
	return created, nil
}

// backfillLegacy mirrors the first committed file into the license's legacy
// single-file columns when they are still empty. It runs even for a
// partially committed batch, since those files are kept.
func (s *AttachmentService) backfillLegacy(ctx context.Context, license *models.License, created []*models.LicenseFile) {
	if len(created) == 0 {
		return
	}
	if license.FileName != nil && *license.FileName != "" {
		return
	}
	first := created[0]
	if err := s.licenses.UpdateLegacyFile(ctx, license.ID, first.FileName, first.FileURL); err != nil {
		s.logger.Warn("failed to backfill legacy file fields",
			zap.String("license_id", license.ID.String()),
			zap.Error(err))
	}
}

// DeleteFile removes one attachment: the blob first, then the row. A crash
// between the two steps leaves at worst a dangling row pointing at a missing
// blob, never an unreferenced blob on disk. A blob that is already gone is
// treated as deleted.
func (s *AttachmentService) DeleteFile(ctx context.Context, licenseID, fileID uuid.UUID) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return orNotFound(err)
	}
	if file.LicenseID != licenseID {
		return ErrNotFound
	}

	if err := s.blobs.Delete(ctx, file.FileURL); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	return s.files.Delete(ctx, fileID)
}

// DeleteAllForLicense removes every attachment of a license, blobs first.
// Callers must invoke it before deleting the license row itself; a storage
// failure aborts so the whole license deletion can be retried.
func (s *AttachmentService) DeleteAllForLicense(ctx context.Context, licenseID uuid.UUID) error {
	files, err := s.files.ListByLicenseID(ctx, licenseID)
	if err != nil {
		return err
	}

	for _, file := range files {
		if err := s.blobs.Delete(ctx, file.FileURL); err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
	}

	return s.files.DeleteByLicenseID(ctx, licenseID)
}

// DownloadFile returns the blob stream of an attachment together with its
// record, whose FileName is the client's suggested download name. Missing
// row or missing blob both yield ErrNotFound.
func (s *AttachmentService) DownloadFile(ctx context.Context, licenseID, fileID uuid.UUID) (io.ReadCloser, *models.LicenseFile, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, orNotFound(err)
	}
	if file.LicenseID != licenseID {
		return nil, nil, ErrNotFound
	}

	rc, err := s.blobs.Open(ctx, file.FileURL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("attachment row exists but blob is missing",
				zap.String("file_id", fileID.String()),
				zap.String("locator", file.FileURL))
			return nil, nil, ErrNotFound
		}
		return nil, nil, &StorageError{Op: "open", Err: err}
	}

	return rc, file, nil
}

// keyedMutex hands out one mutex per license. Entries are never evicted;
// the set of licenses touched by uploads in one process lifetime is small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (k *keyedMutex) lock(id uuid.UUID) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
