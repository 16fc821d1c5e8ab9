package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"licensetracker/models"
	"licensetracker/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLicense(t *testing.T, licenses *fakeLicenseStore) *models.License {
	t.Helper()
	return licenses.add(&models.License{
		CompanyID:  uuid.New(),
		Type:       models.LicenseTypeIBAMA,
		IssueDate:  time.Now().AddDate(-1, 0, 0),
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
}

func newTestAttachments(t *testing.T, opts ...AttachmentServiceOption) (*AttachmentService, *fakeLicenseStore, *fakeLicenseFileStore, storage.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	licenses := newFakeLicenseStore()
	files := newFakeLicenseFileStore()
	return NewAttachmentService(licenses, files, blobs, opts...), licenses, files, blobs, dir
}

func uploadsOf(contents ...string) []Upload {
	ups := make([]Upload, 0, len(contents))
	for i, c := range contents {
		ups = append(ups, Upload{
			FileName: fmt.Sprintf("document-%d.pdf", i+1),
			Data:     strings.NewReader(c),
		})
	}
	return ups
}

// blobCount walks the storage dir and counts regular files
func blobCount(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestAddFiles(t *testing.T) {
	svc, licenses, files, blobs, dir := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	created, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("alpha", "beta"))
	require.NoError(t, err)
	require.Len(t, created, 2)

	count, err := files.CountByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, 2, blobCount(t, dir))

	for i, want := range []string{"alpha", "beta"} {
		rc, err := blobs.Open(context.Background(), created[i].FileURL)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, want, string(data))
	}

	// the stored name comes from the generated id, not the client's name
	for _, file := range created {
		assert.NotContains(t, file.FileURL, "document-")
		assert.True(t, strings.HasSuffix(file.FileURL, ".pdf"))
	}
}

func TestAddFilesBackfillsLegacyFields(t *testing.T) {
	svc, licenses, _, _, _ := newTestAttachments(t)
	license := newTestLicense(t, licenses)
	require.Nil(t, license.FileName)

	created, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("a", "b"))
	require.NoError(t, err)

	got, err := licenses.GetByID(context.Background(), license.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FileName)
	assert.Equal(t, created[0].FileName, *got.FileName)
	assert.Equal(t, created[0].FileURL, *got.FileURL)

	// subsequent batches must not overwrite the legacy view
	_, err = svc.AddFiles(context.Background(), license.ID, uploadsOf("c"))
	require.NoError(t, err)
	got, err = licenses.GetByID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].FileName, *got.FileName)
}

func TestAddFilesLicenseNotFound(t *testing.T) {
	svc, _, _, _, dir := newTestAttachments(t)

	_, err := svc.AddFiles(context.Background(), uuid.New(), uploadsOf("a"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, blobCount(t, dir))
}

func TestAddFilesEmptyBatch(t *testing.T) {
	svc, licenses, _, _, _ := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	_, err := svc.AddFiles(context.Background(), license.ID, nil)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestAddFilesCapExceeded(t *testing.T) {
	svc, licenses, files, _, dir := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	// fill the license up to the cap
	for i := 0; i < DefaultAttachmentCap; i++ {
		require.NoError(t, files.Create(context.Background(), &models.LicenseFile{
			ID:        uuid.New(),
			LicenseID: license.ID,
			FileName:  fmt.Sprintf("existing-%d.pdf", i),
			FileURL:   fmt.Sprintf("aa/existing-%d.pdf", i),
		}))
	}

	_, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("one more"))
	var capErr *CapExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, DefaultAttachmentCap, capErr.Current)
	assert.Equal(t, 1, capErr.Attempted)
	assert.Equal(t, DefaultAttachmentCap, capErr.Cap)

	count, err := files.CountByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultAttachmentCap, count)
	// the rejected batch never reached storage
	assert.Equal(t, 0, blobCount(t, dir))
}

func TestAddFilesCapCountsWholeBatch(t *testing.T) {
	svc, licenses, files, _, _ := newTestAttachments(t, WithAttachmentCap(3))
	license := newTestLicense(t, licenses)

	_, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("a", "b"))
	require.NoError(t, err)

	// 2 existing + 2 attempted > 3
	_, err = svc.AddFiles(context.Background(), license.ID, uploadsOf("c", "d"))
	var capErr *CapExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Current)
	assert.Equal(t, 2, capErr.Attempted)

	count, err := files.CountByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// 2 existing + 1 attempted == 3 is still allowed
	_, err = svc.AddFiles(context.Background(), license.ID, uploadsOf("c"))
	assert.NoError(t, err)
}

// failingStorage fails the n-th Store call (1-based)
type failingStorage struct {
	storage.Storage
	mu     sync.Mutex
	failOn int
	calls  int
}

func (f *failingStorage) Store(ctx context.Context, blobID uuid.UUID, filename string, data io.Reader) (string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls == f.failOn
	f.mu.Unlock()
	if fail {
		return "", errors.New("disk full")
	}
	return f.Storage.Store(ctx, blobID, filename, data)
}

func TestAddFilesStorageFailureRollsBackBatch(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	blobs := &failingStorage{Storage: local, failOn: 2}
	licenses := newFakeLicenseStore()
	files := newFakeLicenseFileStore()
	svc := NewAttachmentService(licenses, files, blobs)
	license := newTestLicense(t, licenses)

	_, err = svc.AddFiles(context.Background(), license.ID, uploadsOf("a", "b", "c"))
	var storErr *StorageError
	require.ErrorAs(t, err, &storErr)

	// the blob written before the failure was removed and no rows exist
	count, err := files.CountByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Equal(t, 0, blobCount(t, dir))
}

func TestAddFilesRowFailureKeepsCommittedFiles(t *testing.T) {
	svc, licenses, files, blobs, dir := newTestAttachments(t)
	license := newTestLicense(t, licenses)
	files.failOnCreate = 2
	files.createErr = errors.New("insert failed")

	_, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("a", "b", "c"))
	require.Error(t, err)

	// the first file got its row and keeps its blob; the rest were unwound
	listed, err := files.ListByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, blobCount(t, dir))

	rc, err := blobs.Open(context.Background(), listed[0].FileURL)
	require.NoError(t, err)
	rc.Close()

	// the kept file is the license's first, so the legacy columns point at it
	got, err := licenses.GetByID(context.Background(), license.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FileName)
	assert.Equal(t, listed[0].FileName, *got.FileName)
	require.NotNil(t, got.FileURL)
	assert.Equal(t, listed[0].FileURL, *got.FileURL)
}

func TestDeleteFile(t *testing.T) {
	svc, licenses, files, blobs, dir := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	created, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("payload"))
	require.NoError(t, err)
	fileID := created[0].ID

	require.NoError(t, svc.DeleteFile(context.Background(), license.ID, fileID))

	_, err = files.GetByID(context.Background(), fileID)
	assert.Error(t, err)
	_, err = blobs.Open(context.Background(), created[0].FileURL)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 0, blobCount(t, dir))

	// downloading the deleted file reports NotFound
	_, _, err = svc.DownloadFile(context.Background(), license.ID, fileID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFileMissingBlobIsIdempotent(t *testing.T) {
	svc, licenses, files, _, dir := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	created, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("payload"))
	require.NoError(t, err)

	// simulate the blob vanishing from storage out of band
	require.NoError(t, os.Remove(filepath.Join(dir, created[0].FileURL)))

	require.NoError(t, svc.DeleteFile(context.Background(), license.ID, created[0].ID))
	_, err = files.GetByID(context.Background(), created[0].ID)
	assert.Error(t, err)
}

func TestDeleteFileWrongLicense(t *testing.T) {
	svc, licenses, _, _, _ := newTestAttachments(t)
	license := newTestLicense(t, licenses)
	other := newTestLicense(t, licenses)

	created, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("payload"))
	require.NoError(t, err)

	err = svc.DeleteFile(context.Background(), other.ID, created[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFileNotFound(t *testing.T) {
	svc, licenses, _, _, _ := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	err := svc.DeleteFile(context.Background(), license.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllForLicense(t *testing.T) {
	svc, licenses, files, _, dir := newTestAttachments(t)
	license := newTestLicense(t, licenses)
	other := newTestLicense(t, licenses)

	_, err := svc.AddFiles(context.Background(), license.ID, uploadsOf("a", "b", "c"))
	require.NoError(t, err)
	kept, err := svc.AddFiles(context.Background(), other.ID, uploadsOf("keep"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllForLicense(context.Background(), license.ID))

	count, err := files.CountByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	// the other license's attachment is untouched
	assert.Equal(t, 1, blobCount(t, dir))
	_, _, err = svc.DownloadFile(context.Background(), other.ID, kept[0].ID)
	assert.NoError(t, err)
}

func TestDownloadFile(t *testing.T) {
	svc, licenses, _, _, _ := newTestAttachments(t)
	license := newTestLicense(t, licenses)

	created, err := svc.AddFiles(context.Background(), license.ID, []Upload{
		{FileName: "relatório.pdf", Data: strings.NewReader("conteúdo")},
	})
	require.NoError(t, err)

	rc, file, err := svc.DownloadFile(context.Background(), license.ID, created[0].ID)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "relatório.pdf", file.FileName)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "conteúdo", string(data))
}

func TestConcurrentAddsNeverExceedCap(t *testing.T) {
	const capLimit = 5
	svc, licenses, files, _, _ := newTestAttachments(t, WithAttachmentCap(capLimit))
	license := newTestLicense(t, licenses)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddFiles(context.Background(), license.ID, uploadsOf("a", "b", "c"))
		}(i)
	}
	wg.Wait()

	count, err := files.CountByLicenseID(context.Background(), license.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(capLimit), "concurrent batches must not race past the cap")

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *CapExceededError
		assert.ErrorAs(t, err, &capErr)
	}
	assert.Equal(t, 1, succeeded, "only one 3-file batch fits under a cap of 5")
}
