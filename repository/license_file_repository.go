package repository

import (
	"context"

	"licensetracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LicenseFileRepository handles database operations for license attachments
type LicenseFileRepository struct {
	db *pgxpool.Pool
}

// NewLicenseFileRepository creates a new license file repository
func NewLicenseFileRepository(db *pgxpool.Pool) *LicenseFileRepository {
	return &LicenseFileRepository{db: db}
}

// Create creates a new license file record
func (r *LicenseFileRepository) Create(ctx context.Context, file *models.LicenseFile) error {
	query := `
		INSERT INTO license_files (id, license_id, file_name, file_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		file.ID,
		file.LicenseID,
		file.FileName,
		file.FileURL,
	).Scan(&file.CreatedAt)
}

// GetByID retrieves a license file by ID
func (r *LicenseFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LicenseFile, error) {
	file := &models.LicenseFile{}
	query := `
		SELECT id, license_id, file_name, file_url, created_at
		FROM license_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.LicenseID,
		&file.FileName,
		&file.FileURL,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// ListByLicenseID retrieves all files attached to a license
func (r *LicenseFileRepository) ListByLicenseID(ctx context.Context, licenseID uuid.UUID) ([]*models.LicenseFile, error) {
	query := `
		SELECT id, license_id, file_name, file_url, created_at
		FROM license_files
		WHERE license_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, licenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.LicenseFile
	for rows.Next() {
		file := &models.LicenseFile{}
		err := rows.Scan(
			&file.ID,
			&file.LicenseID,
			&file.FileName,
			&file.FileURL,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// CountByLicenseID counts the files attached to a license. Backs the
// per-license attachment cap check.
func (r *LicenseFileRepository) CountByLicenseID(ctx context.Context, licenseID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM license_files WHERE license_id = $1`
	err := r.db.QueryRow(ctx, query, licenseID).Scan(&count)
	return count, err
}

// Delete deletes a license file record
func (r *LicenseFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM license_files WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// DeleteByLicenseID deletes all file records attached to a license
func (r *LicenseFileRepository) DeleteByLicenseID(ctx context.Context, licenseID uuid.UUID) error {
	query := `DELETE FROM license_files WHERE license_id = $1`
	_, err := r.db.Exec(ctx, query, licenseID)
	return err
}
