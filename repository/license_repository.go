package repository

import (
	"context"

	"licensetracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LicenseFilter narrows License listings. Zero values mean "no filter".
type LicenseFilter struct {
	CompanyID *uuid.UUID
	Type      models.LicenseType
}

// LicenseRepository handles database operations for licenses
type LicenseRepository struct {
	db *pgxpool.Pool
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(db *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// Create creates a new license record
func (r *LicenseRepository) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (
			company_id, type, sub_type, issue_date, expiry_date, file_name, file_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		license.CompanyID,
		license.Type,
		license.SubType,
		license.IssueDate,
		license.ExpiryDate,
		license.FileName,
		license.FileURL,
	).Scan(&license.ID, &license.CreatedAt, &license.UpdatedAt)
}

// GetByID retrieves a license by ID, including its company
func (r *LicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	license := &models.License{Company: &models.Company{}}
	query := `
		SELECT l.id, l.company_id, l.type, l.sub_type, l.issue_date, l.expiry_date,
		       l.file_name, l.file_url, l.created_at, l.updated_at,
		       c.id, c.cnpj, c.name, c.created_at
		FROM licenses l
		JOIN companies c ON c.id = l.company_id
		WHERE l.id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&license.ID,
		&license.CompanyID,
		&license.Type,
		&license.SubType,
		&license.IssueDate,
		&license.ExpiryDate,
		&license.FileName,
		&license.FileURL,
		&license.CreatedAt,
		&license.UpdatedAt,
		&license.Company.ID,
		&license.Company.CNPJ,
		&license.Company.Name,
		&license.Company.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return license, nil
}

// List retrieves licenses matching the filter, soonest expiry first
func (r *LicenseRepository) List(ctx context.Context, filter LicenseFilter) ([]*models.License, error) {
	query := `
		SELECT l.id, l.company_id, l.type, l.sub_type, l.issue_date, l.expiry_date,
		       l.file_name, l.file_url, l.created_at, l.updated_at,
		       c.id, c.cnpj, c.name, c.created_at
		FROM licenses l
		JOIN companies c ON c.id = l.company_id
		WHERE ($1::uuid IS NULL OR l.company_id = $1)
		  AND ($2::text IS NULL OR $2 = '' OR l.type = $2)
		ORDER BY l.expiry_date ASC`

	rows, err := r.db.Query(ctx, query, filter.CompanyID, string(filter.Type))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		license := &models.License{Company: &models.Company{}}
		err := rows.Scan(
			&license.ID,
			&license.CompanyID,
			&license.Type,
			&license.SubType,
			&license.IssueDate,
			&license.ExpiryDate,
			&license.FileName,
			&license.FileURL,
			&license.CreatedAt,
			&license.UpdatedAt,
			&license.Company.ID,
			&license.Company.CNPJ,
			&license.Company.Name,
			&license.Company.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}

	return licenses, rows.Err()
}

// ListByCompanyID retrieves all licenses owned by a company
func (r *LicenseRepository) ListByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.License, error) {
	return r.List(ctx, LicenseFilter{CompanyID: &companyID})
}

// Update updates a license's mutable fields
func (r *LicenseRepository) Update(ctx context.Context, license *models.License) error {
	query := `
		UPDATE licenses
		SET company_id = $2, type = $3, sub_type = $4, issue_date = $5,
		    expiry_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		license.ID,
		license.CompanyID,
		license.Type,
		license.SubType,
		license.IssueDate,
		license.ExpiryDate,
	).Scan(&license.UpdatedAt)
}

// UpdateLegacyFile backfills the legacy single-file columns on a license
func (r *LicenseRepository) UpdateLegacyFile(ctx context.Context, id uuid.UUID, fileName, fileURL string) error {
	query := `
		UPDATE licenses
		SET file_name = $2, file_url = $3, updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, fileName, fileURL)
	return err
}

// Delete deletes a license record
func (r *LicenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM licenses WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
