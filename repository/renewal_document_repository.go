package repository

import (
	"context"

	"licensetracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RenewalDocumentRepository handles database operations for renewal documents
type RenewalDocumentRepository struct {
	db *pgxpool.Pool
}

// NewRenewalDocumentRepository creates a new renewal document repository
func NewRenewalDocumentRepository(db *pgxpool.Pool) *RenewalDocumentRepository {
	return &RenewalDocumentRepository{db: db}
}

// Create creates a new renewal document record
func (r *RenewalDocumentRepository) Create(ctx context.Context, doc *models.RenewalDocument) error {
	query := `
		INSERT INTO renewal_documents (id, license_type, document_name, file_name, file_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING uploaded_at`

	return r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.LicenseType,
		doc.DocumentName,
		doc.FileName,
		doc.FileURL,
	).Scan(&doc.UploadedAt)
}

// GetByID retrieves a renewal document by ID
func (r *RenewalDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RenewalDocument, error) {
	doc := &models.RenewalDocument{}
	query := `
		SELECT id, license_type, document_name, file_name, file_url, uploaded_at
		FROM renewal_documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.LicenseType,
		&doc.DocumentName,
		&doc.FileName,
		&doc.FileURL,
		&doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// List retrieves renewal documents, optionally filtered by license type,
// newest first
func (r *RenewalDocumentRepository) List(ctx context.Context, licenseType models.LicenseType) ([]*models.RenewalDocument, error) {
	query := `
		SELECT id, license_type, document_name, file_name, file_url, uploaded_at
		FROM renewal_documents
		WHERE ($1 = '' OR license_type = $1)
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, string(licenseType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.RenewalDocument
	for rows.Next() {
		doc := &models.RenewalDocument{}
		err := rows.Scan(
			&doc.ID,
			&doc.LicenseType,
			&doc.DocumentName,
			&doc.FileName,
			&doc.FileURL,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Delete deletes a renewal document record
func (r *RenewalDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM renewal_documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
