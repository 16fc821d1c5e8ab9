package repository

import (
	"context"

	"licensetracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RenewalURLRepository handles database operations for renewal portal URLs
type RenewalURLRepository struct {
	db *pgxpool.Pool
}

// NewRenewalURLRepository creates a new renewal URL repository
func NewRenewalURLRepository(db *pgxpool.Pool) *RenewalURLRepository {
	return &RenewalURLRepository{db: db}
}

// Create creates a new renewal URL record
func (r *RenewalURLRepository) Create(ctx context.Context, u *models.RenewalURL) error {
	query := `
		INSERT INTO renewal_urls (license_type, url, description)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRow(ctx, query, u.LicenseType, u.URL, u.Description).Scan(&u.ID)
}

// GetByID retrieves a renewal URL by ID
func (r *RenewalURLRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RenewalURL, error) {
	u := &models.RenewalURL{}
	query := `
		SELECT id, license_type, url, description
		FROM renewal_urls
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.LicenseType,
		&u.URL,
		&u.Description,
	)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// List retrieves all renewal URLs ordered by license type
func (r *RenewalURLRepository) List(ctx context.Context) ([]*models.RenewalURL, error) {
	query := `
		SELECT id, license_type, url, description
		FROM renewal_urls
		ORDER BY license_type ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []*models.RenewalURL
	for rows.Next() {
		u := &models.RenewalURL{}
		err := rows.Scan(&u.ID, &u.LicenseType, &u.URL, &u.Description)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// Update updates a renewal URL record
func (r *RenewalURLRepository) Update(ctx context.Context, u *models.RenewalURL) error {
	query := `
		UPDATE renewal_urls
		SET license_type = $2, url = $3, description = $4
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, u.ID, u.LicenseType, u.URL, u.Description)
	return err
}

// Delete deletes a renewal URL record
func (r *RenewalURLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM renewal_urls WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
