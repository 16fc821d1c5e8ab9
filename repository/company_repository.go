package repository

import (
	"context"

	"licensetracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompanyRepository handles database operations for companies
type CompanyRepository struct {
	db *pgxpool.Pool
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create creates a new company record
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (cnpj, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, company.CNPJ, company.Name).
		Scan(&company.ID, &company.CreatedAt)
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company := &models.Company{}
	query := `
		SELECT id, cnpj, name, created_at
		FROM companies
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.CNPJ,
		&company.Name,
		&company.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return company, nil
}

// GetByCNPJ retrieves a company by its tax identifier
func (r *CompanyRepository) GetByCNPJ(ctx context.Context, cnpj string) (*models.Company, error) {
	company := &models.Company{}
	query := `
		SELECT id, cnpj, name, created_at
		FROM companies
		WHERE cnpj = $1`

	err := r.db.QueryRow(ctx, query, cnpj).Scan(
		&company.ID,
		&company.CNPJ,
		&company.Name,
		&company.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return company, nil
}

// List retrieves all companies, newest first, with their license counts
func (r *CompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	query := `
		SELECT c.id, c.cnpj, c.name, c.created_at, COUNT(l.id)
		FROM companies c
		LEFT JOIN licenses l ON l.company_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		err := rows.Scan(
			&company.ID,
			&company.CNPJ,
			&company.Name,
			&company.CreatedAt,
			&company.LicenseCount,
		)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}

	return companies, rows.Err()
}

// Update updates a company's tax identifier and name
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET cnpj = $2, name = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, company.ID, company.CNPJ, company.Name)
	return err
}

// Delete deletes a company record
func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM companies WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
