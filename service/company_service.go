package service

import (
	"context"
	"errors"

	"licensetracker/models"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// CompanyService handles business logic for companies
type CompanyService struct {
	companies   CompanyStore
	licenses    LicenseStore
	attachments *AttachmentService
	logger      *zap.Logger
}

// CompanyServiceOption is a functional option for CompanyService
type CompanyServiceOption func(*CompanyService)

// WithCompanyLogger sets the logger
func WithCompanyLogger(logger *zap.Logger) CompanyServiceOption {
	return func(s *CompanyService) {
		s.logger = logger
	}
}

// NewCompanyService creates a new company service
func NewCompanyService(companies CompanyStore, licenses LicenseStore, attachments *AttachmentService, opts ...CompanyServiceOption) *CompanyService {
	s := &CompanyService{
		companies:   companies,
		licenses:    licenses,
		attachments: attachments,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCompanyRequest represents a request to create a company
type CreateCompanyRequest struct {
	CNPJ string
	Name string
}

// CreateCompany creates a company; the tax identifier must be unique
func (s *CompanyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*models.Company, error) {
	if req.CNPJ == "" {
		return nil, &ValidationError{Field: "cnpj", Message: "required"}
	}
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "required"}
	}

	_, err := s.companies.GetByCNPJ(ctx, req.CNPJ)
	if err == nil {
		return nil, &ValidationError{Field: "cnpj", Message: "already registered"}
	}
	if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	company := &models.Company{CNPJ: req.CNPJ, Name: req.Name}
	if err := s.companies.Create(ctx, company); err != nil {
		// a concurrent create can slip past the pre-check; the unique
		// constraint reports it the same way
		if isUniqueViolation(err) {
			return nil, &ValidationError{Field: "cnpj", Message: "already registered"}
		}
		return nil, err
	}
	return company, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// GetCompany retrieves a company by ID
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	return company, nil
}

// ListCompanies retrieves all companies with license counts, newest first
func (s *CompanyService) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	return s.companies.List(ctx)
}

// UpdateCompanyRequest represents a request to update a company
type UpdateCompanyRequest struct {
	ID   uuid.UUID
	CNPJ string
	Name string
}

// UpdateCompany updates a company's tax identifier and name
func (s *CompanyService) UpdateCompany(ctx context.Context, req UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, req.ID)
	if err != nil {
		return nil, orNotFound(err)
	}

	if req.CNPJ != "" && req.CNPJ != company.CNPJ {
		existing, err := s.companies.GetByCNPJ(ctx, req.CNPJ)
		switch {
		case err == nil && existing.ID != company.ID:
			return nil, &ValidationError{Field: "cnpj", Message: "already registered"}
		case err != nil && !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, ErrNotFound):
			return nil, err
		}
		company.CNPJ = req.CNPJ
	}
	if req.Name != "" {
		company.Name = req.Name
	}

	if err := s.companies.Update(ctx, company); err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Field: "cnpj", Message: "already registered"}
		}
		return nil, err
	}
	return company, nil
}

// DeleteCompany deletes a company and cascades through its licenses, going
// through the license deletion path so every attachment blob is removed
// before the rows
func (s *CompanyService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	if _, err := s.companies.GetByID(ctx, id); err != nil {
		return orNotFound(err)
	}

	licenses, err := s.licenses.ListByCompanyID(ctx, id)
	if err != nil {
		return err
	}
	for _, license := range licenses {
		if err := s.attachments.DeleteAllForLicense(ctx, license.ID); err != nil {
			return err
		}
		if err := s.licenses.Delete(ctx, license.ID); err != nil {
			return err
		}
	}

	return s.companies.Delete(ctx, id)
}
