package service

import (
	"context"

	"licensetracker/models"
	"licensetracker/repository"

	"github.com/google/uuid"
)

// Store interfaces are satisfied by the repository package. Services depend
// on them rather than on concrete repositories so tests can substitute
// in-memory fakes.

// CompanyStore persists companies
type CompanyStore interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LicenseStore persists licenses
type LicenseStore interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	List(ctx context.Context, filter repository.LicenseFilter) ([]*models.License, error)
	ListByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.License, error)
	Update(ctx context.Context, license *models.License) error
	UpdateLegacyFile(ctx context.Context, id uuid.UUID, fileName, fileURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LicenseFileStore persists license attachments. CountByLicenseID must be
// atomic with respect to concurrent inserts for the cap check to hold.
type LicenseFileStore interface {
	Create(ctx context.Context, file *models.LicenseFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LicenseFile, error)
	ListByLicenseID(ctx context.Context, licenseID uuid.UUID) ([]*models.LicenseFile, error)
	CountByLicenseID(ctx context.Context, licenseID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLicenseID(ctx context.Context, licenseID uuid.UUID) error
}
