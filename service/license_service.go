package service

import (
	"context"
	"time"

	"licensetracker/models"
	"licensetracker/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LicenseService handles business logic for licenses. Every license it
// returns is annotated with a freshly computed status and its attachments.
type LicenseService struct {
	licenses    LicenseStore
	files       LicenseFileStore
	companies   CompanyStore
	attachments *AttachmentService
	logger      *zap.Logger
	now         func() time.Time
}

// LicenseServiceOption is a functional option for LicenseService
type LicenseServiceOption func(*LicenseService)

// WithLicenseClock overrides the clock used for status computation (tests)
func WithLicenseClock(now func() time.Time) LicenseServiceOption {
	return func(s *LicenseService) {
		s.now = now
	}
}

// WithLicenseLogger sets the logger
func WithLicenseLogger(logger *zap.Logger) LicenseServiceOption {
	return func(s *LicenseService) {
		s.logger = logger
	}
}

// NewLicenseService creates a new license service
func NewLicenseService(licenses LicenseStore, files LicenseFileStore, companies CompanyStore, attachments *AttachmentService, opts ...LicenseServiceOption) *LicenseService {
	s := &LicenseService{
		licenses:    licenses,
		files:       files,
		companies:   companies,
		attachments: attachments,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLicenseRequest represents a request to create a license
type CreateLicenseRequest struct {
	CompanyID  uuid.UUID
	Type       models.LicenseType
	SubType    *string
	IssueDate  time.Time
	ExpiryDate time.Time
}

// CreateLicense creates a license after validating required fields and the
// owning company's existence
func (s *LicenseService) CreateLicense(ctx context.Context, req CreateLicenseRequest) (*models.License, error) {
	if req.CompanyID == uuid.Nil {
		return nil, &ValidationError{Field: "company_id", Message: "required"}
	}
	if req.Type == "" {
		return nil, &ValidationError{Field: "type", Message: "required"}
	}
	if !models.ValidLicenseType(req.Type) {
		return nil, &ValidationError{Field: "type", Message: "unknown license type"}
	}
	if req.IssueDate.IsZero() {
		return nil, &ValidationError{Field: "issue_date", Message: "required"}
	}
	if req.ExpiryDate.IsZero() {
		return nil, &ValidationError{Field: "expiry_date", Message: "required"}
	}

	company, err := s.companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, orNotFound(err)
	}

	license := &models.License{
		CompanyID:  req.CompanyID,
		Type:       req.Type,
		SubType:    req.SubType,
		IssueDate:  req.IssueDate,
		ExpiryDate: req.ExpiryDate,
	}
	if err := s.licenses.Create(ctx, license); err != nil {
		return nil, err
	}

	license.Company = company
	license.Files = []*models.LicenseFile{}
	s.annotate(license)
	return license, nil
}

// GetLicense retrieves one license with files and computed status
func (s *LicenseService) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	license, err := s.licenses.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	if err := s.loadFiles(ctx, license); err != nil {
		return nil, err
	}
	s.annotate(license)
	return license, nil
}

// ListLicensesRequest represents license list filters. Status filtering
// happens after annotation since status is never stored.
type ListLicensesRequest struct {
	CompanyID *uuid.UUID
	Type      models.LicenseType
	Status    models.LicenseStatus
}

// ListLicenses retrieves licenses matching the filters, soonest expiry first
func (s *LicenseService) ListLicenses(ctx context.Context, req ListLicensesRequest) ([]*models.License, error) {
	licenses, err := s.licenses.List(ctx, repository.LicenseFilter{
		CompanyID: req.CompanyID,
		Type:      req.Type,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*models.License, 0, len(licenses))
	for _, license := range licenses {
		if err := s.loadFiles(ctx, license); err != nil {
			return nil, err
		}
		s.annotate(license)
		if req.Status != "" && license.Status != req.Status {
			continue
		}
		out = append(out, license)
	}

	return out, nil
}

// UpdateLicenseRequest represents a partial license update; nil fields keep
// their current value
type UpdateLicenseRequest struct {
	ID         uuid.UUID
	CompanyID  *uuid.UUID
	Type       *models.LicenseType
	SubType    *string
	IssueDate  *time.Time
	ExpiryDate *time.Time
}

// UpdateLicense applies a partial update and returns the annotated license
func (s *LicenseService) UpdateLicense(ctx context.Context, req UpdateLicenseRequest) (*models.License, error) {
	license, err := s.licenses.GetByID(ctx, req.ID)
	if err != nil {
		return nil, orNotFound(err)
	}

	if req.CompanyID != nil {
		if _, err := s.companies.GetByID(ctx, *req.CompanyID); err != nil {
			return nil, orNotFound(err)
		}
		license.CompanyID = *req.CompanyID
	}
	if req.Type != nil {
		if !models.ValidLicenseType(*req.Type) {
			return nil, &ValidationError{Field: "type", Message: "unknown license type"}
		}
		license.Type = *req.Type
	}
	if req.SubType != nil {
		license.SubType = req.SubType
	}
	if req.IssueDate != nil {
		license.IssueDate = *req.IssueDate
	}
	if req.ExpiryDate != nil {
		license.ExpiryDate = *req.ExpiryDate
	}

	if err := s.licenses.Update(ctx, license); err != nil {
		return nil, err
	}

	if err := s.loadFiles(ctx, license); err != nil {
		return nil, err
	}
	s.annotate(license)
	return license, nil
}

// DeleteLicense removes a license, deleting every attachment blob and row
// before the license row so no blob is ever orphaned
func (s *LicenseService) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	if _, err := s.licenses.GetByID(ctx, id); err != nil {
		return orNotFound(err)
	}
	if err := s.attachments.DeleteAllForLicense(ctx, id); err != nil {
		return err
	}
	return s.licenses.Delete(ctx, id)
}

// LicenseStats aggregates licenses by computed status
type LicenseStats struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}

// Stats computes status counts over all licenses
func (s *LicenseService) Stats(ctx context.Context) (*LicenseStats, error) {
	licenses, err := s.licenses.List(ctx, repository.LicenseFilter{})
	if err != nil {
		return nil, err
	}

	stats := &LicenseStats{}
	now := s.now()
	for _, license := range licenses {
		stats.Total++
		switch models.ComputeStatus(license.ExpiryDate, now) {
		case models.StatusValid:
			stats.Valid++
		case models.StatusExpiring:
			stats.Expiring++
		case models.StatusExpired:
			stats.Expired++
		}
	}

	return stats, nil
}

func (s *LicenseService) loadFiles(ctx context.Context, license *models.License) error {
	files, err := s.files.ListByLicenseID(ctx, license.ID)
	if err != nil {
		return err
	}
	if files == nil {
		files = []*models.LicenseFile{}
	}
	license.Files = files
	return nil
}

// annotate stamps the computed status; it runs on every read so the status
// always reflects the current clock, never a stored value
func (s *LicenseService) annotate(license *models.License) {
	license.Status = models.ComputeStatus(license.ExpiryDate, s.now())
}
