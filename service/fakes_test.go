package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"licensetracker/models"
	"licensetracker/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory stores standing in for the pgx repositories. All of them are
// safe for concurrent use so the serialization tests exercise the service's
// locking, not the fakes'.

type fakeCompanyStore struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*models.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: make(map[uuid.UUID]*models.Company)}
}

func (f *fakeCompanyStore) Create(ctx context.Context, company *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	company.ID = uuid.New()
	company.CreatedAt = time.Now()
	f.companies[company.ID] = company
	return nil
}

func (f *fakeCompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	company, ok := f.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return company, nil
}

func (f *fakeCompanyStore) GetByCNPJ(ctx context.Context, cnpj string) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, company := range f.companies {
		if company.CNPJ == cnpj {
			return company, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCompanyStore) List(ctx context.Context) ([]*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Company, 0, len(f.companies))
	for _, company := range f.companies {
		out = append(out, company)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCompanyStore) Update(ctx context.Context, company *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.companies[company.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.companies[company.ID] = company
	return nil
}

func (f *fakeCompanyStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.companies, id)
	return nil
}

type fakeLicenseStore struct {
	mu       sync.Mutex
	licenses map[uuid.UUID]*models.License
}

func newFakeLicenseStore() *fakeLicenseStore {
	return &fakeLicenseStore{licenses: make(map[uuid.UUID]*models.License)}
}

func (f *fakeLicenseStore) Create(ctx context.Context, license *models.License) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	license.ID = uuid.New()
	license.CreatedAt = time.Now()
	license.UpdatedAt = license.CreatedAt
	f.licenses[license.ID] = license
	return nil
}

func (f *fakeLicenseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	license, ok := f.licenses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return license, nil
}

func (f *fakeLicenseStore) List(ctx context.Context, filter repository.LicenseFilter) ([]*models.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.License
	for _, license := range f.licenses {
		if filter.CompanyID != nil && license.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Type != "" && license.Type != filter.Type {
			continue
		}
		out = append(out, license)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (f *fakeLicenseStore) ListByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.License, error) {
	return f.List(ctx, repository.LicenseFilter{CompanyID: &companyID})
}

func (f *fakeLicenseStore) Update(ctx context.Context, license *models.License) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.licenses[license.ID]; !ok {
		return pgx.ErrNoRows
	}
	license.UpdatedAt = time.Now()
	f.licenses[license.ID] = license
	return nil
}

func (f *fakeLicenseStore) UpdateLegacyFile(ctx context.Context, id uuid.UUID, fileName, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	license, ok := f.licenses[id]
	if !ok {
		return pgx.ErrNoRows
	}
	license.FileName = &fileName
	license.FileURL = &fileURL
	return nil
}

func (f *fakeLicenseStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.licenses, id)
	return nil
}

// add seeds a license directly, bypassing Create
func (f *fakeLicenseStore) add(license *models.License) *models.License {
	f.mu.Lock()
	defer f.mu.Unlock()
	if license.ID == uuid.Nil {
		license.ID = uuid.New()
	}
	f.licenses[license.ID] = license
	return license
}

type fakeLicenseFileStore struct {
	mu    sync.Mutex
	files map[uuid.UUID]*models.LicenseFile
	order []uuid.UUID

	// failOnCreate makes the n-th Create call (1-based) fail
	failOnCreate int
	createCalls  int
	createErr    error
}

func newFakeLicenseFileStore() *fakeLicenseFileStore {
	return &fakeLicenseFileStore{files: make(map[uuid.UUID]*models.LicenseFile)}
}

func (f *fakeLicenseFileStore) Create(ctx context.Context, file *models.LicenseFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failOnCreate > 0 && f.createCalls == f.failOnCreate {
		return f.createErr
	}
	file.CreatedAt = time.Now()
	f.files[file.ID] = file
	f.order = append(f.order, file.ID)
	return nil
}

func (f *fakeLicenseFileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.LicenseFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return file, nil
}

func (f *fakeLicenseFileStore) ListByLicenseID(ctx context.Context, licenseID uuid.UUID) ([]*models.LicenseFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LicenseFile
	for _, id := range f.order {
		file, ok := f.files[id]
		if ok && file.LicenseID == licenseID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeLicenseFileStore) CountByLicenseID(ctx context.Context, licenseID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, file := range f.files {
		if file.LicenseID == licenseID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLicenseFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, id)
	return nil
}

func (f *fakeLicenseFileStore) DeleteByLicenseID(ctx context.Context, licenseID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, file := range f.files {
		if file.LicenseID == licenseID {
			delete(f.files, id)
		}
	}
	return nil
}
