package models

import (
	"time"

	"github.com/google/uuid"
)

// LicenseType represents the issuing authority category of a license
type LicenseType string

const (
	LicenseTypePoliciaCivil        LicenseType = "Polícia Civil"
	LicenseTypePoliciaFederal      LicenseType = "Polícia Federal"
	LicenseTypeIBAMA               LicenseType = "IBAMA"
	LicenseTypeCETESB              LicenseType = "CETESB"
	LicenseTypeVigilanciaSanitaria LicenseType = "Vigilância Sanitária"
	LicenseTypeExercito            LicenseType = "Exército"
	LicenseTypeMunicipal           LicenseType = "Municipal"
)

// LicenseTypes lists every valid license type
var LicenseTypes = []LicenseType{
	LicenseTypePoliciaCivil,
	LicenseTypePoliciaFederal,
	LicenseTypeIBAMA,
	LicenseTypeCETESB,
	LicenseTypeVigilanciaSanitaria,
	LicenseTypeExercito,
	LicenseTypeMunicipal,
}

// ValidLicenseType reports whether t is a known license type
func ValidLicenseType(t LicenseType) bool {
	for _, known := range LicenseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// License represents a regulatory license held by a company
type License struct {
	ID        uuid.UUID   `json:"id"`
	CompanyID uuid.UUID   `json:"company_id"`
	Type      LicenseType `json:"type"`
	SubType   *string     `json:"sub_type,omitempty"`
	IssueDate time.Time   `json:"issue_date"`
	ExpiryDate time.Time  `json:"expiry_date"`

	// FileName and FileURL are a legacy single-file view kept for records
	// created before multi-file support. They mirror the first attachment
	// and are never the source of truth.
	FileName *string `json:"file_name,omitempty"`
	FileURL  *string `json:"file_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company *Company       `json:"company,omitempty"`
	Files   []*LicenseFile `json:"files"`

	// Status is computed from ExpiryDate on every read, never stored
	Status LicenseStatus `json:"status,omitempty"`
}
