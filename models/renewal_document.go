package models

import (
	"time"

	"github.com/google/uuid"
)

// RenewalDocument represents a reference document template for renewing
// licenses of a given type. It is not tied to a specific company or license.
type RenewalDocument struct {
	ID           uuid.UUID   `json:"id"`
	LicenseType  LicenseType `json:"license_type"`
	DocumentName string      `json:"document_name"`
	FileName     *string     `json:"file_name,omitempty"`
	FileURL      *string     `json:"file_url,omitempty"`
	UploadedAt   time.Time   `json:"uploaded_at"`
}
