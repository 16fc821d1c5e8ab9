package models

import (
	"time"

	"github.com/google/uuid"
)

// LicenseFile represents a proof document attached to a license
type LicenseFile struct {
	ID        uuid.UUID `json:"id"`
	LicenseID uuid.UUID `json:"license_id"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}
