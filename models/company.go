package models

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a company that holds regulatory licenses
type Company struct {
	ID        uuid.UUID `json:"id"`
	CNPJ      string    `json:"cnpj"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// LicenseCount is populated on list reads, never stored
	LicenseCount int64 `json:"license_count"`
}
