package models

import "github.com/google/uuid"

// RenewalURL represents an external renewal portal for a license type
type RenewalURL struct {
	ID          uuid.UUID   `json:"id"`
	LicenseType LicenseType `json:"license_type"`
	URL         string      `json:"url"`
	Description string      `json:"description"`
}
