package models

import "time"

// LicenseStatus represents the derived temporal state of a license
type LicenseStatus string

const (
	StatusValid    LicenseStatus = "valid"
	StatusExpiring LicenseStatus = "expiring"
	StatusExpired  LicenseStatus = "expired"
)

// expiringWindowDays is how far ahead of expiry a license counts as expiring.
const expiringWindowDays = 30

const day = 24 * time.Hour

// DaysUntilExpiry returns the whole days between now and expiry, floored
// (not rounded): 30.9 days out is 30, and 12 hours past expiry is -1.
// Negative once the license has expired.
func DaysUntilExpiry(expiry, now time.Time) int {
	diff := expiry.Sub(now)
	days := diff / day
	if diff < 0 && diff%day != 0 {
		days--
	}
	return int(days)
}

// ComputeStatus derives a license status from its expiry date. Pure and
// deterministic given now; callers must invoke it fresh on every read since
// the same stored expiry date yields different statuses as time advances.
// Both times are compared as UTC instants.
func ComputeStatus(expiry, now time.Time) LicenseStatus {
	days := DaysUntilExpiry(expiry.UTC(), now.UTC())
	switch {
	case days < 0:
		return StatusExpired
	case days <= expiringWindowDays:
		return StatusExpiring
	default:
		return StatusValid
	}
}
