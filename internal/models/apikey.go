package models

import "time"

// APIKey is a bearer credential issued to an organization.
// Only the bcrypt hash and the last four characters of the secret are persisted.
type APIKey struct {
	ID              string     `json:"id" db:"id"`
	OrganizationID  string     `json:"organizationId" db:"organization_id"`
	SecretHash      string     `json:"-" db:"secret_hash"`
	DisplayFragment string     `json:"last4" db:"display_fragment"`
	Label           *string    `json:"name,omitempty" db:"label"`
	Active          bool       `json:"active" db:"active"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	LastUsedAt      *time.Time `json:"lastUsedAt" db:"last_used_at"`
}
