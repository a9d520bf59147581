package domain

import (
	"strings"
	"time"
)

// PendingRegistration is a registration awaiting email-code confirmation.
// Keyed by normalised email; a new registration for the same email replaces it.
// Version changes on every write and guards compare-and-delete in the stores.
type PendingRegistration struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Code         string    `json:"code"`
	Version      string    `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired reports whether the code is past its TTL at now.
func (p *PendingRegistration) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

type RegisterInitRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NormalizeEmail is the key form used by every pending store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
