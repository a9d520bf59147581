package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrExpired    = errors.New("expired")
	ErrMismatch   = errors.New("code mismatch")
	ErrDelivery   = errors.New("delivery failed")

	// ErrConflict is returned by stores when a compare-and-delete finds a newer version.
	ErrConflict = errors.New("conflict")
)
