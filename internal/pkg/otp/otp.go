// Package otp generates and compares numeric one-time codes.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const (
	minCode = 100000
	maxCode = 999999
)

// Generate returns a 6-digit code drawn uniformly from [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+minCode), nil
}

// Equal compares two codes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
