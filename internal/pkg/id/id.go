package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewAt generates a ULID whose timestamp component is t. ULIDs sort
// lexicographically by that time and are safe as store keys and record versions.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
