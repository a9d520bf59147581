package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAt_UniqueWithinSameMillisecond(t *testing.T) {
	at := time.Now()
	assert.NotEqual(t, NewAt(at), NewAt(at))
}

func TestNewAt_EncodesTimestamp(t *testing.T) {
	at := time.UnixMilli(1_760_000_000_123)
	u, err := ulid.Parse(NewAt(at))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_760_000_000_123), u.Time())
}
