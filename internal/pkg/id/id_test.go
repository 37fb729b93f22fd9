package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAt_EncodesTimestamp(t *testing.T) {
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	parsed, err := ulid.Parse(NewAt(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}

func TestNew_Unique(t *testing.T) {
	assert.NotEqual(t, New(), New())
}
