package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string for an account record.
func New() string {
	return NewAt(time.Now())
}

// NewAt generates a ULID stamped with t. Lifecycle code passes its injected
// clock here so ids sort with the account's created_at.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
