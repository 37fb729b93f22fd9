// Package otp issues the six-digit codes used to confirm a registration email.
package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

// DefaultTTL is how long a code stays confirmable after issuance.
const DefaultTTL = 3 * time.Minute

// codeSpace is the number of distinct codes; codes are uniform over
// 000000..999999 and may start with a zero.
var codeSpace = big.NewInt(1_000_000)

type Generator struct {
	ttl    time.Duration
	source io.Reader
}

// New returns a Generator drawing from crypto/rand. A non-positive ttl uses DefaultTTL.
func New(ttl time.Duration) *Generator {
	return NewWithSource(ttl, rand.Reader)
}

// NewWithSource is New with an explicit randomness source.
func NewWithSource(ttl time.Duration, source io.Reader) *Generator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Generator{ttl: ttl, source: source}
}

// Generate draws a fresh code.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.source, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ExpiresAt returns the instant after which a code issued at issuedAt can no longer be confirmed.
func (g *Generator) ExpiresAt(issuedAt time.Time) time.Time {
	return issuedAt.Add(g.ttl)
}

func (g *Generator) TTL() time.Duration { return g.ttl }
