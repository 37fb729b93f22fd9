// Package opaqueid hides an email address behind a URL-safe token.
//
// The encoding is reversible by anyone and carries no integrity guarantee;
// callers must validate the decoded value before trusting it.
package opaqueid

import (
	"encoding/base64"
	"fmt"

	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
)

var enc = base64.RawURLEncoding

func Encode(plaintext string) string {
	return enc.EncodeToString([]byte(plaintext))
}

// Decode inverts Encode. Only structurally malformed tokens fail.
func Decode(token string) (string, error) {
	b, err := enc.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return string(b), nil
}

// Codec adapts the package functions to the lifecycle's codec dependency.
type Codec struct{}

func (Codec) Encode(plaintext string) string      { return Encode(plaintext) }
func (Codec) Decode(token string) (string, error) { return Decode(token) }
