package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = time.Hour

// ErrInvalidToken covers every reason a presented token cannot be trusted:
// malformed, wrongly signed, or expired. Callers must re-authenticate.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims holds the JWT payload fields. Only the identity needed to re-load the
// account is carried; never password or OTP material.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens. It keeps no record of
// issued tokens: logout is a client-side discard and a replayed token stays
// valid until it expires.
type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Provider)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(secret []byte, ttl time.Duration, opts ...Option) (*Provider, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	p := &Provider{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provider) TTL() time.Duration { return p.ttl }

// Sign issues a token for email and returns it with its expiry.
func (p *Provider) Sign(email string) (string, time.Time, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry. Every failure is reported as ErrInvalidToken.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
