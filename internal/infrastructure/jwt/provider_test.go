package jwtinfra

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func newTestProvider(t *testing.T, now *time.Time) *Provider {
	t.Helper()
	p, err := NewProvider([]byte("test-secret"), time.Hour, WithClock(fixedClock(now)))
	require.NoError(t, err)
	return p
}

func TestSignVerify_RoundTrip(t *testing.T) {
	now := epoch
	p := newTestProvider(t, &now)

	token, exp, err := p.Sign("alice@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour), exp)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@gmail.com", claims.Email)
	assert.Equal(t, epoch.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_Expired(t *testing.T) {
	now := epoch
	p := newTestProvider(t, &now)
	token, _, err := p.Sign("alice@gmail.com")
	require.NoError(t, err)

	now = epoch.Add(time.Hour + time.Second)
	_, err = p.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	now := epoch
	_, err := newTestProvider(t, &now).Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := epoch
	p := newTestProvider(t, &now)
	other, err := NewProvider([]byte("other-secret"), time.Hour, WithClock(fixedClock(&now)))
	require.NoError(t, err)

	token, _, err := other.Sign("alice@gmail.com")
	require.NoError(t, err)
	_, err = p.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	now := epoch
	p := newTestProvider(t, &now)
	token, _, err := p.Sign("alice@gmail.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := newTestProviderWithSecret(t, "x", &now).Sign("mallory@gmail.com")
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = p.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsNoneAlg(t *testing.T) {
	now := epoch
	p := newTestProvider(t, &now)
	claims := Claims{
		Email: "alice@gmail.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingExpiry(t *testing.T) {
	now := epoch
	p := newTestProvider(t, &now)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "alice@gmail.com"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = p.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewProvider_EmptySecret(t *testing.T) {
	_, err := NewProvider(nil, time.Hour)
	assert.Error(t, err)
}

func TestNewProvider_DefaultTTL(t *testing.T) {
	p, err := NewProvider([]byte("s"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, p.TTL())
}

func newTestProviderWithSecret(t *testing.T, secret string, now *time.Time) *Provider {
	t.Helper()
	p, err := NewProvider([]byte(secret), time.Hour, WithClock(fixedClock(now)))
	require.NoError(t, err)
	return p
}
