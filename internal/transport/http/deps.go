package http

import (
	"context"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/application/account"
	jwtinfra "github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/jwt"
	"github.com/Redwolfc4/nusantarago-backend/internal/observability"
)

// OTPMailer delivers registration codes.
type OTPMailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Store   account.AccountStore
	Mailer  OTPMailer
	Tokens  *jwtinfra.Provider
	Metrics *observability.Metrics // optional
	Clock   func() time.Time       // optional, defaults to time.Now
}
