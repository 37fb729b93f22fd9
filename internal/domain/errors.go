package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyConfirmed  = errors.New("account already confirmed")
	ErrExpired           = errors.New("otp expired")
	ErrBadCode           = errors.New("otp does not match")
	ErrBadCredentials    = errors.New("invalid credentials")
	ErrNotVerified       = errors.New("account not verified")
	ErrPasswordUnchanged = errors.New("password unchanged")
	ErrUpdateFailed      = errors.New("update failed")
	ErrDeliveryFailed    = errors.New("otp delivery failed")
	ErrNoActiveSession   = errors.New("no active session")
	ErrStore             = errors.New("store failure")
	ErrHashing           = errors.New("password hashing failed")
	ErrDecode            = errors.New("malformed token")
	ErrTokenIssue        = errors.New("session token could not be issued")

	// ErrConflict is returned by stores when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("conflict")
)
