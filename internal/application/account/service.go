package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
	"github.com/Redwolfc4/nusantarago-backend/internal/pkg/id"
	"github.com/Redwolfc4/nusantarago-backend/internal/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Result, error)
	Confirm(ctx context.Context, req domain.ConfirmRequest) (*domain.Result, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.Result, *domain.SessionToken, error)
	UpdateProfile(ctx context.Context, email string, req domain.UpdateProfileRequest) (*domain.Result, error)
	Logout(ctx context.Context, email string) (*domain.Result, error)
	Profile(ctx context.Context, email string) (*domain.Result, error)
}

// AccountStore persists accounts. Lookups that miss return domain.ErrNotFound;
// Insert returns domain.ErrConflict when the email is already taken.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Insert(ctx context.Context, a *domain.Account) error
	UpdateFields(ctx context.Context, match domain.AccountMatch, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, email string) error
	CountByUsername(ctx context.Context, username string) (int64, error)
}

type otpMailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type otpGenerator interface {
	Generate() (string, error)
	ExpiresAt(issuedAt time.Time) time.Time
	TTL() time.Duration
}

type idCodec interface {
	Encode(plaintext string) string
	Decode(token string) (string, error)
}

type tokenSigner interface {
	Sign(email string) (string, time.Time, error)
}

type service struct {
	store  AccountStore
	mailer otpMailer
	hasher passwordHasher
	otp    otpGenerator
	codec  idCodec
	tokens tokenSigner
	now    func() time.Time
}

type ServiceDeps struct {
	Store  AccountStore
	Mailer otpMailer
	Hasher passwordHasher
	OTP    otpGenerator
	Codec  idCodec
	Tokens tokenSigner
	Clock  func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		store:  deps.Store,
		mailer: deps.Mailer,
		hasher: deps.Hasher,
		otp:    deps.OTP,
		codec:  deps.Codec,
		tokens: deps.Tokens,
		now:    now,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Result, error) {
	if req.Password != req.PasswordConfirmation {
		return nil, fmt.Errorf("password confirmation does not match: %w", domain.ErrValidation)
	}

	existing, err := s.store.FindByUsername(ctx, req.Username)
	switch {
	case err == nil && existing.Verified:
		return nil, fmt.Errorf("username %s: %w", req.Username, domain.ErrDuplicateUsername)
	case err == nil:
		// A pending registration holding the username is stale; replace it.
		if err := s.store.Delete(ctx, existing.Email); err != nil {
			return nil, storeErr("delete stale registration", err)
		}
		slog.InfoContext(ctx, "stale registration removed", "username", existing.Username, "email", existing.Email)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, storeErr("find by username", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	code, err := s.otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: generate otp: %w", domain.ErrHashing, err)
	}

	now := s.now().UTC()
	expires := s.otp.ExpiresAt(now)
	a := &domain.Account{
		AccountID:    id.NewAt(now),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		OTPCode:      &code,
		OTPCreatedAt: &now,
		OTPExpiresAt: &expires,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("email %s: %w", req.Email, domain.ErrDuplicateEmail)
		}
		return nil, storeErr("insert", err)
	}
	slog.InfoContext(ctx, "account registered", "username", a.Username, "email", a.Email, "otp_expires_at", expires)

	// The pending record stays when delivery fails; registering again replaces it.
	if err := s.mailer.SendOTP(ctx, a.Email, code, s.otp.TTL()); err != nil {
		slog.WarnContext(ctx, "otp delivery failed", "email", a.Email, "err", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	return &domain.Result{
		Title:   "Verifikasi otp",
		Message: "OTP berhasil dikirimkan ke " + a.Email + ". Silahkan cek email anda.",
		Data:    domain.Registration{Email: s.codec.Encode(a.Email), OTPExpiresAt: expires},
	}, nil
}

func (s *service) Confirm(ctx context.Context, req domain.ConfirmRequest) (*domain.Result, error) {
	email, err := s.codec.Decode(req.Token)
	if err != nil {
		return nil, err
	}
	if !validate.Email(email) {
		return nil, fmt.Errorf("token does not identify an email: %w", domain.ErrDecode)
	}

	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
		}
		return nil, storeErr("find by email", err)
	}
	if !a.Pending() {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrAlreadyConfirmed)
	}

	if s.now().After(*a.OTPExpiresAt) {
		if err := s.store.Delete(ctx, email); err != nil {
			return nil, storeErr("delete expired registration", err)
		}
		slog.InfoContext(ctx, "expired registration removed", "username", a.Username, "email", email)
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrExpired)
	}
	if subtle.ConstantTimeCompare([]byte(req.OTP), []byte(*a.OTPCode)) != 1 {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrBadCode)
	}

	pending := false
	n, err := s.store.UpdateFields(ctx, domain.AccountMatch{Email: email, Verified: &pending}, map[string]interface{}{
		domain.FieldVerified:     true,
		domain.FieldOTPCode:      nil,
		domain.FieldOTPCreatedAt: nil,
		domain.FieldOTPExpiresAt: nil,
	})
	if err != nil {
		return nil, storeErr("confirm", err)
	}
	if n == 0 {
		// Confirmed concurrently between the read and the write.
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrAlreadyConfirmed)
	}
	slog.InfoContext(ctx, "account confirmed", "username", a.Username, "email", email)

	return &domain.Result{
		Title:   "Terverifikasi!",
		Message: "Email " + email + " berhasil diverifikasi.",
	}, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.Result, *domain.SessionToken, error) {
	a, err := s.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("user %s: %w", req.Username, domain.ErrNotFound)
		}
		return nil, nil, storeErr("find by username", err)
	}

	ok, err := s.hasher.Verify(req.Password, a.PasswordHash)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("user %s: %w", req.Username, domain.ErrBadCredentials)
	}
	if !a.Verified {
		return nil, nil, fmt.Errorf("user %s: %w", req.Username, domain.ErrNotVerified)
	}

	token, expires, err := s.tokens.Sign(a.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrTokenIssue, err)
	}
	st := &domain.SessionToken{Token: token, ExpiresAt: expires}
	return &domain.Result{
		Title:   "Login Berhasil!",
		Message: "User " + a.Username + " berhasil melakukan login",
		Data:    st,
	}, st, nil
}

// UpdateProfile changes the username, and the password when one is supplied,
// of the verified account identified by the session email.
func (s *service) UpdateProfile(ctx context.Context, email string, req domain.UpdateProfileRequest) (*domain.Result, error) {
	if email == "" {
		return nil, domain.ErrNoActiveSession
	}
	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
		}
		return nil, storeErr("find by email", err)
	}
	if !a.Verified {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotVerified)
	}

	fields := map[string]interface{}{domain.FieldUsername: req.Username}
	if req.Password != "" {
		if req.Password != req.PasswordConfirmation {
			return nil, fmt.Errorf("password confirmation does not match: %w", domain.ErrValidation)
		}
		same, err := s.hasher.Verify(req.Password, a.PasswordHash)
		if err != nil {
			return nil, err
		}
		if same {
			return nil, domain.ErrPasswordUnchanged
		}
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		fields[domain.FieldPasswordHash] = hash
	}

	if req.Username != a.Username {
		n, err := s.store.CountByUsername(ctx, req.Username)
		if err != nil {
			return nil, storeErr("count by username", err)
		}
		if n > 0 {
			return nil, fmt.Errorf("username %s: %w", req.Username, domain.ErrDuplicateUsername)
		}
	}

	verified := true
	n, err := s.store.UpdateFields(ctx, domain.AccountMatch{Email: email, Verified: &verified}, fields)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("username %s: %w", req.Username, domain.ErrDuplicateUsername)
		}
		return nil, storeErr("update profile", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrUpdateFailed)
	}
	slog.InfoContext(ctx, "profile updated", "email", email, "username", req.Username, "password_changed", req.Password != "")

	return &domain.Result{
		Title:   "Update Berhasil!",
		Message: "Profile saya berhasil di update",
	}, nil
}

// Logout has no server-side state to drop; the transport discards the
// client's credential. A token replayed before its expiry stays valid.
func (s *service) Logout(ctx context.Context, email string) (*domain.Result, error) {
	if email == "" {
		return nil, domain.ErrNoActiveSession
	}
	slog.InfoContext(ctx, "logout", "email", email)
	return &domain.Result{
		Title:   "Logout Berhasil!",
		Message: "User " + email + " berhasil keluar dari sesi",
	}, nil
}

func (s *service) Profile(ctx context.Context, email string) (*domain.Result, error) {
	if email == "" {
		return nil, domain.ErrNoActiveSession
	}
	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotVerified)
		}
		return nil, storeErr("find by email", err)
	}
	if !a.Verified {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotVerified)
	}
	return &domain.Result{
		Title:   "User Terverifikasi!",
		Message: "User " + a.Username + " berhasil terverifikasi",
		Data:    domain.ProfileOf(a),
	}, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}
