package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
	jwtinfra "github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/jwt"
	"github.com/Redwolfc4/nusantarago-backend/internal/observability"
	"github.com/Redwolfc4/nusantarago-backend/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Confirm(ctx context.Context, req domain.ConfirmRequest) (*domain.Result, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Login(ctx context.Context, req domain.LoginRequest) (*domain.Result, *domain.SessionToken, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.Result); r != nil {
		return r, args.Get(1).(*domain.SessionToken), args.Error(2)
	}
	return nil, nil, args.Error(2)
}

func (m *mockAccountSvc) UpdateProfile(ctx context.Context, email string, req domain.UpdateProfileRequest) (*domain.Result, error) {
	args := m.Called(ctx, email, req)
	if r, _ := args.Get(0).(*domain.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Logout(ctx context.Context, email string) (*domain.Result, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*domain.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Profile(ctx context.Context, email string) (*domain.Result, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*domain.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

var testCookie = middleware.Cookie{Name: "session"}

type testServer struct {
	svc      *mockAccountSvc
	metrics  *observability.Metrics
	provider *jwtinfra.Provider
	router   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	p, err := jwtinfra.NewProvider([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	ts := &testServer{svc: &mockAccountSvc{}, metrics: observability.NewMetrics(), provider: p}
	h := NewAccountHandler(ts.svc, testCookie, ts.metrics)

	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Patch("/auth/verify-otp", h.Confirm)
	r.Post("/auth/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(p, testCookie))
		r.Get("/auth/get-user", h.Profile)
		r.Put("/auth/update-user", h.UpdateProfile)
		r.Get("/auth/logout", h.Logout)
	})
	ts.router = r
	t.Cleanup(func() { ts.svc.AssertExpectations(t) })
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) token(t *testing.T, email string) string {
	t.Helper()
	tok, _, err := ts.provider.Sign(email)
	require.NoError(t, err)
	return tok
}

func assertOperations(t *testing.T, m *observability.Metrics, series string) {
	t.Helper()
	expected := `
# HELP account_operations_total Total number of account lifecycle operations by operation and outcome
# TYPE account_operations_total counter
` + series + "\n"
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "account_operations_total"))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env.Error
}

// --- tests ---

func TestRegister_Created(t *testing.T) {
	ts := newTestServer(t)
	req := domain.RegisterRequest{Username: "alice", Email: "alice@gmail.com", Password: "Passw0rd#1", PasswordConfirmation: "Passw0rd#1"}
	ts.svc.On("Register", mock.Anything, req).Return(&domain.Result{
		Title: "Verifikasi otp", Data: domain.Registration{Email: "YWxpY2VAZ21haWwuY29t"},
	}, nil)

	rr := ts.do(t, http.MethodPost, "/auth/register", req, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var res struct {
		Title string              `json:"title"`
		Data  domain.Registration `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "Verifikasi otp", res.Title)
	assert.Equal(t, "YWxpY2VAZ21haWwuY29t", res.Data.Email)
	assertOperations(t, ts.metrics, `account_operations_total{operation="register",outcome="success"} 1`)
}

func TestRegister_ValidationFailed(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "alice", "email": "alice@gmail.com", "password": "weak", "password2": "weak",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_failed", decodeError(t, rr).Code)
	ts.svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_InvalidBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_body", decodeError(t, rr).Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("Register", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("username alice: %w", domain.ErrDuplicateUsername))

	rr := ts.do(t, http.MethodPost, "/auth/register", domain.RegisterRequest{
		Username: "alice", Email: "alice@gmail.com", Password: "Passw0rd#1", PasswordConfirmation: "Passw0rd#1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "duplicate_username", decodeError(t, rr).Code)
}

func TestConfirm_Expired(t *testing.T) {
	ts := newTestServer(t)
	req := domain.ConfirmRequest{Token: "YWxpY2VAZ21haWwuY29t", OTP: "012345"}
	ts.svc.On("Confirm", mock.Anything, req).Return(nil, domain.ErrExpired)

	rr := ts.do(t, http.MethodPatch, "/auth/verify-otp", req, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "otp_expired", decodeError(t, rr).Code)
	assertOperations(t, ts.metrics, `account_operations_total{operation="confirm",outcome="otp_expired"} 1`)
}

func TestLogin_SetsCookie(t *testing.T) {
	ts := newTestServer(t)
	req := domain.LoginRequest{Username: "alice", Password: "Passw0rd#1"}
	exp := time.Now().Add(time.Hour)
	st := &domain.SessionToken{Token: "tok", ExpiresAt: exp}
	ts.svc.On("Login", mock.Anything, req).Return(&domain.Result{Title: "Login Berhasil!", Data: st}, st, nil)

	rr := ts.do(t, http.MethodPost, "/auth/login", req, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown user", fmt.Errorf("user bob: %w", domain.ErrNotFound), http.StatusUnauthorized, "bad_credentials"},
		{"wrong password", domain.ErrBadCredentials, http.StatusUnauthorized, "bad_credentials"},
		{"pending", domain.ErrNotVerified, http.StatusForbidden, "not_verified"},
		{"store down", fmt.Errorf("%w: find: %w", domain.ErrStore, errors.New("dial tcp: refused")), http.StatusInternalServerError, "store_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.svc.On("Login", mock.Anything, mock.Anything).Return(nil, nil, tt.err)

			rr := ts.do(t, http.MethodPost, "/auth/login", domain.LoginRequest{Username: "bob", Password: "x"}, "")
			assert.Equal(t, tt.status, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Message, "dial tcp")
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

func TestProfile_RequiresSession(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/auth/get-user", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfile_UsesSessionEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("Profile", mock.Anything, "alice@gmail.com").Return(&domain.Result{
		Title: "User Terverifikasi!", Data: domain.Profile{Username: "alice", Email: "alice@gmail.com", Verified: true},
	}, nil)

	rr := ts.do(t, http.MethodGet, "/auth/get-user", nil, ts.token(t, "alice@gmail.com"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestUpdateProfile_PasswordUnchanged(t *testing.T) {
	ts := newTestServer(t)
	req := domain.UpdateProfileRequest{Username: "alice", Password: "Passw0rd#1", PasswordConfirmation: "Passw0rd#1"}
	ts.svc.On("UpdateProfile", mock.Anything, "alice@gmail.com", req).Return(nil, domain.ErrPasswordUnchanged)

	rr := ts.do(t, http.MethodPut, "/auth/update-user", req, ts.token(t, "alice@gmail.com"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "password_unchanged", decodeError(t, rr).Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.On("Logout", mock.Anything, "alice@gmail.com").Return(&domain.Result{Title: "Logout Berhasil!"}, nil)

	rr := ts.do(t, http.MethodGet, "/auth/logout", nil, ts.token(t, "alice@gmail.com"))
	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, classify(fmt.Errorf("x: %w", domain.ErrNotVerified)).status)
	assert.Equal(t, "hashing_error", classify(domain.ErrHashing).code)
	assert.Equal(t, errInternal, classify(errors.New("unexpected")))
}

func TestHealth_Ping(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/health-check/{action}", NewHealthHandler().Ping)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
