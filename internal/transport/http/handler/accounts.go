package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Redwolfc4/nusantarago-backend/internal/application/account"
	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
	"github.com/Redwolfc4/nusantarago-backend/internal/observability"
	"github.com/Redwolfc4/nusantarago-backend/internal/pkg/validate"
	"github.com/Redwolfc4/nusantarago-backend/internal/transport/http/middleware"
)

type outcomeObserver interface {
	Observe(operation, outcome string)
}

// AccountHandler serves the account lifecycle under /v1/auth.
type AccountHandler struct {
	svc     account.Service
	cookie  middleware.Cookie
	metrics outcomeObserver
}

func NewAccountHandler(svc account.Service, cookie middleware.Cookie, metrics outcomeObserver) *AccountHandler {
	return &AccountHandler{svc: svc, cookie: cookie, metrics: metrics}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !h.decode(w, r, "register", &req) {
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}
	h.ok(w, "register", http.StatusCreated, res)
}

func (h *AccountHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req domain.ConfirmRequest
	if !h.decode(w, r, "confirm", &req) {
		return
	}
	res, err := h.svc.Confirm(r.Context(), req)
	if err != nil {
		h.fail(w, r, "confirm", err)
		return
	}
	h.ok(w, "confirm", http.StatusOK, res)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !h.decode(w, r, "login", &req) {
		return
	}
	res, session, err := h.svc.Login(r.Context(), req)
	if err != nil {
		// An unknown username answers like a wrong password.
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: %w", domain.ErrBadCredentials, err)
		}
		h.fail(w, r, "login", err)
		return
	}
	h.cookie.Set(w, session.Token, session.ExpiresAt)
	h.ok(w, "login", http.StatusOK, res)
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Profile(r.Context(), middleware.EmailFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "profile", err)
		return
	}
	h.ok(w, "profile", http.StatusOK, res)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if !h.decode(w, r, "update_profile", &req) {
		return
	}
	res, err := h.svc.UpdateProfile(r.Context(), middleware.EmailFromContext(r.Context()), req)
	if err != nil {
		h.fail(w, r, "update_profile", err)
		return
	}
	h.ok(w, "update_profile", http.StatusOK, res)
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Logout(r.Context(), middleware.EmailFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "logout", err)
		return
	}
	h.cookie.Clear(w)
	h.ok(w, "logout", http.StatusOK, res)
}

// decode reads and validates the JSON body into dst. On failure it has
// already written the response.
func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.metrics.Observe(op, "invalid_body")
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.metrics.Observe(op, "validation_failed")
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

func (h *AccountHandler) ok(w http.ResponseWriter, op string, status int, res *domain.Result) {
	h.metrics.Observe(op, observability.OutcomeSuccess)
	writeJSON(w, status, res)
}

func (h *AccountHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "account operation failed", "operation", op, "err", err)
	} else {
		slog.DebugContext(r.Context(), "account operation rejected", "operation", op, "code", e.code, "err", err)
	}
	h.metrics.Observe(op, e.code)
	writeError(w, e.status, e.code, e.message)
}
