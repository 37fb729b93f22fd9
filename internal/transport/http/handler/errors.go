package handler

import (
	"errors"
	"net/http"

	"github.com/Redwolfc4/nusantarago-backend/internal/domain"
)

type apiError struct {
	status  int
	code    string
	message string
}

// errorTable maps lifecycle failures to responses. Order matters when an
// error wraps more than one sentinel: the first match wins.
var errorTable = []struct {
	err error
	apiError
}{
	{domain.ErrValidation, apiError{http.StatusBadRequest, "validation_failed", "request is invalid"}},
	{domain.ErrBadCredentials, apiError{http.StatusUnauthorized, "bad_credentials", "username atau password salah"}},
	{domain.ErrNotVerified, apiError{http.StatusForbidden, "not_verified", "akun belum terverifikasi"}},
	{domain.ErrDuplicateUsername, apiError{http.StatusBadRequest, "duplicate_username", "username sudah digunakan"}},
	{domain.ErrDuplicateEmail, apiError{http.StatusBadRequest, "duplicate_email", "email sudah terdaftar"}},
	{domain.ErrNotFound, apiError{http.StatusBadRequest, "not_found", "akun tidak ditemukan"}},
	{domain.ErrAlreadyConfirmed, apiError{http.StatusBadRequest, "already_confirmed", "akun sudah terverifikasi"}},
	{domain.ErrExpired, apiError{http.StatusBadRequest, "otp_expired", "OTP kedaluwarsa, silahkan daftar ulang"}},
	{domain.ErrBadCode, apiError{http.StatusBadRequest, "bad_code", "OTP salah"}},
	{domain.ErrPasswordUnchanged, apiError{http.StatusBadRequest, "password_unchanged", "password baru sama dengan password lama"}},
	{domain.ErrUpdateFailed, apiError{http.StatusBadRequest, "update_failed", "profile gagal di update"}},
	{domain.ErrDeliveryFailed, apiError{http.StatusBadRequest, "delivery_failed", "OTP gagal dikirim, silahkan daftar ulang"}},
	{domain.ErrNoActiveSession, apiError{http.StatusBadRequest, "no_active_session", "tidak ada sesi aktif"}},
	{domain.ErrDecode, apiError{http.StatusBadRequest, "decode_error", "token tidak valid"}},
	{domain.ErrStore, apiError{http.StatusInternalServerError, "store_error", "internal server error"}},
	{domain.ErrHashing, apiError{http.StatusInternalServerError, "hashing_error", "internal server error"}},
	{domain.ErrTokenIssue, apiError{http.StatusInternalServerError, "token_issue", "internal server error"}},
}

var errInternal = apiError{http.StatusInternalServerError, "internal", "internal server error"}

func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.apiError
		}
	}
	return errInternal
}
