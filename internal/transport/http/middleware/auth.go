package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/Redwolfc4/nusantarago-backend/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

type tokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that reads the session token from the session
// cookie, or failing that from a Bearer header, verifies it and injects the
// claims into the context. An invalid token also clears the cookie.
func Auth(verifier tokenVerifier, cookie Cookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := sessionToken(r, cookie.Name)
			if tokenStr == "" {
				writeJSONError(w, http.StatusUnauthorized, "no_active_session", "login required")
				return
			}
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				cookie.Clear(w)
				writeJSONError(w, http.StatusUnauthorized, "invalid_session", "session is invalid or expired, please login again")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

// EmailFromContext returns the session email, or "" when the request carries no session.
func EmailFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.Email
	}
	return ""
}
