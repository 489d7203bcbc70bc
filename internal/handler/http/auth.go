package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"decks/internal/handler/http/respond"
)

// ServiceAuth guards the run-trigger endpoints with a shared service
// credential. These endpoints scan across all organizations, so end-user
// credentials are never accepted here.
type ServiceAuth struct {
	token string
}

// NewServiceAuth creates a ServiceAuth checking against the given token.
// An empty token disables the endpoints entirely rather than leaving them
// open.
func NewServiceAuth(token string) *ServiceAuth {
	return &ServiceAuth{token: token}
}

// Middleware rejects requests whose Authorization header does not carry the
// service bearer token. The comparison is constant-time.
func (a *ServiceAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.token == "" {
			respond.Error(w, http.StatusServiceUnavailable,
				errors.New("service token not configured"))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respond.Error(w, http.StatusUnauthorized,
				errors.New("missing bearer token"))
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			respond.Error(w, http.StatusUnauthorized,
				errors.New("invalid service token"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
