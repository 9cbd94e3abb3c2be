package auth

import (
	"context"
	"errors"
	"net/http"
)

type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by Require, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// Require wraps next so that only requests with a valid API key reach it.
// Credential failures answer 401, store failures 500. A nil authenticator
// leaves next unprotected.
//
// Usage:
//
//	mux.Handle("/metrics", auth.Require(a, metricsHandler))
func Require(a *APIKeyAuthenticator, next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Authenticate(r.Context(), r.Header)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		case errors.Is(err, ErrMissingCredentials),
			errors.Is(err, ErrInvalidCredentials),
			errors.Is(err, ErrKeyExpired):
			w.Header().Set("WWW-Authenticate", `Bearer realm="funccache"`)
			http.Error(w, err.Error(), http.StatusUnauthorized)
		default:
			http.Error(w, "auth: internal error", http.StatusInternalServerError)
		}
	})
}
