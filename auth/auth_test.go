package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*APIKeyInfo, error) {
	return nil, errors.New("store down")
}

func TestAPIKeyAuthenticator_Authenticate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryAPIKeyStore()
	for _, info := range []*APIKeyInfo{
		{ID: "ops", KeyHash: HashAPIKey("good"), Principal: "ops"},
		{ID: "old", KeyHash: HashAPIKey("stale"), Principal: "ops", ExpiresAt: now.Add(-time.Minute)},
	} {
		if err := store.Add(info); err != nil {
			t.Fatal(err)
		}
	}
	a := NewAPIKeyAuthenticator(APIKeyConfig{Now: func() time.Time { return now }}, store)

	tests := []struct {
		name    string
		header  http.Header
		wantID  string
		wantErr error
	}{
		{"api key header", http.Header{"X-Api-Key": {"good"}}, "ops", nil},
		{"bearer token", http.Header{"Authorization": {"Bearer good"}}, "ops", nil},
		{"surrounding space", http.Header{"X-Api-Key": {"  good "}}, "ops", nil},
		{"no credentials", http.Header{}, "", ErrMissingCredentials},
		{"basic scheme", http.Header{"Authorization": {"Basic Z29vZA=="}}, "", ErrMissingCredentials},
		{"unknown key", http.Header{"X-Api-Key": {"bad"}}, "", ErrInvalidCredentials},
		{"expired key", http.Header{"X-Api-Key": {"stale"}}, "", ErrKeyExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && id.KeyID != tt.wantID {
				t.Errorf("KeyID = %q, want %q", id.KeyID, tt.wantID)
			}
		})
	}
}

func TestStaticKeys(t *testing.T) {
	s, err := StaticKeys("operator", "k1", "", "k2")
	if err != nil {
		t.Fatalf("StaticKeys() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	info, _ := s.Lookup(context.Background(), HashAPIKey("k2"))
	if info == nil || info.ID != "key-2" || info.Principal != "operator" {
		t.Errorf("Lookup(k2) = %+v", info)
	}

	if _, err := StaticKeys("operator", "same", "same"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate keys error = %v, want ErrDuplicateKey", err)
	}

	s.Remove(HashAPIKey("k1"))
	if info, _ := s.Lookup(context.Background(), HashAPIKey("k1")); info != nil {
		t.Error("removed key still found")
	}
}

func TestRequire(t *testing.T) {
	store, err := StaticKeys("operator", "secret")
	if err != nil {
		t.Fatal(err)
	}
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		a      *APIKeyAuthenticator
		key    string
		status int
	}{
		{"valid key", NewAPIKeyAuthenticator(APIKeyConfig{}, store), "secret", http.StatusNoContent},
		{"invalid key", NewAPIKeyAuthenticator(APIKeyConfig{}, store), "nope", http.StatusUnauthorized},
		{"missing key", NewAPIKeyAuthenticator(APIKeyConfig{}, store), "", http.StatusUnauthorized},
		{"store failure", NewAPIKeyAuthenticator(APIKeyConfig{}, failingStore{}), "secret", http.StatusInternalServerError},
		{"unprotected", nil, "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			Require(tt.a, next).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate")
			}
			if tt.name == "valid key" && (seen == nil || seen.Principal != "operator") {
				t.Errorf("identity = %+v", seen)
			}
		})
	}
}
