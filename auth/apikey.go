package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// HeaderName is the header containing the API key.
	// Default: "X-API-Key"
	HeaderName string

	// Now returns the current time. Default: time.Now
	Now func() time.Time
}

// APIKeyInfo describes a registered API key.
type APIKeyInfo struct {
	// ID identifies the key in logs. It never contains key material.
	ID string

	// KeyHash is the SHA-256 hex digest of the key.
	KeyHash string

	// Principal is the operator the key belongs to.
	Principal string

	// ExpiresAt is when the key stops working (zero = never).
	ExpiresAt time.Time
}

// Identity is the result of a successful authentication.
type Identity struct {
	Principal string
	KeyID     string
}

// APIKeyStore looks keys up by hash.
type APIKeyStore interface {
	// Lookup returns nil, nil if no key has the hash.
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator validates API keys carried by HTTP requests.
//
// Contract:
// - Concurrency: safe for concurrent use if the store is.
// - Errors: credential problems are reported with the package sentinels;
//   any other error comes from the store.
type APIKeyAuthenticator struct {
	config APIKeyConfig
	store  APIKeyStore
}

// NewAPIKeyAuthenticator creates an authenticator backed by store.
func NewAPIKeyAuthenticator(config APIKeyConfig, store APIKeyStore) *APIKeyAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &APIKeyAuthenticator{config: config, store: store}
}

// HeaderName returns the header the key is read from.
func (a *APIKeyAuthenticator) HeaderName() string { return a.config.HeaderName }

// Authenticate validates the key carried by header.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, header http.Header) (*Identity, error) {
	key := a.extract(header)
	if key == "" {
		return nil, ErrMissingCredentials
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("auth: lookup: %w", err)
	}
	if info == nil {
		return nil, ErrInvalidCredentials
	}
	if !info.ExpiresAt.IsZero() && a.config.Now().After(info.ExpiresAt) {
		return nil, ErrKeyExpired
	}
	return &Identity{Principal: info.Principal, KeyID: info.ID}, nil
}

func (a *APIKeyAuthenticator) extract(header http.Header) string {
	if key := strings.TrimSpace(header.Get(a.config.HeaderName)); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// HashAPIKey hashes an API key using SHA-256 for storage.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// MemoryAPIKeyStore is an in-memory API key store.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKeyInfo // keyed by hash
}

// NewMemoryAPIKeyStore creates an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]*APIKeyInfo)}
}

// StaticKeys builds a store from plaintext keys, as read from
// configuration. Keys are named key-0, key-1 and so on, in order.
func StaticKeys(principal string, keys ...string) (*MemoryAPIKeyStore, error) {
	s := NewMemoryAPIKeyStore()
	for i, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		err := s.Add(&APIKeyInfo{
			ID:        fmt.Sprintf("key-%d", i),
			KeyHash:   HashAPIKey(strings.TrimSpace(key)),
			Principal: principal,
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Lookup retrieves a key by its hash.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[keyHash], nil
}

// Add registers a key.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[info.KeyHash]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, info.ID)
	}
	s.keys[info.KeyHash] = info
	return nil
}

// Remove deletes a key by hash.
func (s *MemoryAPIKeyStore) Remove(keyHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, keyHash)
}

// Len returns the number of registered keys.
func (s *MemoryAPIKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

var _ APIKeyStore = (*MemoryAPIKeyStore)(nil)
