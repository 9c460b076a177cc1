// Package session holds the injectable session repository. The stored
// value is the serialized User record; anything that fails to deserialize
// into a well-formed record is treated identically to an absent session.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

// Store is the session repository. Implementations must satisfy three
// rules: Create overwrites any prior record under the key, Get never
// surfaces a parse failure (corrupt data reads as absent), and Destroy is
// idempotent.
type Store interface {
	// Create persists the user record under the given session key.
	Create(ctx context.Context, key string, user domain.User) error
	// Get returns the stored user, or nil when the key is absent or the
	// stored bytes do not decode into a valid record.
	Get(ctx context.Context, key string) (*domain.User, error)
	// Destroy removes the record. Destroying an absent key is a no-op.
	Destroy(ctx context.Context, key string) error
}

// memoryStore keeps raw serialized records in process memory. It mirrors
// the single-profile key-value slot the service grew out of and backs the
// default dev configuration and the test suite.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string][]byte)}
}

func (s *memoryStore) Create(_ context.Context, key string, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = raw
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (*domain.User, error) {
	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeRecord(raw), nil
}

func (s *memoryStore) Destroy(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Seed injects raw bytes under a key, bypassing serialization. Test hook
// for exercising the corrupt-record path.
func (s *memoryStore) Seed(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = raw
}

// decodeRecord parses stored bytes into a User, returning nil for
// malformed or incomplete records.
func decodeRecord(raw []byte) *domain.User {
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	if !user.Valid() {
		return nil
	}
	return &user
}

// NewKey mints an opaque session key.
func NewKey() string {
	return uuid.NewString()
}

// ttlOrZero normalizes negative TTLs for persistent stores.
func ttlOrZero(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}
