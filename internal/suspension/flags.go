// Package suspension implements the per-role account-suspension gate.
// Suspension is orthogonal to session validity: a suspended user stays
// logged in but every dashboard request is blocked until the flag clears.
package suspension

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

// FlagStore reads and writes the persisted role suspension flags.
type FlagStore interface {
	IsSuspended(ctx context.Context, role domain.Role) (bool, error)
	SetSuspended(ctx context.Context, role domain.Role, suspended bool) error
}

type memoryFlags struct {
	mu    sync.RWMutex
	flags map[domain.Role]bool
}

// NewMemoryFlags returns an in-memory FlagStore.
func NewMemoryFlags() FlagStore {
	return &memoryFlags{flags: make(map[domain.Role]bool)}
}

func (s *memoryFlags) IsSuspended(_ context.Context, role domain.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[role], nil
}

func (s *memoryFlags) SetSuspended(_ context.Context, role domain.Role, suspended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if suspended {
		s.flags[role] = true
	} else {
		delete(s.flags, role)
	}
	return nil
}

// redisFlags persists flags under the historical per-role keys, e.g.
// "facilityAccountSuspended" = "true". Absence of the key means not
// suspended.
type redisFlags struct {
	client *redis.Client
}

// NewRedisFlags returns a Redis-backed FlagStore.
func NewRedisFlags(client *redis.Client) FlagStore {
	return &redisFlags{client: client}
}

func (s *redisFlags) IsSuspended(ctx context.Context, role domain.Role) (bool, error) {
	val, err := s.client.Get(ctx, role.SuspensionKey()).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

func (s *redisFlags) SetSuspended(ctx context.Context, role domain.Role, suspended bool) error {
	if suspended {
		return s.client.Set(ctx, role.SuspensionKey(), "true", 0).Err()
	}
	return s.client.Del(ctx, role.SuspensionKey()).Err()
}
