package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

// postgresStore keeps session records in the sessions key-value table.
// It is the backend-backed swap-in for the in-memory repository.
type postgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore returns a Postgres-backed Store.
func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) Store {
	return &postgresStore{pool: pool, ttl: ttlOrZero(ttl)}
}

func (s *postgresStore) Create(ctx context.Context, key string, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := time.Now().Add(s.ttl)
		expiresAt = &t
	}

	const query = `
        INSERT INTO sessions (key, record, issued_at, expires_at)
        VALUES ($1, $2, NOW(), $3)
        ON CONFLICT (key) DO UPDATE SET record = $2, issued_at = NOW(), expires_at = $3`

	_, err = s.pool.Exec(ctx, query, key, raw, expiresAt)
	return err
}

func (s *postgresStore) Get(ctx context.Context, key string) (*domain.User, error) {
	const query = `
        SELECT record FROM sessions
        WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw), nil
}

func (s *postgresStore) Destroy(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE key = $1`, key)
	return err
}
