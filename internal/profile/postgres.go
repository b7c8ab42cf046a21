package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the SQL DDL for the user_profiles table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id    TEXT PRIMARY KEY,
    profile    JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by PostgreSQL, one row per user with the
// profile body serialized as JSONB.
type PostgresStore struct {
	db   DB
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore returns a store using the given connection or pool. The
// caller is responsible for calling [PostgresStore.Migrate] before issuing
// queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresStore connects a pool to dsn, migrates the schema, and returns
// a store that owns the pool (Close releases it).
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("profile: connect postgres: %w", err)
	}
	s := &PostgresStore{db: pool, pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate executes the [Schema] DDL, creating the user_profiles table if it
// does not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("profile: migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (Profile, bool, error) {
	const query = `
		SELECT profile, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	var (
		body []byte
		p    Profile
	)
	err := s.db.QueryRow(ctx, query, userID).Scan(&body, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, false, nil
		}
		return Profile{}, false, fmt.Errorf("profile: get %q: %w", userID, err)
	}

	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, false, fmt.Errorf("profile: decode %q: %w", userID, err)
	}
	p.UserID = userID
	return p, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, p Profile) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode %q: %w", p.UserID, err)
	}

	const query = `
		INSERT INTO user_profiles (user_id, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET profile = EXCLUDED.profile, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.Exec(ctx, query, p.UserID, body, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("profile: put %q: %w", p.UserID, err)
	}
	return nil
}

// Close releases the pool when this store opened it.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
