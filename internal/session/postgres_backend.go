package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	createSessionTableSQL = `
		CREATE TABLE IF NOT EXISTS session_kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	selectSessionSQL = `SELECT value FROM session_kv WHERE key = $1`

	upsertSessionSQL = `
		INSERT INTO session_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	deleteSessionSQL = `DELETE FROM session_kv WHERE key = $1`
)

// postgresBackend keeps session values in the session_kv table.
type postgresBackend struct {
	db     querier
	logger zerolog.Logger
}

// NewPostgresBackend creates a backend on db and makes sure its table exists.
func NewPostgresBackend(ctx context.Context, db querier, logger zerolog.Logger) (Backend, error) {
	logger = logger.With().Str("component", "session-postgres-backend").Logger()

	if _, err := db.Exec(ctx, createSessionTableSQL); err != nil {
		logger.Error().Err(err).Msg("failed to create session table")
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	return &postgresBackend{db: db, logger: logger}, nil
}

func (b *postgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRow(ctx, selectSessionSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		b.logger.Error().Err(err).Str("key", key).Msg("failed to read session value")
		return "", false, fmt.Errorf("failed to read session value %s: %w", key, err)
	}
	return value, true, nil
}

func (b *postgresBackend) Set(ctx context.Context, key, value string) error {
	if _, err := b.db.Exec(ctx, upsertSessionSQL, key, value); err != nil {
		b.logger.Error().Err(err).Str("key", key).Msg("failed to write session value")
		return fmt.Errorf("failed to write session value %s: %w", key, err)
	}
	return nil
}

func (b *postgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.Exec(ctx, deleteSessionSQL, key); err != nil {
		b.logger.Error().Err(err).Str("key", key).Msg("failed to delete session value")
		return fmt.Errorf("failed to delete session value %s: %w", key, err)
	}
	return nil
}
