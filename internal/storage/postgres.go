package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"admin-welcome-modal/internal/config"
	"admin-welcome-modal/internal/modal"
)

// ErrNotFound is returned when no options have been persisted yet.
var ErrNotFound = errors.New("modal options not found")

const optionsRowID = 1

type Store struct {
	pool    *pgxpool.Pool
	channel string
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	dsn := cfg.DSN()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool, channel: cfg.Listener.Channel}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the options table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS modal_options (
			id         SMALLINT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create modal_options: %w", err)
	}
	return nil
}

// LoadOptions returns the persisted partial options or ErrNotFound.
func (s *Store) LoadOptions(ctx context.Context) (modal.Partial, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM modal_options WHERE id = $1`, optionsRowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return modal.Partial{}, ErrNotFound
	}
	if err != nil {
		return modal.Partial{}, fmt.Errorf("query modal options: %w", err)
	}

	return decodeOptions(raw)
}

// encodeOptions produces the jsonb value stored in modal_options.
func encodeOptions(opts modal.Options) ([]byte, error) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode modal options: %w", err)
	}
	return raw, nil
}

// decodeOptions reads a stored row. Values written by older versions, such as
// newline-delimited screens, decode to the same partial.
func decodeOptions(raw []byte) (modal.Partial, error) {
	var p modal.Partial
	if err := json.Unmarshal(raw, &p); err != nil {
		return modal.Partial{}, fmt.Errorf("decode modal options: %w", err)
	}
	return p, nil
}

// SaveOptions upserts opts and notifies listeners on the change channel.
func (s *Store) SaveOptions(ctx context.Context, opts modal.Options) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := encodeOptions(opts)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO modal_options (id, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, optionsRowID, raw); err != nil {
		return fmt.Errorf("upsert modal options: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, 'options')`, s.ListenChannel()); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return tx.Commit(ctx)
}

// DeleteOptions removes the persisted options so defaults apply again.
func (s *Store) DeleteOptions(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM modal_options WHERE id = $1`, optionsRowID); err != nil {
		return fmt.Errorf("delete modal options: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, 'options')`, s.ListenChannel()); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (s *Store) ListenChannel() string {
	if s.channel != "" {
		return s.channel
	}
	return "modal_options_change"
}

func (s *Store) PgxPool() *pgxpool.Pool {
	if s.pool == nil {
		panic(errors.New("pgx pool is nil"))
	}
	return s.pool
}
