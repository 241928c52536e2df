// Package sqlite is a file-backed credstore.Store. Values are sealed with
// cryptox before they touch disk so a copied database file does not leak
// live tokens.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
	"github.com/aussiebroadwan/kingpanel/pkg/cryptox"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	sealer *cryptox.Sealer
	dsn    string
}

var _ credstore.Store = (*Store)(nil)

// NewStore opens the database at dsn. Call ApplyMigrations before use.
func NewStore(dsn string, sealer *cryptox.Sealer) (*Store, error) {
	if sealer == nil {
		return nil, errors.New("sqlite: sealer is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		sealer: sealer,
		dsn:    dsn,
	}, nil
}

// Open builds a DSN for path with the pragmas used across the project, opens
// the store and applies migrations.
func Open(path string, sealer *cryptox.Sealer) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	s, err := NewStore(dsn, sealer)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to apply credential store migrations: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, role credstore.Role, key credstore.Key) (string, error) {
	if !role.Valid() {
		return "", credstore.ErrInvalidRole
	}

	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE role = ? AND key = ?`,
		string(role), string(key),
	).Scan(&sealed)
	if err != nil {
		return "", mapNotFound(err)
	}

	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to open %s/%s: %w", role, key, err)
	}
	return string(plain), nil
}

func (s *Store) Set(ctx context.Context, role credstore.Role, key credstore.Key, value string) error {
	if !role.Valid() {
		return credstore.ErrInvalidRole
	}

	sealed, err := s.sealer.Seal([]byte(value))
	if err != nil {
		return fmt.Errorf("failed to seal %s/%s: %w", role, key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (role, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (role, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		string(role), string(key), sealed,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, role credstore.Role, keys ...credstore.Key) error {
	if !role.Valid() {
		return credstore.ErrInvalidRole
	}
	if len(keys) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM credentials WHERE role = ? AND key = ?`,
				string(role), string(k),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx executes fn within a transaction, handling commit/rollback.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return credstore.ErrNotFound
	}
	return err
}
