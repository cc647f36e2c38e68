package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS response_cache (
		cache_key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		status_code INTEGER NOT NULL,
		cached_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_response_cache_expires ON response_cache(expires_at);`,
	`CREATE TABLE IF NOT EXISTS cache_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
}

// schemaVersion is bumped when response_cache changes shape.
const schemaVersion = "1"

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	version, err := s.metaValue(ctx, "schema_version")
	if err != nil {
		return err
	}
	if version != "" && version != schemaVersion {
		// Cached bodies are disposable; a shape change drops them.
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM response_cache`); err != nil {
			return fmt.Errorf("reset response cache: %w", err)
		}
	}

	if _, err := s.DB.ExecContext(ctx, `
		INSERT INTO cache_meta (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return nil
}

// SchemaVersion returns the recorded schema version, or "" before Migrate.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	if s == nil || s.DB == nil {
		return "", errors.New("store is not initialized")
	}
	return s.metaValue(ctx, "schema_version")
}

func (s *Store) metaValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM cache_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read cache meta %s: %w", key, err)
	}
	return value, nil
}
