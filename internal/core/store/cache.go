package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariadng/clickup-mcp/internal/core"
)

// GetResponse returns a cached response if it is still valid.
func (s *Store) GetResponse(ctx context.Context, key string) (*core.CachedResponse, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("cache key is required")
	}

	var (
		body       []byte
		statusCode int
		cachedAt   int64
		expiresAt  int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT body, status_code, cached_at, expires_at
		FROM response_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().UTC().Unix())

	if err := row.Scan(&body, &statusCode, &cachedAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached response: %w", err)
	}

	return &core.CachedResponse{
		Key:        key,
		Body:       body,
		StatusCode: statusCode,
		CachedAt:   time.Unix(cachedAt, 0).UTC(),
		ExpiresAt:  time.Unix(expiresAt, 0).UTC(),
	}, nil
}

// SetResponse stores a response body with a TTL.
func (s *Store) SetResponse(ctx context.Context, key string, body []byte, statusCode int, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if ttl <= 0 {
		return nil
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key is required")
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO response_cache (cache_key, body, status_code, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			body = excluded.body,
			status_code = excluded.status_code,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at
	`, key, body, statusCode, now.Unix(), expires.Unix())
	if err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}

	return nil
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (s *Store) InvalidatePrefix(ctx context.Context, prefix string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if prefix == "" {
		return 0, errors.New("cache prefix is required")
	}

	// substr avoids LIKE wildcard handling of '_' in ids.
	result, err := s.DB.ExecContext(ctx, `
		DELETE FROM response_cache WHERE substr(cache_key, 1, ?) = ?
	`, len(prefix), prefix)
	if err != nil {
		return 0, fmt.Errorf("invalidate cached responses: %w", err)
	}

	return result.RowsAffected()
}

// Prune removes expired entries.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM response_cache WHERE expires_at <= ?`, time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("prune cached responses: %w", err)
	}

	return result.RowsAffected()
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM response_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cached responses: %w", err)
	}

	return result.RowsAffected()
}

// Stats summarizes the cache contents.
func (s *Store) Stats(ctx context.Context) (*core.CacheStats, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		entries int64
		expired int64
		size    int64
		oldest  sql.NullInt64
		newest  sql.NullInt64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(LENGTH(body)), 0),
			MIN(cached_at),
			MAX(cached_at)
		FROM response_cache
	`, time.Now().UTC().Unix())

	if err := row.Scan(&entries, &expired, &size, &oldest, &newest); err != nil {
		return nil, fmt.Errorf("read cache stats: %w", err)
	}

	stats := &core.CacheStats{Entries: entries, Expired: expired, Bytes: size}
	if oldest.Valid {
		t := time.Unix(oldest.Int64, 0).UTC()
		stats.Oldest = &t
	}
	if newest.Valid {
		t := time.Unix(newest.Int64, 0).UTC()
		stats.Newest = &t
	}

	return stats, nil
}
