package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetCached returns the cached payload for key, if present and not
// expired.
func (db *DB) GetCached(key string) ([]byte, bool) {
	var payload []byte
	err := db.Get(&payload,
		`SELECT payload FROM query_cache WHERE key = ? AND expires_at > ?`,
		key, time.Now().Unix())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return payload, true
}

// SetCached stores a payload under key, replacing any previous entry.
func (db *DB) SetCached(key string, payload []byte, ttl time.Duration) error {
	now := time.Now()
	_, err := db.Exec(
		`INSERT OR REPLACE INTO query_cache (key, payload, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, payload, now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// PurgeExpired removes entries whose TTL has lapsed and returns the
// number removed.
func (db *DB) PurgeExpired() (int64, error) {
	res, err := db.Exec(`DELETE FROM query_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}
