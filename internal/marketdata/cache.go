// Package marketdata provides cached access to historical market data.
package marketdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/foliolens/foliolens/internal/database"
	"github.com/foliolens/foliolens/internal/domain"
)

// Cache is a TTL cache for fetched bar series, keyed by symbol+period.
// Entries live in the cache-profile SQLite database as msgpack blobs so
// they survive restarts, and expiry is checked on read.
type Cache struct {
	db  *database.DB
	ttl time.Duration
	log zerolog.Logger
}

// NewCache creates the cache and its backing table
func NewCache(db *database.DB, ttl time.Duration, log zerolog.Logger) (*Cache, error) {
	c := &Cache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "marketdata_cache").Logger(),
	}

	schema := `
		CREATE TABLE IF NOT EXISTS market_data_cache (
			symbol     TEXT NOT NULL,
			period     TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			bars       BLOB NOT NULL,
			PRIMARY KEY (symbol, period)
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create market_data_cache table: %w", err)
	}

	return c, nil
}

// Get returns the cached bar series for symbol+period, or found=false when
// missing or expired.
func (c *Cache) Get(symbol, period string) ([]domain.Bar, bool, error) {
	var blob []byte
	var expiresAt int64

	row := c.db.QueryRow(
		"SELECT bars, expires_at FROM market_data_cache WHERE symbol = ? AND period = ?",
		symbol, period,
	)
	if err := row.Scan(&blob, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		return nil, false, nil
	}

	var bars []domain.Bar
	if err := msgpack.Unmarshal(blob, &bars); err != nil {
		// A corrupt blob is treated as a miss; the entry gets overwritten
		// on the next Set
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to decode cached bars")
		return nil, false, nil
	}

	return bars, true, nil
}

// Set stores a bar series for symbol+period with the configured TTL
func (c *Cache) Set(symbol, period string, bars []domain.Bar) error {
	blob, err := msgpack.Marshal(bars)
	if err != nil {
		return fmt.Errorf("failed to encode bars: %w", err)
	}

	now := time.Now()
	_, err = c.db.Exec(`
		INSERT INTO market_data_cache (symbol, period, fetched_at, expires_at, bars)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol, period) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at,
			bars = excluded.bars`,
		symbol, period, now.Unix(), now.Add(c.ttl).Unix(), blob,
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("bars", len(bars)).
		Msg("Cached market data")

	return nil
}

// Invalidate removes the entry for symbol+period
func (c *Cache) Invalidate(symbol, period string) error {
	_, err := c.db.Exec(
		"DELETE FROM market_data_cache WHERE symbol = ? AND period = ?",
		symbol, period,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// PurgeExpired removes all expired entries and returns how many were removed
func (c *Cache) PurgeExpired() (int64, error) {
	result, err := c.db.Exec(
		"DELETE FROM market_data_cache WHERE expires_at <= ?",
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}

	removed, _ := result.RowsAffected()
	return removed, nil
}
