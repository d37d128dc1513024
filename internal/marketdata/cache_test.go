package marketdata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolens/foliolens/internal/database"
	"github.com/foliolens/foliolens/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cache, err := NewCache(db, ttl, zerolog.Nop())
	require.NoError(t, err)
	return cache
}

func testBars() []domain.Bar {
	return []domain.Bar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000, AdjClose: 100.5},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 101, High: 103, Low: 100, Close: 102, Volume: 1100, AdjClose: 101.5},
	}
}

func TestCacheSetGet(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	require.NoError(t, cache.Set("AAPL", "1y", testBars()))

	bars, found, err := cache.Get("AAPL", "1y")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].AdjClose)
	assert.Equal(t, int64(1100), bars[1].Volume)
}

func TestCacheMiss(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	_, found, err := cache.Get("MSFT", "1y")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheKeyIncludesPeriod(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	require.NoError(t, cache.Set("AAPL", "1y", testBars()))

	_, found, err := cache.Get("AAPL", "6mo")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheExpiry(t *testing.T) {
	cache := newTestCache(t, -time.Second) // Everything written is already expired

	require.NoError(t, cache.Set("AAPL", "1y", testBars()))

	_, found, err := cache.Get("AAPL", "1y")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheInvalidate(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	require.NoError(t, cache.Set("AAPL", "1y", testBars()))
	require.NoError(t, cache.Invalidate("AAPL", "1y"))

	_, found, err := cache.Get("AAPL", "1y")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheOverwrite(t *testing.T) {
	cache := newTestCache(t, time.Hour)

	require.NoError(t, cache.Set("AAPL", "1y", testBars()))
	require.NoError(t, cache.Set("AAPL", "1y", testBars()[:1]))

	bars, found, err := cache.Get("AAPL", "1y")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, bars, 1)
}

func TestCachePurgeExpired(t *testing.T) {
	cache := newTestCache(t, -time.Second)

	require.NoError(t, cache.Set("AAPL", "1y", testBars()))
	require.NoError(t, cache.Set("MSFT", "1y", testBars()))

	removed, err := cache.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
