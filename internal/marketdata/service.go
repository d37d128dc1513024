package marketdata

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/domain"
)

// HistoricalClient defines the contract for the upstream data provider
type HistoricalClient interface {
	GetHistoricalPrices(ctx context.Context, symbol, period string) ([]domain.Bar, error)
	GetRiskFreeRate(ctx context.Context, symbol string) (float64, error)
}

// Config holds service configuration
type Config struct {
	BenchmarkSymbol  string  // e.g. ^GSPC
	RiskFreeSymbol   string  // e.g. ^TNX
	RiskFreeFallback float64 // Annual decimal rate used when the fetch fails
}

// Service provides cached historical market data. Fetch failures never
// surface as errors to the analysis pipeline: an empty series (or the
// fallback rate) is the failure signal, consumed by the engine's
// degraded-path handling.
type Service struct {
	client HistoricalClient
	cache  *Cache
	cfg    Config
	log    zerolog.Logger
}

// NewService creates a new market data service
func NewService(client HistoricalClient, cache *Cache, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		cfg:    cfg,
		log:    log.With().Str("service", "marketdata").Logger(),
	}
}

// History returns the bar series for a symbol over the given period.
// Cache first, provider second; an empty slice signals failure.
func (s *Service) History(ctx context.Context, symbol, period string) []domain.Bar {
	if bars, found, err := s.cache.Get(symbol, period); err == nil && found {
		return bars
	} else if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed")
	}

	bars, err := s.client.GetHistoricalPrices(ctx, symbol, period)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Str("period", period).Msg("Historical fetch failed")
		return []domain.Bar{}
	}

	// Only successful, non-empty fetches are worth caching
	if len(bars) > 0 {
		if err := s.cache.Set(symbol, period, bars); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache write failed")
		}
	}

	return bars
}

// Benchmark returns the market benchmark series over the given period
func (s *Service) Benchmark(ctx context.Context, period string) []domain.Bar {
	return s.History(ctx, s.cfg.BenchmarkSymbol, period)
}

// RiskFreeRate returns the current annualized risk-free rate as a
// decimal, falling back to the configured default when the fetch fails.
func (s *Service) RiskFreeRate(ctx context.Context) float64 {
	rate, err := s.client.GetRiskFreeRate(ctx, s.cfg.RiskFreeSymbol)
	if err != nil || rate <= 0 {
		s.log.Warn().Err(err).
			Float64("fallback", s.cfg.RiskFreeFallback).
			Msg("Risk-free rate fetch failed, using fallback")
		return s.cfg.RiskFreeFallback
	}
	return rate
}

// WarmBenchmark pre-fetches the benchmark series into the cache so the
// first analysis after startup or a purge does not pay the fetch cost.
func (s *Service) WarmBenchmark(ctx context.Context, period string) {
	bars := s.Benchmark(ctx, period)
	s.log.Info().
		Str("symbol", s.cfg.BenchmarkSymbol).
		Str("period", period).
		Int("bars", len(bars)).
		Msg("Benchmark cache warmed")
}

// PurgeExpired removes expired cache entries
func (s *Service) PurgeExpired() (int64, error) {
	return s.cache.PurgeExpired()
}
