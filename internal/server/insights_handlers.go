package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/domain"
	"github.com/foliolens/foliolens/internal/insights"
	"github.com/foliolens/foliolens/internal/portfolio"
	"github.com/foliolens/foliolens/pkg/formulas"
)

// InsightsService runs the quantitative analysis
type InsightsService interface {
	Analyze(ctx context.Context, positions []portfolio.Position) (*insights.QuantitativeInsights, error)
}

// PositionStore provides access to the stored portfolio
type PositionStore interface {
	List() ([]portfolio.Position, error)
	GetBySymbol(symbol string) (*portfolio.Position, error)
	Upsert(position portfolio.Position) error
	Delete(symbol string) error
	ReplaceAll(positions []portfolio.Position) error
}

// MarketDataService provides historical market data
type MarketDataService interface {
	History(ctx context.Context, symbol, period string) []domain.Bar
	Benchmark(ctx context.Context, period string) []domain.Bar
	RiskFreeRate(ctx context.Context) float64
}

// InsightsHandlers handles analysis HTTP requests
type InsightsHandlers struct {
	insights  InsightsService
	positions PositionStore
	market    MarketDataService
	lookback  string
	log       zerolog.Logger
}

// NewInsightsHandlers creates new insights handlers
func NewInsightsHandlers(svc InsightsService, positions PositionStore, market MarketDataService, lookback string, log zerolog.Logger) *InsightsHandlers {
	return &InsightsHandlers{
		insights:  svc,
		positions: positions,
		market:    market,
		lookback:  lookback,
		log:       log.With().Str("handler", "insights").Logger(),
	}
}

// RegisterRoutes registers insights routes
func (h *InsightsHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/insights", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/portfolio", h.HandlePortfolioInsights)
		r.Get("/report", h.HandleReport)
	})
	r.Get("/metrics/{symbol}", h.HandleSymbolMetrics)
}

// analyzeRequest is the body for POST /api/insights/analyze
type analyzeRequest struct {
	Positions []portfolio.Position `json:"positions"`
}

// HandleAnalyze handles POST /api/insights/analyze - runs the analysis
// on positions supplied in the request body, without touching the store
func (h *InsightsHandlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Positions) == 0 {
		writeError(w, h.log, http.StatusBadRequest, "positions must not be empty")
		return
	}

	result, err := h.insights.Analyze(r.Context(), req.Positions)
	if err != nil {
		h.log.Error().Err(err).Msg("Analysis failed")
		writeError(w, h.log, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(result))
}

// HandlePortfolioInsights handles GET /api/insights/portfolio - runs the
// analysis on the stored portfolio
func (h *InsightsHandlers) HandlePortfolioInsights(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyzeStored(r.Context())
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(result))
}

// HandleReport handles GET /api/insights/report - renders the stored
// portfolio analysis as a markdown report
func (h *InsightsHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyzeStored(r.Context())
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(insights.FormatReport(result))); err != nil {
		h.log.Error().Err(err).Msg("Failed to write report response")
	}
}

// HandleSymbolMetrics handles GET /api/metrics/{symbol} - computes risk
// metrics for a single symbol against the benchmark
func (h *InsightsHandlers) HandleSymbolMetrics(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if symbol == "" {
		writeError(w, h.log, http.StatusBadRequest, "symbol must not be empty")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = h.lookback
	}

	bars := h.market.History(r.Context(), symbol, period)
	if len(bars) == 0 {
		writeError(w, h.log, http.StatusNotFound, "no historical data for "+symbol)
		return
	}

	benchmarkBars := h.market.Benchmark(r.Context(), period)
	prices := domain.AdjustedCloses(bars)
	benchmarkPrices := domain.AdjustedCloses(benchmarkBars)

	// Trim both series to their common most-recent window
	n := len(prices)
	if len(benchmarkPrices) < n {
		n = len(benchmarkPrices)
	}
	if n == 0 {
		writeError(w, h.log, http.StatusServiceUnavailable, "benchmark data unavailable")
		return
	}
	prices = prices[len(prices)-n:]
	benchmarkPrices = benchmarkPrices[len(benchmarkPrices)-n:]

	metrics, err := formulas.CalculateAllRiskMetrics(prices, benchmarkPrices, h.market.RiskFreeRate(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to calculate risk metrics")
		writeError(w, h.log, http.StatusInternalServerError, "failed to calculate risk metrics")
		return
	}

	writeJSON(w, h.log, http.StatusOK, envelope(map[string]interface{}{
		"symbol":          symbol,
		"period":          period,
		"metrics":         sanitizeMetrics(metrics),
		"interpretations": formulas.InterpretRiskMetrics(metrics),
	}))
}

func (h *InsightsHandlers) analyzeStored(ctx context.Context) (*insights.QuantitativeInsights, error) {
	positions, err := h.positions.List()
	if err != nil {
		return nil, err
	}
	return h.insights.Analyze(ctx, positions)
}

func (h *InsightsHandlers) writeAnalysisError(w http.ResponseWriter, err error) {
	h.log.Error().Err(err).Msg("Portfolio analysis failed")
	writeError(w, h.log, http.StatusUnprocessableEntity, err.Error())
}

// sanitizeMetrics replaces non-finite values before JSON encoding. The
// Sortino ratio is +Inf for a series with no downside days, which
// encoding/json cannot represent.
func sanitizeMetrics(m *formulas.RiskMetrics) map[string]interface{} {
	return map[string]interface{}{
		"sharpe_ratio":  finiteOr(m.SharpeRatio, 0),
		"sortino_ratio": finiteOr(m.SortinoRatio, 0),
		"max_drawdown":  finiteOr(m.MaxDrawdown, 0),
		"var_95":        finiteOr(m.VaR95, 0),
		"cvar_95":       finiteOr(m.CVaR95, 0),
		"volatility":    finiteOr(m.Volatility, 0),
		"beta":          finiteOr(m.Beta, 0),
		"alpha":         finiteOr(m.Alpha, 0),
		"treynor_ratio": finiteOr(m.TreynorRatio, 0),
		"calmar_ratio":  finiteOr(m.CalmarRatio, 0),
	}
}

func finiteOr(v, fallback float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fallback
	}
	return v
}
