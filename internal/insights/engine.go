package insights

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/domain"
	"github.com/foliolens/foliolens/internal/portfolio"
	"github.com/foliolens/foliolens/pkg/formulas"
)

// HistoryService defines the market data access the engine needs
type HistoryService interface {
	History(ctx context.Context, symbol, period string) []domain.Bar
	Benchmark(ctx context.Context, period string) []domain.Bar
	RiskFreeRate(ctx context.Context) float64
}

// Config holds engine configuration
type Config struct {
	LookbackPeriod string // e.g. 1y
}

// Engine produces quantitative insights for a portfolio
type Engine struct {
	market HistoryService
	cfg    Config
	log    zerolog.Logger
}

// NewEngine creates a new insights engine
func NewEngine(market HistoryService, cfg Config, log zerolog.Logger) *Engine {
	return &Engine{
		market: market,
		cfg:    cfg,
		log:    log.With().Str("service", "insights").Logger(),
	}
}

// Analyze runs the full quantitative analysis for the given positions.
// Historical data for every symbol, the benchmark, and the risk-free
// rate are fetched concurrently; holdings whose history cannot be
// fetched degrade to a neutral view instead of failing the analysis.
func (e *Engine) Analyze(ctx context.Context, positions []portfolio.Position) (*QuantitativeInsights, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("portfolio must not be empty")
	}

	totalValue := 0.0
	totalCost := 0.0
	for _, pos := range positions {
		totalValue += pos.MarketValue()
		totalCost += pos.CostBasis()
	}
	if totalValue <= 0 {
		return nil, fmt.Errorf("portfolio has no market value")
	}

	totalReturn := 0.0
	if totalCost > 0 {
		totalReturn = (totalValue - totalCost) / totalCost
	}

	e.log.Info().Int("positions", len(positions)).Msg("Starting portfolio analysis")

	// Fan out: one fetch per symbol plus benchmark and risk-free rate
	stockBars := make([][]domain.Bar, len(positions))
	var benchmarkBars []domain.Bar
	var riskFreeRate float64

	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			stockBars[i] = e.market.History(ctx, symbol, e.cfg.LookbackPeriod)
		}(i, pos.Symbol)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		benchmarkBars = e.market.Benchmark(ctx, e.cfg.LookbackPeriod)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		riskFreeRate = e.market.RiskFreeRate(ctx)
	}()
	wg.Wait()

	benchmarkPrices := domain.AdjustedCloses(benchmarkBars)

	stockReturns := make([][]float64, len(positions))
	for i, bars := range stockBars {
		stockReturns[i] = formulas.CalculateReturns(domain.AdjustedCloses(bars))
	}

	portfolioReturns := weightedPortfolioReturns(positions, stockReturns, totalValue)
	portfolioMetrics := e.portfolioRiskMetrics(portfolioReturns, benchmarkPrices, totalValue, riskFreeRate)

	diversification := diversificationScore(positions, totalValue)

	holdings := make([]HoldingView, len(positions))
	for i, pos := range positions {
		holdings[i] = e.analyzeHolding(pos, stockBars[i], benchmarkPrices, totalValue, riskFreeRate)
	}

	result := &QuantitativeInsights{
		Portfolio: PortfolioMetrics{
			TotalValue:           totalValue,
			TotalReturn:          totalReturn,
			SharpeRatio:          portfolioMetrics.SharpeRatio,
			MaxDrawdown:          portfolioMetrics.MaxDrawdown,
			VaR95:                portfolioMetrics.VaR95,
			Beta:                 portfolioMetrics.Beta,
			Alpha:                portfolioMetrics.Alpha,
			Volatility:           portfolioMetrics.Volatility,
			DiversificationScore: diversification,
		},
		Holdings:      holdings,
		Insights:      buildInsights(portfolioMetrics, holdings, diversification),
		MarketContext: detectMarketRegime(benchmarkPrices, portfolioMetrics.Volatility),
	}

	e.log.Info().
		Int("holdings", len(result.Holdings)).
		Int("insights", len(result.Insights)).
		Str("regime", string(result.MarketContext.Regime)).
		Msg("Portfolio analysis complete")

	return result, nil
}

// portfolioRiskMetrics computes risk metrics on a synthetic price series
// built from the weighted portfolio returns. When the inputs are unusable
// it returns a neutral bundle (zeros, beta 1) so the caller can still
// render a result.
func (e *Engine) portfolioRiskMetrics(portfolioReturns, benchmarkPrices []float64, totalValue, riskFreeRate float64) *formulas.RiskMetrics {
	if len(portfolioReturns) == 0 || len(benchmarkPrices) == 0 {
		return &formulas.RiskMetrics{Beta: 1}
	}

	portfolioPrices := returnsToPrices(portfolioReturns, totalValue)
	aligned, alignedBenchmark := alignSeries(portfolioPrices, benchmarkPrices)

	metrics, err := formulas.CalculateAllRiskMetrics(aligned, alignedBenchmark, riskFreeRate)
	if err != nil {
		e.log.Warn().Err(err).Msg("Portfolio risk metrics degraded to neutral")
		return &formulas.RiskMetrics{Beta: 1}
	}
	return metrics
}

// analyzeHolding computes the per-position view. Missing history yields
// a neutral hold with zero confidence.
func (e *Engine) analyzeHolding(pos portfolio.Position, bars []domain.Bar, benchmarkPrices []float64, totalValue, riskFreeRate float64) HoldingView {
	allocation := pos.MarketValue() / totalValue * 100

	neutral := HoldingView{
		Symbol:         pos.Symbol,
		Name:           pos.Name,
		Allocation:     allocation,
		Beta:           1,
		Recommendation: ActionHold,
	}

	if len(bars) == 0 {
		return neutral
	}

	prices, alignedBenchmark := alignSeries(domain.AdjustedCloses(bars), benchmarkPrices)
	metrics, err := formulas.CalculateAllRiskMetrics(prices, alignedBenchmark, riskFreeRate)
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("Holding metrics degraded to neutral")
		return neutral
	}

	rec := generateRecommendation(metrics, allocation)

	return HoldingView{
		Symbol:         pos.Symbol,
		Name:           pos.Name,
		Allocation:     allocation,
		SharpeRatio:    metrics.SharpeRatio,
		Beta:           metrics.Beta,
		Volatility:     metrics.Volatility,
		MaxDrawdown:    metrics.MaxDrawdown,
		Recommendation: rec.Action,
		Confidence:     rec.Confidence,
	}
}

// weightedPortfolioReturns combines the per-holding return series into a
// single value-weighted series, truncated to the shortest non-empty
// series. Holdings with no history contribute zero for every day.
func weightedPortfolioReturns(positions []portfolio.Position, stockReturns [][]float64, totalValue float64) []float64 {
	minLength := 0
	for _, returns := range stockReturns {
		if len(returns) == 0 {
			continue
		}
		if minLength == 0 || len(returns) < minLength {
			minLength = len(returns)
		}
	}
	if minLength == 0 {
		return nil
	}

	portfolioReturns := make([]float64, minLength)
	for i := 0; i < minLength; i++ {
		for j, pos := range positions {
			if i < len(stockReturns[j]) {
				weight := pos.MarketValue() / totalValue
				portfolioReturns[i] += weight * stockReturns[j][i]
			}
		}
	}

	return portfolioReturns
}

// returnsToPrices builds a synthetic price series from a return series,
// anchored at initialPrice.
func returnsToPrices(returns []float64, initialPrice float64) []float64 {
	prices := make([]float64, len(returns)+1)
	prices[0] = initialPrice
	for i, r := range returns {
		prices[i+1] = prices[i] * (1 + r)
	}
	return prices
}

// alignSeries trims both series to their common length, keeping the most
// recent observations.
func alignSeries(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

// diversificationScore maps the Herfindahl concentration index onto
// 0-100, where 100 is perfectly equal weighting. Single-position
// portfolios score 0.
func diversificationScore(positions []portfolio.Position, totalValue float64) float64 {
	n := len(positions)
	if n <= 1 {
		return 0
	}

	herfindahl := 0.0
	for _, pos := range positions {
		weight := pos.MarketValue() / totalValue
		herfindahl += weight * weight
	}

	score := (1 - herfindahl) / (1 - 1/float64(n)) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
