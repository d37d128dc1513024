package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateAllRiskMetrics(t *testing.T) {
	prices := []float64{100, 110, 90, 95, 130}
	market := []float64{100, 105, 102, 108, 115}

	m, err := CalculateAllRiskMetrics(prices, market, 0.04)
	require.NoError(t, err)

	returns := CalculateReturns(prices)
	marketReturns := CalculateReturns(market)

	assert.InDelta(t, CalculateSharpeRatio(returns, 0.04), m.SharpeRatio, 1e-12)
	assert.InDelta(t, 0.1818, m.MaxDrawdown, 1e-4)
	assert.InDelta(t, CalculateVaR(returns, 0.95, 130), m.VaR95, 1e-12)
	assert.InDelta(t, CalculateVolatility(returns, true), m.Volatility, 1e-12)

	expectedBeta, err := CalculateBeta(returns, marketReturns)
	require.NoError(t, err)
	assert.InDelta(t, expectedBeta, m.Beta, 1e-12)

	// Alpha/Treynor/Calmar use the total-horizon return
	totalReturn := TotalReturn(prices)
	marketTotalReturn := TotalReturn(market)
	assert.InDelta(t, CalculateAlpha(totalReturn, m.Beta, marketTotalReturn, 0.04), m.Alpha, 1e-12)
	assert.InDelta(t, CalculateTreynorRatio(totalReturn, m.Beta, 0.04), m.TreynorRatio, 1e-12)
	assert.InDelta(t, CalculateCalmarRatio(totalReturn, m.MaxDrawdown), m.CalmarRatio, 1e-12)
}

func TestCalculateAllRiskMetricsMismatchedSeries(t *testing.T) {
	_, err := CalculateAllRiskMetrics([]float64{100, 110, 120}, []float64{100, 105}, 0.04)

	assert.Error(t, err)
}

func TestCalculateAllRiskMetricsEmptySeries(t *testing.T) {
	_, err := CalculateAllRiskMetrics(nil, []float64{100, 105}, 0.04)
	assert.Error(t, err)

	_, err = CalculateAllRiskMetrics([]float64{100, 105}, nil, 0.04)
	assert.Error(t, err)
}

func TestInterpretRiskMetrics(t *testing.T) {
	m := &RiskMetrics{
		SharpeRatio: 2.5,
		MaxDrawdown: 0.35,
		Beta:        1.5,
		Alpha:       0.08,
		VaR95:       1234.56,
	}

	observations := InterpretRiskMetrics(m)

	require.Len(t, observations, 5)
	assert.Contains(t, observations[0], "Excellent risk-adjusted returns")
	assert.Contains(t, observations[1], "High risk")
	assert.Contains(t, observations[2], "High market sensitivity")
	assert.Contains(t, observations[3], "Generating alpha")
	assert.Contains(t, observations[4], "95% VaR: $1234.56")
}

func TestInterpretRiskMetricsNeutralBundle(t *testing.T) {
	m := &RiskMetrics{Beta: 1}

	observations := InterpretRiskMetrics(m)

	// Poor Sharpe, low drawdown, VaR line; beta=1 and alpha=0 stay silent
	require.Len(t, observations, 3)
	assert.Contains(t, observations[0], "Poor risk-adjusted returns")
	assert.Contains(t, observations[1], "Low risk")
}
