package formulas

import "fmt"

// RiskMetrics is the full bundle of risk/performance statistics computed
// from one (asset price series, market price series, risk-free rate)
// triple. It is an immutable snapshot: recomputed fully whenever inputs
// change, never updated incrementally.
type RiskMetrics struct {
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	VaR95        float64 `json:"var_95"`
	CVaR95       float64 `json:"cvar_95"`
	Volatility   float64 `json:"volatility"`
	Beta         float64 `json:"beta"`
	Alpha        float64 `json:"alpha"`
	TreynorRatio float64 `json:"treynor_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`
}

// CalculateAllRiskMetrics is the canonical entry point: derives daily
// returns from both price series and computes every metric in one pass.
//
// Total-horizon returns (first vs last price) feed alpha, Treynor and
// Calmar; VaR/CVaR are scaled by the latest price. The two price series
// must produce equal-length return series (beta fails otherwise), so
// callers working with ragged provider data should align the series to a
// common horizon first.
func CalculateAllRiskMetrics(prices, marketPrices []float64, riskFreeRate float64) (*RiskMetrics, error) {
	if len(prices) == 0 || len(marketPrices) == 0 {
		return nil, fmt.Errorf("price series must not be empty")
	}

	returns := CalculateReturns(prices)
	marketReturns := CalculateReturns(marketPrices)

	beta, err := CalculateBeta(returns, marketReturns)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate beta: %w", err)
	}

	drawdown := CalculateMaxDrawdown(prices)
	lastPrice := prices[len(prices)-1]

	totalReturn := TotalReturn(prices)
	marketTotalReturn := TotalReturn(marketPrices)

	return &RiskMetrics{
		SharpeRatio:  CalculateSharpeRatio(returns, riskFreeRate),
		SortinoRatio: CalculateSortinoRatio(returns, 0, riskFreeRate),
		MaxDrawdown:  drawdown.MaxDrawdown,
		VaR95:        CalculateVaR(returns, 0.95, lastPrice),
		CVaR95:       CalculateCVaR(returns, 0.95, lastPrice),
		Volatility:   CalculateVolatility(returns, true),
		Beta:         beta,
		Alpha:        CalculateAlpha(totalReturn, beta, marketTotalReturn, riskFreeRate),
		TreynorRatio: CalculateTreynorRatio(totalReturn, beta, riskFreeRate),
		CalmarRatio:  CalculateCalmarRatio(totalReturn, drawdown.MaxDrawdown),
	}, nil
}

// InterpretRiskMetrics maps a metrics bundle to human-readable observation
// strings. Display only, never used for control flow.
func InterpretRiskMetrics(m *RiskMetrics) []string {
	var observations []string

	switch {
	case m.SharpeRatio > 2.0:
		observations = append(observations, fmt.Sprintf("Excellent risk-adjusted returns (Sharpe: %.2f)", m.SharpeRatio))
	case m.SharpeRatio > 1.0:
		observations = append(observations, fmt.Sprintf("Good risk-adjusted returns (Sharpe: %.2f)", m.SharpeRatio))
	case m.SharpeRatio > 0:
		observations = append(observations, fmt.Sprintf("Acceptable risk-adjusted returns (Sharpe: %.2f)", m.SharpeRatio))
	default:
		observations = append(observations, fmt.Sprintf("Poor risk-adjusted returns (Sharpe: %.2f) - consider rebalancing", m.SharpeRatio))
	}

	switch {
	case m.MaxDrawdown > 0.3:
		observations = append(observations, fmt.Sprintf("High risk: maximum drawdown of %.1f%% - consider reducing position sizes", m.MaxDrawdown*100))
	case m.MaxDrawdown > 0.2:
		observations = append(observations, fmt.Sprintf("Moderate risk: maximum drawdown of %.1f%%", m.MaxDrawdown*100))
	default:
		observations = append(observations, fmt.Sprintf("Low risk: maximum drawdown of %.1f%%", m.MaxDrawdown*100))
	}

	if m.Beta > 1.2 {
		observations = append(observations, fmt.Sprintf("High market sensitivity (beta=%.2f) - portfolio is %.0f%% more volatile than market", m.Beta, (m.Beta-1)*100))
	} else if m.Beta < 0.8 {
		observations = append(observations, fmt.Sprintf("Low market sensitivity (beta=%.2f) - portfolio is %.0f%% less volatile than market", m.Beta, (1-m.Beta)*100))
	}

	if m.Alpha > 0.05 {
		observations = append(observations, fmt.Sprintf("Generating alpha: outperforming market by %.1f%%", m.Alpha*100))
	} else if m.Alpha < -0.05 {
		observations = append(observations, fmt.Sprintf("Negative alpha: underperforming market by %.1f%%", -m.Alpha*100))
	}

	observations = append(observations, fmt.Sprintf("95%% VaR: $%.2f - 5%% chance of losing more than this in a day", m.VaR95))

	return observations
}
