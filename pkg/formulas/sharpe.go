package formulas

import "math"

// CalculateSharpeRatio calculates the daily (unannualized) Sharpe Ratio
//
// Sharpe Ratio Formula:
//
//	Sharpe = (Mean Daily Return - Daily Risk-free Rate) / Standard Deviation of Returns
//	Daily risk-free rate = annual rate / 252
//
// Args:
//
//	returns: Array of daily returns
//	riskFreeRate: Risk-free rate (annual, as decimal, e.g. 0.04 for 4%)
//
// Returns:
//
//	Daily Sharpe ratio, or 0 when volatility is zero or there is no data
func CalculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	volatility := StdDev(returns)
	if volatility == 0 {
		return 0
	}

	return (Mean(returns) - riskFreeRate/252) / volatility
}

// CalculateSortinoRatio calculates the Sortino Ratio (downside deviation version of Sharpe).
// Only returns below the target contribute to the deviation.
//
// Sortino Formula:
//
//	Sortino = (Mean Daily Return - Daily Risk-free Rate) / Downside Deviation
//	Downside Deviation = sqrt(mean of squared deviations below target)
//
// Returns +Inf when no observation falls below the target, and 0 when the
// downside deviation itself is zero. Callers that feed the result into
// further arithmetic must special-case the +Inf sentinel.
func CalculateSortinoRatio(returns []float64, targetReturn, riskFreeRate float64) float64 {
	var downsideSquaredSum float64
	downsideCount := 0

	for _, ret := range returns {
		if ret < targetReturn {
			deviation := ret - targetReturn
			downsideSquaredSum += deviation * deviation
			downsideCount++
		}
	}

	if downsideCount == 0 {
		return math.Inf(1)
	}

	downsideDeviation := math.Sqrt(downsideSquaredSum / float64(downsideCount))
	if downsideDeviation == 0 {
		return 0
	}

	return (Mean(returns) - riskFreeRate/252) / downsideDeviation
}
