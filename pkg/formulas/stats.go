// Package formulas provides pure statistical and risk calculations over
// plain float64 series. All functions are stateless and safe to call
// concurrently.
//
// Standard deviations and variances use the population formula (divide
// by n, not n-1), matching how the metrics below are defined.
package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the population standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// Variance calculates the population variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopVariance(data, nil)
}

// Covariance calculates the population covariance between two equal-length datasets
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}

	meanX := stat.Mean(x, nil)
	meanY := stat.Mean(y, nil)

	var sum float64
	for i := range x {
		sum += (x[i] - meanX) * (y[i] - meanY)
	}

	return sum / float64(len(x))
}

// CalculateReturns converts prices to simple period-over-period returns.
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
//
// Entries with a non-positive previous price are skipped rather than
// failing, so the output may be shorter than len(prices)-1. Callers must
// tolerate shorter-than-expected output.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 {
			returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
		}
	}

	return returns
}

// TotalReturn calculates the total horizon return from first to last price
func TotalReturn(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	return (prices[len(prices)-1] - prices[0]) / prices[0]
}
