package formulas

import (
	"math"
	"sort"
)

// CalculateVaR calculates historical Value at Risk at the given confidence
// level, scaled by portfolioValue.
//
// VaR Formula:
//
//	sort returns ascending; index = floor((1 - confidence) * n)
//	VaR = |sorted[index]| × portfolioValue
//
// Example: VaR(0.95) of $1000 means a 5% chance of losing more than $1000
// in one period. The index is clamped to the array bounds, so confidence=1
// reads the worst return.
func CalculateVaR(returns []float64, confidence, portfolioValue float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	index := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	if index < 0 {
		index = 0
	}

	return math.Abs(sorted[index] * portfolioValue)
}

// CalculateCVaR calculates Conditional Value at Risk (expected shortfall):
// the average loss beyond the VaR threshold, scaled by portfolioValue.
//
// More conservative than VaR since it averages the whole tail. A
// zero-length tail yields 0.
func CalculateCVaR(returns []float64, confidence, portfolioValue float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	index := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if index > len(sorted) {
		index = len(sorted)
	}
	if index <= 0 {
		return 0
	}

	tail := sorted[:index]
	return math.Abs(Mean(tail) * portfolioValue)
}
