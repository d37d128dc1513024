package formulas

import (
	"fmt"
	"math"
)

// CalculateVolatility calculates the population standard deviation of
// returns, annualized by sqrt(252) when annualize is set.
func CalculateVolatility(returns []float64, annualize bool) float64 {
	volatility := StdDev(returns)
	if annualize {
		return volatility * math.Sqrt(252)
	}
	return volatility
}

// CalculateBeta calculates systematic risk relative to the market.
//
// Beta Formula:
//
//	Beta = Covariance(Asset, Market) / Variance(Market)
//
// Both series must have the same length; a mismatch is a caller error.
// Zero market variance yields a beta of 0.
func CalculateBeta(assetReturns, marketReturns []float64) (float64, error) {
	if len(assetReturns) != len(marketReturns) {
		return 0, fmt.Errorf("asset and market returns must have same length: %d vs %d",
			len(assetReturns), len(marketReturns))
	}

	marketVariance := Variance(marketReturns)
	if marketVariance == 0 {
		return 0, nil
	}

	return Covariance(assetReturns, marketReturns) / marketVariance, nil
}

// CalculateAlpha calculates the return in excess of the CAPM-predicted
// return for the given beta.
//
// Alpha Formula:
//
//	Alpha = Actual Return - (Risk-free Rate + Beta × (Market Return - Risk-free Rate))
func CalculateAlpha(actualReturn, beta, marketReturn, riskFreeRate float64) float64 {
	expectedReturn := riskFreeRate + beta*(marketReturn-riskFreeRate)
	return actualReturn - expectedReturn
}

// CalculateTreynorRatio calculates return per unit of systematic risk.
// A zero beta yields 0.
func CalculateTreynorRatio(totalReturn, beta, riskFreeRate float64) float64 {
	if beta == 0 {
		return 0
	}
	return (totalReturn - riskFreeRate) / beta
}

// CalculateInformationRatio calculates mean active return per unit of
// tracking error, where active return = portfolio - benchmark per period.
//
// Both series must have the same length. Zero tracking error yields 0.
func CalculateInformationRatio(portfolioReturns, benchmarkReturns []float64) (float64, error) {
	if len(portfolioReturns) != len(benchmarkReturns) {
		return 0, fmt.Errorf("portfolio and benchmark returns must have same length: %d vs %d",
			len(portfolioReturns), len(benchmarkReturns))
	}

	activeReturns := make([]float64, len(portfolioReturns))
	for i := range portfolioReturns {
		activeReturns[i] = portfolioReturns[i] - benchmarkReturns[i]
	}

	trackingError := StdDev(activeReturns)
	if trackingError == 0 {
		return 0, nil
	}

	return Mean(activeReturns) / trackingError, nil
}

// CalculateCalmarRatio calculates return relative to the worst loss.
// A zero max drawdown yields 0.
func CalculateCalmarRatio(annualReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualReturn / math.Abs(maxDrawdown)
}
