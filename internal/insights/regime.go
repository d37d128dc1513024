package insights

import "github.com/markcheno/go-talib"

// detectMarketRegime classifies the market from the benchmark trend and
// the portfolio's annualized volatility. Trend compares the 50-day moving
// average against the 200-day; a spread beyond +/-5% flips the regime out
// of sideways.
func detectMarketRegime(benchmarkPrices []float64, portfolioVolatility float64) MarketContext {
	if len(benchmarkPrices) == 0 {
		return MarketContext{
			Regime:     RegimeSideways,
			Volatility: VolatilityMedium,
			Sentiment:  "Neutral - insufficient data for regime detection",
		}
	}

	var recentAvg, longTermAvg float64
	if len(benchmarkPrices) >= 200 {
		recentAvg = lastValue(talib.Sma(benchmarkPrices, 50))
		longTermAvg = lastValue(talib.Sma(benchmarkPrices, 200))
	} else {
		// Shorter histories fall back to plain window means
		recentAvg = meanOfLast(benchmarkPrices, 50)
		longTermAvg = meanOfLast(benchmarkPrices, 200)
	}

	var regime Regime
	switch trend := (recentAvg - longTermAvg) / longTermAvg; {
	case trend > 0.05:
		regime = RegimeBull
	case trend < -0.05:
		regime = RegimeBear
	default:
		regime = RegimeSideways
	}

	var volatility VolatilityLevel
	switch {
	case portfolioVolatility < 0.15:
		volatility = VolatilityLow
	case portfolioVolatility < 0.25:
		volatility = VolatilityMedium
	default:
		volatility = VolatilityHigh
	}

	var sentiment string
	switch {
	case regime == RegimeBull && volatility == VolatilityLow:
		sentiment = "Strong bull market with low volatility - favorable conditions"
	case regime == RegimeBull && volatility == VolatilityHigh:
		sentiment = "Bull market with high volatility - proceed with caution"
	case regime == RegimeBear:
		sentiment = "Bear market detected - defensive positioning recommended"
	default:
		sentiment = "Sideways market - range-bound trading conditions"
	}

	return MarketContext{Regime: regime, Volatility: volatility, Sentiment: sentiment}
}

func lastValue(values []float64) float64 {
	return values[len(values)-1]
}

func meanOfLast(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	window := values[len(values)-n:]

	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}
