package formulas

// Drawdown represents max drawdown analysis results
type Drawdown struct {
	MaxDrawdown float64 `json:"max_drawdown"` // Maximum drawdown (positive fraction, 0.25 = 25% loss from peak)
	Peak        float64 `json:"peak"`         // Price at the peak that produced the max drawdown
	Trough      float64 `json:"trough"`       // Price at the trough
	PeakIndex   int     `json:"peak_index"`   // Index of the peak
	TroughIndex int     `json:"trough_index"` // Index of the trough
	Duration    int     `json:"duration"`     // Periods from peak to trough
}

// CalculateMaxDrawdown scans a price series tracking the running peak and
// records the largest peak-to-trough decline, with the indices that
// produced it.
//
// Drawdown Formula:
//
//	Drawdown = (Running Peak - Price) / Running Peak
//
// A series of length < 2 yields a zero drawdown.
func CalculateMaxDrawdown(prices []float64) Drawdown {
	if len(prices) == 0 {
		return Drawdown{}
	}

	dd := Drawdown{
		Peak:   prices[0],
		Trough: prices[0],
	}

	currentPeak := prices[0]
	currentPeakIndex := 0

	for i := 1; i < len(prices); i++ {
		if prices[i] > currentPeak {
			currentPeak = prices[i]
			currentPeakIndex = i
		}

		if currentPeak <= 0 {
			continue
		}

		drawdown := (currentPeak - prices[i]) / currentPeak

		if drawdown > dd.MaxDrawdown {
			dd.MaxDrawdown = drawdown
			dd.Peak = currentPeak
			dd.PeakIndex = currentPeakIndex
			dd.Trough = prices[i]
			dd.TroughIndex = i
		}
	}

	dd.Duration = dd.TroughIndex - dd.PeakIndex
	return dd
}
