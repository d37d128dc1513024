package insights

import "github.com/foliolens/foliolens/pkg/formulas"

// Recommendation pairs an action label with a confidence percentage
type Recommendation struct {
	Action     Action
	Confidence int
}

// generateRecommendation scores a holding on its risk metrics and
// allocation. Weights: Sharpe 40%, alpha 30%, drawdown 20%,
// concentration 10%. Confidence reflects how much signal the metrics
// carried, capped at 100.
func generateRecommendation(metrics *formulas.RiskMetrics, allocation float64) Recommendation {
	score := 0
	confidence := 0

	switch {
	case metrics.SharpeRatio > 2.0:
		score += 40
		confidence += 30
	case metrics.SharpeRatio > 1.0:
		score += 25
		confidence += 20
	case metrics.SharpeRatio > 0:
		score += 10
		confidence += 10
	default:
		score -= 20
		confidence += 15
	}

	switch {
	case metrics.Alpha > 0.05:
		score += 30
		confidence += 25
	case metrics.Alpha > 0:
		score += 15
		confidence += 15
	case metrics.Alpha < -0.05:
		score -= 30
		confidence += 20
	}

	switch {
	case metrics.MaxDrawdown < 0.15:
		score += 20
		confidence += 15
	case metrics.MaxDrawdown < 0.25:
		score += 10
		confidence += 10
	default:
		score -= 20
		confidence += 15
	}

	// Penalize over-concentration
	if allocation > 20 {
		score -= 10
		confidence += 5
	}

	if confidence > 100 {
		confidence = 100
	}

	var action Action
	switch {
	case score >= 60:
		action = ActionStrongBuy
	case score >= 30:
		action = ActionBuy
	case score >= -20:
		action = ActionHold
	case score >= -50:
		action = ActionSell
	default:
		action = ActionStrongSell
	}

	return Recommendation{Action: action, Confidence: confidence}
}
