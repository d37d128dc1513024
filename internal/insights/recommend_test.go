package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foliolens/foliolens/pkg/formulas"
)

func TestRecommendStrongBuy(t *testing.T) {
	metrics := &formulas.RiskMetrics{SharpeRatio: 2.5, Alpha: 0.08, MaxDrawdown: 0.10}

	rec := generateRecommendation(metrics, 10)

	// 40 (Sharpe) + 30 (alpha) + 20 (drawdown) = 90
	assert.Equal(t, ActionStrongBuy, rec.Action)
	assert.Equal(t, 70, rec.Confidence)
}

func TestRecommendStrongSell(t *testing.T) {
	metrics := &formulas.RiskMetrics{SharpeRatio: -0.5, Alpha: -0.10, MaxDrawdown: 0.40}

	rec := generateRecommendation(metrics, 30)

	// -20 - 30 - 20 - 10 = -80
	assert.Equal(t, ActionStrongSell, rec.Action)
	assert.Equal(t, 55, rec.Confidence)
}

func TestRecommendHoldOnMiddlingMetrics(t *testing.T) {
	metrics := &formulas.RiskMetrics{SharpeRatio: 0.5, Alpha: 0, MaxDrawdown: 0.20}

	rec := generateRecommendation(metrics, 10)

	// 10 (Sharpe) + 0 (flat alpha) + 10 (drawdown) = 20
	assert.Equal(t, ActionHold, rec.Action)
}

func TestRecommendConcentrationPenalty(t *testing.T) {
	metrics := &formulas.RiskMetrics{SharpeRatio: 1.5, Alpha: 0.03, MaxDrawdown: 0.10}

	// 25 + 15 + 20 = 60 at a modest allocation
	assert.Equal(t, ActionStrongBuy, generateRecommendation(metrics, 10).Action)

	// The same metrics drop to a buy when the position is oversized
	assert.Equal(t, ActionBuy, generateRecommendation(metrics, 25).Action)
}

func TestRecommendSellBracket(t *testing.T) {
	metrics := &formulas.RiskMetrics{SharpeRatio: -0.5, Alpha: -0.01, MaxDrawdown: 0.30}

	// -20 + 0 - 20 = -40
	assert.Equal(t, ActionSell, generateRecommendation(metrics, 10).Action)
}

func TestRecommendMonotonicInSharpe(t *testing.T) {
	rank := map[Action]int{
		ActionStrongSell: 0,
		ActionSell:       1,
		ActionHold:       2,
		ActionBuy:        3,
		ActionStrongBuy:  4,
	}

	// With everything else fixed, a higher Sharpe ratio must never
	// produce a weaker label
	sharpes := []float64{-1.0, -0.1, 0.2, 0.8, 1.2, 1.8, 2.1, 3.0}
	prev := -1
	for _, sharpe := range sharpes {
		metrics := &formulas.RiskMetrics{SharpeRatio: sharpe, Alpha: 0.01, MaxDrawdown: 0.20}
		rec := generateRecommendation(metrics, 10)
		assert.GreaterOrEqual(t, rank[rec.Action], prev, "sharpe %.2f", sharpe)
		prev = rank[rec.Action]
	}
}

func TestRecommendConfidenceNeverExceeds100(t *testing.T) {
	metrics := &formulas.RiskMetrics{SharpeRatio: 2.5, Alpha: 0.08, MaxDrawdown: 0.40}

	rec := generateRecommendation(metrics, 30)
	assert.LessOrEqual(t, rec.Confidence, 100)
}
