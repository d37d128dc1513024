// Package insights generates quantitative portfolio analysis: risk
// metrics, per-holding recommendations, rule-based insights, and market
// regime detection.
package insights

// InsightType classifies what kind of observation an insight makes
type InsightType string

const (
	TypeOpportunity InsightType = "opportunity"
	TypeRisk        InsightType = "risk"
	TypeAnomaly     InsightType = "anomaly"
	TypeRebalance   InsightType = "rebalance"
)

// Severity indicates how urgently an insight deserves attention
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Action is a per-holding recommendation label
type Action string

const (
	ActionStrongBuy  Action = "strong_buy"
	ActionBuy        Action = "buy"
	ActionHold       Action = "hold"
	ActionSell       Action = "sell"
	ActionStrongSell Action = "strong_sell"
)

// Regime labels the detected market trend
type Regime string

const (
	RegimeBull     Regime = "bull"
	RegimeBear     Regime = "bear"
	RegimeSideways Regime = "sideways"
)

// VolatilityLevel buckets annualized portfolio volatility
type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "low"
	VolatilityMedium VolatilityLevel = "medium"
	VolatilityHigh   VolatilityLevel = "high"
)

// PortfolioMetrics holds portfolio-level risk figures
type PortfolioMetrics struct {
	TotalValue           float64 `json:"total_value"`
	TotalReturn          float64 `json:"total_return"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	VaR95                float64 `json:"var95"`
	Beta                 float64 `json:"beta"`
	Alpha                float64 `json:"alpha"`
	Volatility           float64 `json:"volatility"`
	DiversificationScore float64 `json:"diversification_score"`
}

// HoldingView holds per-position risk figures and the recommendation
type HoldingView struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Allocation     float64 `json:"allocation"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	Beta           float64 `json:"beta"`
	Volatility     float64 `json:"volatility"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	Recommendation Action  `json:"recommendation"`
	Confidence     int     `json:"confidence"`
}

// Insight is a single generated observation about the portfolio
type Insight struct {
	ID                string      `json:"id"`
	Type              InsightType `json:"type"`
	Severity          Severity    `json:"severity"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	MathematicalBasis string      `json:"mathematical_basis"`
	Recommendation    string      `json:"recommendation,omitempty"`
}

// MarketContext describes the detected market environment
type MarketContext struct {
	Regime     Regime          `json:"regime"`
	Volatility VolatilityLevel `json:"volatility"`
	Sentiment  string          `json:"sentiment"`
}

// QuantitativeInsights is the full analysis result
type QuantitativeInsights struct {
	Portfolio     PortfolioMetrics `json:"portfolio"`
	Holdings      []HoldingView    `json:"holdings"`
	Insights      []Insight        `json:"insights"`
	MarketContext MarketContext    `json:"market_context"`
}
