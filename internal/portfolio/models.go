// Package portfolio stores the tracked holdings and their trade anchors.
package portfolio

// Position represents a single tracked holding
type Position struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Shares        float64 `json:"shares"`
	CurrentPrice  float64 `json:"current_price"`
	PurchasePrice float64 `json:"purchase_price"`
}

// MarketValue returns the current value of the position
func (p Position) MarketValue() float64 {
	return p.Shares * p.CurrentPrice
}

// CostBasis returns the acquisition cost of the position
func (p Position) CostBasis() float64 {
	return p.Shares * p.PurchasePrice
}
