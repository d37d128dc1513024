// Package domain contains shared types used across the application.
package domain

import "time"

// Bar represents a single daily OHLCV observation.
// AdjClose is the dividend/split adjusted close and is the price used
// for all return calculations.
type Bar struct {
	Date     time.Time `json:"date" msgpack:"date"`
	Open     float64   `json:"open" msgpack:"open"`
	High     float64   `json:"high" msgpack:"high"`
	Low      float64   `json:"low" msgpack:"low"`
	Close    float64   `json:"close" msgpack:"close"`
	Volume   int64     `json:"volume" msgpack:"volume"`
	AdjClose float64   `json:"adj_close" msgpack:"adj_close"`
}

// AdjustedCloses projects the adjusted close field from a bar series,
// order-preserving.
func AdjustedCloses(bars []Bar) []float64 {
	prices := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.AdjClose
	}
	return prices
}
