package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Column is one provider column. Key holds the column levels, e.g. ["Close"] or
// ["Close", "AAPL"] for a provider that nests per-symbol sub-columns.
type Column struct {
	Key    []string
	Values []float64 // NaN marks a missing value
}

// RawFrame is price history exactly as a provider returned it.
type RawFrame struct {
	Symbol  string
	Index   []time.Time
	Columns []Column
}

// Len returns the number of index rows.
func (f RawFrame) Len() int { return len(f.Index) }
