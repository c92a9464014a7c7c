package model

import "time"

// IndicatorSnapshot holds the indicators computed on a radar fetch.
type IndicatorSnapshot struct {
	Symbol        string         `json:"symbol"`
	AsOf          time.Time      `json:"as_of"`
	Bars          int            `json:"bars"`
	LastClose     float64        `json:"last_close"`
	SMA           map[int]Metric `json:"sma"`
	Support       Metric         `json:"support"`
	Resistance    Metric         `json:"resistance"`
	ShortLookback int            `json:"short_lookback"`
	High52w       Metric         `json:"high_52w"`
	Low52w        Metric         `json:"low_52w"`
	RangeLookback int            `json:"range_lookback"`
	HistoryHigh   Metric         `json:"history_high"`
	HistoryLow    Metric         `json:"history_low"`
	RSI14         Metric         `json:"rsi14"`
}
