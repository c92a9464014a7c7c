package calculator

import (
	"github.com/markcheno/go-talib"

	"SetupRadar/internal/model"
)

// SMA computes the simple moving average of the last period prices.
// It is unavailable when fewer than period prices exist.
func SMA(prices []float64, period int) model.Metric {
	if period <= 0 || len(prices) < period {
		return model.Unavailable
	}
	window := prices[len(prices)-period:]
	out := talib.Sma(window, period)
	return model.Some(out[len(out)-1])
}

// SMAs computes one SMA per window.
func SMAs(prices []float64, windows []int) map[int]model.Metric {
	out := make(map[int]model.Metric, len(windows))
	for _, w := range windows {
		out[w] = SMA(prices, w)
	}
	return out
}
