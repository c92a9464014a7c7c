package calculator

import (
	"github.com/markcheno/go-talib"

	"SetupRadar/internal/model"
)

// CalculateRSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 closes.
func CalculateRSI(closes []float64, period int) model.Metric {
	if period <= 1 || len(closes) < period+1 {
		return model.Unavailable
	}
	out := talib.Rsi(closes, period)
	return model.Some(out[len(out)-1])
}
