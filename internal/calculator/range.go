package calculator

import (
	"github.com/markcheno/go-talib"

	"SetupRadar/internal/model"
)

// Support returns the lowest low over the last lookback bars.
func Support(lows []float64, lookback int) model.Metric {
	if lookback <= 0 || len(lows) < lookback {
		return model.Unavailable
	}
	window := lows[len(lows)-lookback:]
	if lookback == 1 {
		return model.Some(window[0])
	}
	out := talib.Min(window, lookback)
	return model.Some(out[len(out)-1])
}

// Resistance returns the highest high over the last lookback bars.
func Resistance(highs []float64, lookback int) model.Metric {
	if lookback <= 0 || len(highs) < lookback {
		return model.Unavailable
	}
	window := highs[len(highs)-lookback:]
	if lookback == 1 {
		return model.Some(window[0])
	}
	out := talib.Max(window, lookback)
	return model.Some(out[len(out)-1])
}

// Calculate52WeekRange returns the high and low of the most recent lookback
// trading days. Both are unavailable when fewer than lookback bars exist.
func Calculate52WeekRange(bars []model.OHLCV, lookback int) (high, low model.Metric) {
	return Resistance(Highs(bars), lookback), Support(Lows(bars), lookback)
}

// HistoryRange returns the high and low over every bar.
func HistoryRange(bars []model.OHLCV) (high, low model.Metric) {
	return Calculate52WeekRange(bars, len(bars))
}
