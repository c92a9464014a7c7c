package calculator

import (
	"fmt"

	"SetupRadar/internal/model"
)

// IndicatorConfig selects the windows and lookbacks of a snapshot.
type IndicatorConfig struct {
	SMAWindows    []int
	ShortLookback int
	RangeLookback int
	RSIPeriod     int
}

// DefaultIndicatorConfig returns SMA 50/100/200, 20-day support/resistance and a 252-day range.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		SMAWindows:    []int{50, 100, 200},
		ShortLookback: 20,
		RangeLookback: 252,
		RSIPeriod:     14,
	}
}

// BuildSnapshot computes every indicator for already-normalized bars.
func BuildSnapshot(symbol string, bars []model.OHLCV, cfg IndicatorConfig) (*model.IndicatorSnapshot, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %q", model.ErrDataUnavailable, symbol)
	}
	closes := Closes(bars)
	lows := Lows(bars)
	highs := Highs(bars)
	last := bars[len(bars)-1]

	high52, low52 := Calculate52WeekRange(bars, cfg.RangeLookback)
	histHigh, histLow := HistoryRange(bars)
	return &model.IndicatorSnapshot{
		Symbol:        symbol,
		AsOf:          last.Time,
		Bars:          len(bars),
		LastClose:     last.Close,
		SMA:           SMAs(closes, cfg.SMAWindows),
		Support:       Support(lows, cfg.ShortLookback),
		Resistance:    Resistance(highs, cfg.ShortLookback),
		ShortLookback: cfg.ShortLookback,
		High52w:       high52,
		Low52w:        low52,
		RangeLookback: cfg.RangeLookback,
		HistoryHigh:   histHigh,
		HistoryLow:    histLow,
		RSI14:         CalculateRSI(closes, cfg.RSIPeriod),
	}, nil
}
