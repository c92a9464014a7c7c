package calculator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"SetupRadar/internal/model"
)

const (
	fieldOpen   = "open"
	fieldHigh   = "high"
	fieldLow    = "low"
	fieldClose  = "close"
	fieldVolume = "volume"
)

// Normalize flattens a provider frame into time-ascending bars with unique dates.
// Rows with a missing or non-positive close, high or low are dropped.
func Normalize(frame model.RawFrame) ([]model.OHLCV, error) {
	if frame.Len() == 0 {
		return nil, fmt.Errorf("%w: empty history for %q", model.ErrDataUnavailable, frame.Symbol)
	}

	closes := pickColumn(frame, fieldClose)
	highs := pickColumn(frame, fieldHigh)
	lows := pickColumn(frame, fieldLow)
	if closes == nil || highs == nil || lows == nil {
		return nil, fmt.Errorf("%w: %q lacks close/high/low columns", model.ErrDataUnavailable, frame.Symbol)
	}
	opens := pickColumn(frame, fieldOpen)
	volumes := pickColumn(frame, fieldVolume)

	byDay := make(map[string]int)
	bars := make([]model.OHLCV, 0, frame.Len())
	for i, ts := range frame.Index {
		c, h, l := valueAt(closes, i), valueAt(highs, i), valueAt(lows, i)
		if !usable(c) || !usable(h) || !usable(l) {
			continue
		}
		bar := model.OHLCV{Time: ts, High: h, Low: l, Close: c}
		if o := valueAt(opens, i); usable(o) {
			bar.Open = o
		}
		if v := valueAt(volumes, i); !math.IsNaN(v) && !math.IsInf(v, 0) {
			bar.Volume = v
		}
		day := ts.UTC().Format("2006-01-02")
		if j, ok := byDay[day]; ok {
			bars[j] = bar // last one wins
			continue
		}
		byDay[day] = len(bars)
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no usable bars for %q", model.ErrDataUnavailable, frame.Symbol)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// pickColumn chooses one column for field. With several candidates (per-symbol
// sub-columns or duplicates) the one tagged with the frame symbol wins, then the
// first with any finite value.
func pickColumn(frame model.RawFrame, field string) []float64 {
	var first []float64
	for _, col := range frame.Columns {
		if len(col.Key) == 0 || !strings.EqualFold(strings.TrimSpace(col.Key[0]), field) {
			continue
		}
		if len(col.Key) > 1 && frame.Symbol != "" && strings.EqualFold(col.Key[1], frame.Symbol) {
			return col.Values
		}
		if first == nil && hasFinite(col.Values) {
			first = col.Values
		}
	}
	return first
}

func hasFinite(vals []float64) bool {
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func valueAt(vals []float64, i int) float64 {
	if i >= len(vals) {
		return math.NaN()
	}
	return vals[i]
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Closes extracts close prices.
func Closes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Lows extracts low prices.
func Lows(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Highs extracts high prices.
func Highs(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}
