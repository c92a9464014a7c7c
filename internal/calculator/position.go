package calculator

import "SetupRadar/internal/model"

const (
	markerCenter = 50.0
	markerMin    = 5.0
	markerMax    = 95.0
)

// RangePosition returns where price sits within [low, high] as a 0~100 percentage.
// A flat or missing range is unavailable.
func RangePosition(price float64, low, high model.Metric) model.Metric {
	if !low.Available || !high.Available || high.Value <= low.Value {
		return model.Unavailable
	}
	pos := (price - low.Value) / (high.Value - low.Value) * 100
	return model.Some(clamp(pos, 0, 100))
}

// FairValueDeviation is the percentage distance of price from fair value.
func FairValueDeviation(price float64, fair model.Metric) model.Metric {
	if !fair.Available || fair.Value <= 0 {
		return model.Unavailable
	}
	return model.Some((price - fair.Value) / fair.Value * 100)
}

// FairValueMarker maps a deviation onto a 5~95 display scale centred at 50.
// sensitivity is the number of scale points per percent of deviation.
func FairValueMarker(deviation model.Metric, sensitivity float64) model.Metric {
	if !deviation.Available {
		return model.Unavailable
	}
	return model.Some(clamp(markerCenter+deviation.Value*sensitivity, markerMin, markerMax))
}

// Position builds the full range report for a price.
func Position(price float64, low52, high52, fair model.Metric, sensitivity float64) model.RangeReport {
	dev := FairValueDeviation(price, fair)
	return model.RangeReport{
		RangePositionPct:      RangePosition(price, low52, high52),
		FairValueDeviationPct: dev,
		FairValueMarker:       FairValueMarker(dev, sensitivity),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
