package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SetupRadar/internal/model"
)

func seqBars(n int) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), High: c + 1, Low: c - 1, Close: c}
	}
	return bars
}

func TestSMA_EightyBars(t *testing.T) {
	closes := Closes(seqBars(80))

	sma50 := SMA(closes, 50)
	require.True(t, sma50.Available)
	// mean of 130..179
	assert.InDelta(t, 154.5, sma50.Value, 1e-9)

	assert.False(t, SMA(closes, 200).Available, "SMA200 must not average 80 bars")
	assert.False(t, SMA(closes, 100).Available)
}

func TestSMA_EdgeWindows(t *testing.T) {
	closes := []float64{1, 2, 3}
	assert.Equal(t, model.Some(2), SMA(closes, 3))
	assert.Equal(t, model.Some(3), SMA(closes, 1))
	assert.False(t, SMA(closes, 0).Available)
	assert.False(t, SMA(nil, 5).Available)
}

func TestSupportResistance(t *testing.T) {
	bars := seqBars(30)
	s := Support(Lows(bars), 20)
	r := Resistance(Highs(bars), 20)
	require.True(t, s.Available)
	require.True(t, r.Available)
	assert.InDelta(t, 109, s.Value, 1e-9) // low of bar 10
	assert.InDelta(t, 130, r.Value, 1e-9) // high of bar 29

	assert.False(t, Support(Lows(bars), 31).Available)
	assert.False(t, Resistance(Highs(bars), 0).Available)
	assert.Equal(t, model.Some(128), Support(Lows(bars), 1))
}

func TestCalculate52WeekRange(t *testing.T) {
	high, low := Calculate52WeekRange(seqBars(300), 252)
	assert.InDelta(t, 400, high.Value, 1e-9)
	assert.InDelta(t, 147, low.Value, 1e-9) // bar 48 is the first of the last 252

	high, low = Calculate52WeekRange(seqBars(252), 252)
	assert.Equal(t, model.Some(352), high)
	assert.Equal(t, model.Some(99), low)

	high, low = Calculate52WeekRange(seqBars(251), 252)
	assert.False(t, high.Available, "one bar short of the lookback")
	assert.False(t, low.Available)

	high, low = Calculate52WeekRange(seqBars(10), 252)
	assert.False(t, high.Available)
	assert.False(t, low.Available)

	high, low = Calculate52WeekRange(nil, 252)
	assert.False(t, high.Available)
	assert.False(t, low.Available)
}

func TestHistoryRange(t *testing.T) {
	high, low := HistoryRange(seqBars(10))
	assert.Equal(t, model.Some(110), high)
	assert.Equal(t, model.Some(99), low)

	high, low = HistoryRange(seqBars(1))
	assert.Equal(t, model.Some(101), high)
	assert.Equal(t, model.Some(99), low)

	high, low = HistoryRange(nil)
	assert.False(t, high.Available)
	assert.False(t, low.Available)
}

func TestCalculateRSI(t *testing.T) {
	rising := Closes(seqBars(30))
	assert.Equal(t, model.Some(100), CalculateRSI(rising, 14))
	assert.False(t, CalculateRSI(rising[:14], 14).Available)

	zigzag := make([]float64, 40)
	for i := range zigzag {
		zigzag[i] = 100
		if i%2 == 1 {
			zigzag[i] = 101
		}
	}
	rsi := CalculateRSI(zigzag, 14)
	require.True(t, rsi.Available)
	assert.InDelta(t, 50, rsi.Value, 5)
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		low   model.Metric
		high  model.Metric
		want  model.Metric
	}{
		{"middle", 15, model.Some(10), model.Some(20), model.Some(50)},
		{"below range clamps", 5, model.Some(10), model.Some(20), model.Some(0)},
		{"above range clamps", 25, model.Some(10), model.Some(20), model.Some(100)},
		{"flat range", 10, model.Some(10), model.Some(10), model.Unavailable},
		{"missing range", 10, model.Unavailable, model.Some(10), model.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RangePosition(tt.price, tt.low, tt.high)
			assert.Equal(t, tt.want.Available, got.Available)
			if got.Available {
				assert.InDelta(t, tt.want.Value, got.Value, 1e-9)
				assert.GreaterOrEqual(t, got.Value, 0.0)
				assert.LessOrEqual(t, got.Value, 100.0)
			}
		})
	}
}

func TestFairValue(t *testing.T) {
	dev := FairValueDeviation(110, model.Some(100))
	require.True(t, dev.Available)
	assert.InDelta(t, 10, dev.Value, 1e-9)

	assert.Equal(t, model.Some(70), FairValueMarker(dev, 2))
	assert.Equal(t, model.Some(95), FairValueMarker(model.Some(80), 2))
	assert.Equal(t, model.Some(5), FairValueMarker(model.Some(-80), 2))

	assert.False(t, FairValueDeviation(110, model.Some(0)).Available)
	assert.False(t, FairValueDeviation(110, model.Unavailable).Available)
	assert.False(t, FairValueMarker(model.Unavailable, 2).Available)
}

func TestNormalize_MultiLevelColumns(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 14, 30, 0, 0, time.UTC) }
	nan := math.NaN()
	frame := model.RawFrame{
		Symbol: "AAPL",
		Index:  []time.Time{day(3), day(1), day(2), day(2), day(4)},
		Columns: []model.Column{
			{Key: []string{"Close", "MSFT"}, Values: []float64{1, 1, 1, 1, 1}},
			{Key: []string{"Close", "AAPL"}, Values: []float64{12, 10, 11, 11.5, nan}},
			{Key: []string{"High", "AAPL"}, Values: []float64{13, 11, 12, 12.5, 14}},
			{Key: []string{"Low", "AAPL"}, Values: []float64{11, 9, 10, 10.5, 12}},
			{Key: []string{"Adj Close", "AAPL"}, Values: []float64{99, 99, 99, 99, 99}},
		},
	}

	bars, err := Normalize(frame)
	require.NoError(t, err)
	require.Len(t, bars, 3, "NaN close dropped, duplicate day collapsed")
	assert.Equal(t, []float64{10, 11.5, 12}, Closes(bars))
	assert.Equal(t, []float64{9, 10.5, 11}, Lows(bars))
	assert.Equal(t, []float64{11, 12.5, 13}, Highs(bars))
	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i-1].Time.Before(bars[i].Time))
	}
}

func TestNormalize_FlatColumns(t *testing.T) {
	frame := model.RawFrame{
		Symbol: "X",
		Index:  []time.Time{time.Unix(0, 0), time.Unix(86400, 0)},
		Columns: []model.Column{
			{Key: []string{"close"}, Values: []float64{5, 6}},
			{Key: []string{"high"}, Values: []float64{5.5, 6.5}},
			{Key: []string{"low"}, Values: []float64{4.5, 0}},
		},
	}
	bars, err := Normalize(frame)
	require.NoError(t, err)
	require.Len(t, bars, 1, "zero low is a missing sentinel")
	assert.Equal(t, 5.0, bars[0].Close)
}

func TestNormalize_Unavailable(t *testing.T) {
	_, err := Normalize(model.RawFrame{Symbol: "X"})
	assert.ErrorIs(t, err, model.ErrDataUnavailable)

	_, err = Normalize(model.RawFrame{
		Symbol:  "X",
		Index:   []time.Time{time.Now()},
		Columns: []model.Column{{Key: []string{"Close"}, Values: []float64{1}}},
	})
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestBuildSnapshot(t *testing.T) {
	snap, err := BuildSnapshot("ABC", seqBars(80), DefaultIndicatorConfig())
	require.NoError(t, err)
	assert.Equal(t, 80, snap.Bars)
	assert.Equal(t, 179.0, snap.LastClose)
	assert.True(t, snap.SMA[50].Available)
	assert.False(t, snap.SMA[100].Available)
	assert.False(t, snap.SMA[200].Available)
	assert.InDelta(t, 159, snap.Support.Value, 1e-9)
	assert.InDelta(t, 180, snap.Resistance.Value, 1e-9)
	assert.False(t, snap.Low52w.Available, "80 bars do not cover the 252-day range")
	assert.False(t, snap.High52w.Available)
	assert.Equal(t, model.Some(99), snap.HistoryLow)
	assert.Equal(t, model.Some(180), snap.HistoryHigh)

	_, err = BuildSnapshot("ABC", nil, DefaultIndicatorConfig())
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
}
