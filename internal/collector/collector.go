package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SetupRadar/internal/calculator"
	"SetupRadar/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
	Calls int

	mu sync.Mutex
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, ticker string, lookback int) (model.RawFrame, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Err != nil {
		return model.RawFrame{}, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, lookback)
	}
	return FrameFromBars(ticker, bars), nil
}

// FrameFromBars wraps flat bars in a single-level frame.
func FrameFromBars(symbol string, bars []model.OHLCV) model.RawFrame {
	n := len(bars)
	frame := model.RawFrame{Symbol: symbol, Index: make([]time.Time, n)}
	open, high, low, cl, vol := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, b := range bars {
		frame.Index[i] = b.Time
		open[i], high[i], low[i], cl[i], vol[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}
	frame.Columns = []model.Column{
		{Key: []string{"Open"}, Values: open},
		{Key: []string{"High"}, Values: high},
		{Key: []string{"Low"}, Values: low},
		{Key: []string{"Close"}, Values: cl},
		{Key: []string{"Volume"}, Values: vol},
	}
	return frame
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates history fetching, normalization and indicator computation.
type Collector struct {
	Fetcher     Fetcher
	Indicators  calculator.IndicatorConfig
	HistoryBars int
}

// NewCollector creates a new Collector. historyBars <= 0 picks enough bars for
// the longest configured window.
func NewCollector(fetcher Fetcher, cfg calculator.IndicatorConfig, historyBars int) *Collector {
	if historyBars <= 0 {
		historyBars = cfg.RangeLookback
		for _, w := range cfg.SMAWindows {
			if w > historyBars {
				historyBars = w
			}
		}
		historyBars += 20
	}
	return &Collector{Fetcher: fetcher, Indicators: cfg, HistoryBars: historyBars}
}

// Radar fetches history for ticker and computes its indicator snapshot.
func (c *Collector) Radar(ctx context.Context, ticker string) (*model.IndicatorSnapshot, error) {
	frame, err := c.Fetcher.FetchHistory(ctx, ticker, c.HistoryBars)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", ticker, err)
	}
	bars, err := calculator.Normalize(frame)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", ticker, err)
	}
	snap, err := calculator.BuildSnapshot(ticker, bars, c.Indicators)
	if err != nil {
		return nil, err
	}

	for _, w := range c.Indicators.SMAWindows {
		if !snap.SMA[w].Available {
			zap.L().Warn("SMA unavailable, not enough history",
				zap.String("symbol", ticker), zap.Int("window", w), zap.Int("bars", len(bars)))
		}
	}
	zap.L().Info("radar snapshot built",
		zap.String("symbol", ticker),
		zap.String("source", c.Fetcher.Name()),
		zap.Int("bars", snap.Bars),
		zap.Float64("last_close", snap.LastClose))
	return snap, nil
}
