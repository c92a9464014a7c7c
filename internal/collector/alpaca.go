package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"

	"SetupRadar/internal/model"
)

// barsClient is the part of the Alpaca market data client used here.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca market data.
type AlpacaFetcher struct {
	client barsClient
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		now: time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchHistory(ctx context.Context, ticker string, lookback int) (model.RawFrame, error) {
	if err := ctx.Err(); err != nil {
		return model.RawFrame{}, err
	}
	end := f.now()
	// Roughly 252 trading days per 365 calendar days, plus holiday slack.
	days := lookback*365/252 + 10
	bars, err := f.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      end.AddDate(0, 0, -days),
		End:        end,
		Adjustment: marketdata.Split,
	})
	if err != nil {
		return model.RawFrame{}, fmt.Errorf("%w: alpaca bars: %v", ErrUnavailable, err)
	}
	if len(bars) == 0 {
		return model.RawFrame{}, fmt.Errorf("%w: alpaca has no bars for %s", ErrNotFound, ticker)
	}
	if lookback > 0 && len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}

	n := len(bars)
	frame := model.RawFrame{Symbol: ticker, Index: make([]time.Time, n)}
	open, high, low, cl, vol := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, b := range bars {
		frame.Index[i] = b.Timestamp
		open[i], high[i], low[i], cl[i] = b.Open, b.High, b.Low, b.Close
		vol[i] = float64(b.Volume)
	}
	frame.Columns = []model.Column{
		{Key: []string{"Open"}, Values: open},
		{Key: []string{"High"}, Values: high},
		{Key: []string{"Low"}, Values: low},
		{Key: []string{"Close"}, Values: cl},
		{Key: []string{"Volume"}, Values: vol},
	}
	zap.L().Debug("alpaca history fetched", zap.String("symbol", ticker), zap.Int("rows", n))
	return frame, nil
}
