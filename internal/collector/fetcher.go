package collector

import (
	"context"
	"errors"

	"SetupRadar/internal/model"
)

var (
	// ErrNotFound means the provider does not know the ticker.
	ErrNotFound = errors.New("ticker not found")
	// ErrUnavailable means the provider could not be reached or answered badly.
	ErrUnavailable = errors.New("market data unavailable")
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchHistory returns at most lookback daily rows, oldest first when the
	// provider orders them; callers normalize regardless.
	FetchHistory(ctx context.Context, ticker string, lookback int) (model.RawFrame, error)
	Name() string
}
