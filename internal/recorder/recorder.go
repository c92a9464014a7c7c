package recorder

import (
	"context"
	"errors"

	"SetupRadar/internal/model"
)

// ErrNoDefaults is returned when no defaults have been saved for a ticker.
var ErrNoDefaults = errors.New("no saved defaults")

// Defaults are the per-ticker levels a user chose to keep between sessions.
// They only seed a radar and never override later edits.
type Defaults struct {
	Symbol    string
	Anchor    float64
	Target    float64
	FairValue float64 // 0 when unset
}

// DefaultsStore reads and writes per-ticker defaults.
type DefaultsStore interface {
	LoadDefaults(ctx context.Context, symbol string) (Defaults, error)
	SaveDefaults(ctx context.Context, d Defaults) error
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRadar(snap *model.IndicatorSnapshot) error
	RecordAnalysis(a *model.Analysis) error
	Close() error
}

// Store is what a SQLite-backed deployment provides.
type Store interface {
	Recorder
	DefaultsStore
}
