package recorder

import (
	"context"

	"SetupRadar/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRadar(_ *model.IndicatorSnapshot) error { return nil }
func (n *NoopRecorder) RecordAnalysis(_ *model.Analysis) error     { return nil }
func (n *NoopRecorder) Close() error                               { return nil }

func (n *NoopRecorder) LoadDefaults(_ context.Context, _ string) (Defaults, error) {
	return Defaults{}, ErrNoDefaults
}
func (n *NoopRecorder) SaveDefaults(_ context.Context, _ Defaults) error { return nil }
