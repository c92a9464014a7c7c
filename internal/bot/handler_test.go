package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"SetupRadar/internal/collector"
	"SetupRadar/internal/directory"
	"SetupRadar/internal/model"
	"SetupRadar/internal/session"
	"SetupRadar/internal/strategy"
)

type stubRadar struct{}

func (stubRadar) Radar(_ context.Context, ticker string) (*model.IndicatorSnapshot, error) {
	if ticker == "GONE" {
		return nil, collector.ErrUnavailable
	}
	return &model.IndicatorSnapshot{
		Symbol: ticker, LastClose: 44.54, Bars: 300,
		Support: model.Some(42), Resistance: model.Some(46),
		Low52w: model.Some(40), High52w: model.Some(55),
	}, nil
}

type stubProfile struct{}

func (stubProfile) Get() model.PortfolioConfig { return model.PortfolioConfig{Capital: 1000, RiskPct: 100} }

func newHandler() *Handler {
	deps := &session.Deps{
		Directory:            directory.New([]directory.Entry{{Name: "Sefton Resources", Ticker: "SEF"}}),
		Radar:                stubRadar{},
		Thresholds:           strategy.DefaultThresholds(),
		FairValueSensitivity: 2,
	}
	return &Handler{Sessions: session.NewManager(deps, stubProfile{})}
}

func TestHandle_RadarSetAnalyze(t *testing.T) {
	h := newHandler()
	ctx := context.Background()

	reply := h.Handle(ctx, "1", "/radar Sefton Resources")
	assert.Contains(t, reply, "Radar SEF")
	assert.Contains(t, reply, "anchor 42.00")

	reply = h.Handle(ctx, "1", "/set target 50")
	assert.Contains(t, reply, "✅")
	assert.Contains(t, reply, "Target: 50.00")

	reply = h.Handle(ctx, "1", "/analyze")
	assert.Contains(t, reply, "393 shares")
	assert.Contains(t, reply, "1:2.15")

	assert.Contains(t, h.Handle(ctx, "1", "/show"), "393 shares")
	h.Handle(ctx, "1", "/set capital 2000")
	assert.Contains(t, h.Handle(ctx, "1", "/show"), "Capital: 2000.00", "stale analysis is not shown after an edit")
}

func TestHandle_ChatsAreIndependent(t *testing.T) {
	h := newHandler()
	ctx := context.Background()
	h.Handle(ctx, "1", "/radar SEF")
	h.Handle(ctx, "1", "/set entry 45")

	assert.Contains(t, h.Handle(ctx, "2", "/show"), "Entry: 0.00")
	assert.Equal(t, 2, h.Sessions.Len())
}

func TestHandle_Errors(t *testing.T) {
	h := newHandler()
	ctx := context.Background()

	assert.Contains(t, h.Handle(ctx, "1", "/radar"), "Usage")
	assert.Contains(t, h.Handle(ctx, "1", "/radar no such company"), "unknown symbol")
	assert.Contains(t, h.Handle(ctx, "1", "/radar GONE"), "unavailable")
	assert.Contains(t, h.Handle(ctx, "1", "/set entry abc"), "not a number")
	assert.Contains(t, h.Handle(ctx, "1", "/set volume 3"), "Commands:")
	assert.Contains(t, h.Handle(ctx, "1", "/set risk_pct 150"), "risk_pct")

	h.Handle(ctx, "1", "/set entry 42")
	h.Handle(ctx, "1", "/set anchor 42")
	assert.Contains(t, h.Handle(ctx, "1", "/analyze"), "must be above anchor")
	assert.Contains(t, h.Handle(ctx, "1", "/save"), "no symbol")
}

func TestHandle_NonFiniteValuesRejected(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/set capital Inf", "must be finite"},
		{"/set risk_pct NaN", "must be finite"},
		{"/set entry +Inf", "finite number"},
		{"/set anchor -Inf", "finite number"},
		{"/set target NaN", "finite number"},
		{"/set fair_value Infinity", "finite number"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			h := newHandler()
			ctx := context.Background()
			h.Handle(ctx, "1", "/radar SEF")
			h.Handle(ctx, "1", "/set target 50")

			reply := h.Handle(ctx, "1", tt.text)
			assert.Contains(t, reply, "❌")
			assert.Contains(t, reply, tt.want)

			var analyzed string
			assert.NotPanics(t, func() { analyzed = h.Handle(ctx, "1", "/analyze") })
			assert.Contains(t, analyzed, "393 shares", "setup is unchanged")
		})
	}
}

func TestHandle_MiscCommands(t *testing.T) {
	h := newHandler()
	ctx := context.Background()

	assert.Equal(t, "", h.Handle(ctx, "1", "   "))
	assert.Contains(t, h.Handle(ctx, "1", "/help"), "/radar")
	assert.Contains(t, h.Handle(ctx, "1", "/scan"), "not configured")

	h.Scan = func(context.Context) string { return "scanned" }
	assert.Equal(t, "scanned", h.Handle(ctx, "1", "/scan@SetupRadarBot"))

	h.Handle(ctx, "1", "/radar SEF")
	assert.Contains(t, h.Handle(ctx, "1", "/reset"), "cleared")
	assert.Contains(t, h.Handle(ctx, "1", "/show"), "(empty)")
}
