package strategy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SetupRadar/internal/model"
)

func TestEvaluate_WholeCapitalAtRisk(t *testing.T) {
	setup := model.TradeSetup{Entry: 44.54, Anchor: 42.0, Target: 50.0}
	rep, err := Evaluate(setup, model.PortfolioConfig{Capital: 1000, RiskPct: 100}, DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 2.54, rep.RiskDistance, 1e-9)
	assert.InDelta(t, 5.46, rep.RewardDistance, 1e-9)
	assert.InDelta(t, 5.70, rep.RiskPct, 0.005)
	assert.InDelta(t, 12.26, rep.RewardPct, 0.005)
	assert.InDelta(t, 2.15, rep.RRRatio, 0.005)
	assert.Equal(t, model.VerdictAcceptable, rep.Verdict)
	assert.Equal(t, 1000.0, rep.RiskCash)
	assert.Equal(t, int64(393), rep.PositionSize)
}

func TestEvaluate_OnePercentRisk(t *testing.T) {
	setup := model.TradeSetup{Entry: 33.90, Anchor: 31.72, Target: 39.36}
	rep, err := Evaluate(setup, model.PortfolioConfig{Capital: 100000, RiskPct: 1.0}, DefaultThresholds())
	require.NoError(t, err)

	assert.InDelta(t, 2.18, rep.RiskDistance, 1e-9)
	assert.InDelta(t, 5.46, rep.RewardDistance, 1e-9)
	assert.InDelta(t, 2.50, rep.RRRatio, 0.01)
	assert.Equal(t, model.VerdictAcceptable, rep.Verdict)
	assert.Equal(t, 1000.0, rep.RiskCash)
	assert.Equal(t, int64(458), rep.PositionSize)
}

func TestEvaluate_InvalidSetup(t *testing.T) {
	tests := []struct {
		name  string
		setup model.TradeSetup
	}{
		{"entry equals anchor", model.TradeSetup{Entry: 10, Anchor: 10, Target: 12}},
		{"entry below anchor", model.TradeSetup{Entry: 9, Anchor: 10, Target: 12}},
		{"zero entry", model.TradeSetup{Entry: 0, Anchor: -1, Target: 12}},
		{"negative entry", model.TradeSetup{Entry: -5, Anchor: -6, Target: 12}},
		{"NaN entry", model.TradeSetup{Entry: math.NaN(), Anchor: 9, Target: 12}},
		{"infinite entry", model.TradeSetup{Entry: math.Inf(1), Anchor: 9, Target: 12}},
		{"infinite anchor below", model.TradeSetup{Entry: 10, Anchor: math.Inf(-1), Target: 12}},
		{"NaN target", model.TradeSetup{Entry: 10, Anchor: 9, Target: math.NaN()}},
		{"infinite fair value", model.TradeSetup{Entry: 10, Anchor: 9, Target: 12, FairValue: model.Some(math.Inf(1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.setup, model.PortfolioConfig{Capital: 1000, RiskPct: 1}, DefaultThresholds())
			assert.ErrorIs(t, err, model.ErrInvalidSetup)
		})
	}
}

func TestEvaluate_ConfigurationError(t *testing.T) {
	setup := model.TradeSetup{Entry: 10, Anchor: 9, Target: 12}
	for _, p := range []model.PortfolioConfig{
		{Capital: 0, RiskPct: 1},
		{Capital: -100, RiskPct: 1},
		{Capital: 1000, RiskPct: 0},
		{Capital: 1000, RiskPct: 101},
		{Capital: math.Inf(1), RiskPct: 1},
		{Capital: math.NaN(), RiskPct: 1},
		{Capital: 1000, RiskPct: math.NaN()},
	} {
		_, err := Evaluate(setup, p, DefaultThresholds())
		assert.ErrorIs(t, err, model.ErrConfiguration, "%+v", p)
	}
}

func TestEvaluate_NegativeReward(t *testing.T) {
	setup := model.TradeSetup{Entry: 10, Anchor: 9, Target: 8}
	rep, err := Evaluate(setup, model.PortfolioConfig{Capital: 1000, RiskPct: 1}, DefaultThresholds())
	require.NoError(t, err)
	assert.InDelta(t, -2, rep.RewardDistance, 1e-9)
	assert.LessOrEqual(t, rep.RRRatio, 0.0)
	assert.Equal(t, model.VerdictDangerous, rep.Verdict)
	assert.Equal(t, int64(10), rep.PositionSize)
}

func TestEvaluate_RRIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		anchor := 1 + rng.Float64()*100
		entry := anchor + 0.01 + rng.Float64()*50
		target := rng.Float64() * 300
		rep, err := Evaluate(
			model.TradeSetup{Entry: entry, Anchor: anchor, Target: target},
			model.PortfolioConfig{Capital: 1 + rng.Float64()*1e6, RiskPct: 0.1 + rng.Float64()*99.9},
			DefaultThresholds(),
		)
		require.NoError(t, err)
		assert.InDelta(t, (target-entry)/(entry-anchor), rep.RRRatio, 1e-9)
		assert.GreaterOrEqual(t, rep.PositionSize, int64(0))
	}
}

func TestMapVerdict_AllBoundaries(t *testing.T) {
	three := DefaultThresholds()
	two := Thresholds{Acceptable: 2.0, Marginal: 1.0}
	tests := []struct {
		rr   float64
		th   Thresholds
		want model.Verdict
	}{
		{3.5, three, model.VerdictExcellent},
		{3.0, three, model.VerdictExcellent},
		{2.99, three, model.VerdictAcceptable},
		{3.5, two, model.VerdictAcceptable},
		{2.0, two, model.VerdictAcceptable},
		{1.99, two, model.VerdictMarginal},
		{1.0, three, model.VerdictMarginal},
		{0.99, three, model.VerdictDangerous},
		{0, three, model.VerdictDangerous},
		{-1, two, model.VerdictDangerous},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapVerdict(tt.rr, tt.th), "rr %.2f", tt.rr)
	}
}

func TestPositionSize_ZeroRisk(t *testing.T) {
	cash, size := PositionSize(model.PortfolioConfig{Capital: 1000, RiskPct: 2}, 0)
	assert.Equal(t, 20.0, cash)
	assert.Equal(t, int64(0), size)
	assert.Equal(t, 0.0, RRRatio(0, 5))
}

func TestEvaluate_TinyRisk(t *testing.T) {
	tests := []struct {
		name      string
		setup     model.TradeSetup
		portfolio model.PortfolioConfig
		want      int64
	}{
		{"risk below rounding precision", model.TradeSetup{Entry: 10, Anchor: 10 - 1e-9, Target: 12},
			model.PortfolioConfig{Capital: 1000, RiskPct: 1}, 0},
		{"share count beyond int64", model.TradeSetup{Entry: 1, Anchor: 1 - 1e-15, Target: 2},
			model.PortfolioConfig{Capital: 1e15, RiskPct: 100}, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rep model.RiskReport
			var err error
			require.NotPanics(t, func() { rep, err = Evaluate(tt.setup, tt.portfolio, DefaultThresholds()) })
			require.NoError(t, err)
			assert.Greater(t, rep.PositionSize, int64(0))
			if tt.want != 0 {
				assert.Equal(t, tt.want, rep.PositionSize)
			}
		})
	}
}

func TestPositionSize_NonFinite(t *testing.T) {
	_, size := PositionSize(model.PortfolioConfig{Capital: 1000, RiskPct: 1}, math.Inf(1))
	assert.Equal(t, int64(0), size)
	cash, size := PositionSize(model.PortfolioConfig{Capital: math.NaN(), RiskPct: 1}, 1)
	assert.Equal(t, 0.0, cash)
	assert.Equal(t, int64(0), size)
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.NoError(t, Thresholds{Acceptable: 2, Marginal: 1}.Validate())

	for _, th := range []Thresholds{
		{Excellent: 3, Acceptable: 1, Marginal: 2},
		{Excellent: 1, Acceptable: 2, Marginal: 1},
		{Excellent: 3, Acceptable: -2, Marginal: -3},
		{Excellent: math.NaN(), Acceptable: 2, Marginal: 1},
		{Excellent: 3, Acceptable: math.Inf(1), Marginal: 1},
	} {
		assert.ErrorIs(t, th.Validate(), model.ErrConfiguration, "%+v", th)
	}
}
