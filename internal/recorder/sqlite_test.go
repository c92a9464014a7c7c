package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SetupRadar/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "radar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_Defaults(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()

	_, err := r.LoadDefaults(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrNoDefaults)

	require.NoError(t, r.SaveDefaults(ctx, Defaults{Symbol: "aapl", Anchor: 170, Target: 200}))
	d, err := r.LoadDefaults(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, Defaults{Symbol: "AAPL", Anchor: 170, Target: 200}, d)

	require.NoError(t, r.SaveDefaults(ctx, Defaults{Symbol: "AAPL", Anchor: 175, Target: 210, FairValue: 190}))
	d, err = r.LoadDefaults(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, 175.0, d.Anchor)
	assert.Equal(t, 190.0, d.FairValue)
}

func TestSQLiteRecorder_RecordAnalysis(t *testing.T) {
	r := openTemp(t)

	now := time.Now()
	for i, v := range []model.Verdict{model.VerdictDangerous, model.VerdictAcceptable} {
		a := &model.Analysis{
			Setup:     model.TradeSetup{Symbol: "AAPL", Entry: 44.54, Anchor: 42, Target: 50},
			Portfolio: model.PortfolioConfig{Capital: 1000, RiskPct: 100},
			Risk:      model.RiskReport{RRRatio: 2.15, PositionSize: 393, Verdict: v},
			Range:     model.RangeReport{RangePositionPct: model.Some(40)},
			At:        now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, r.RecordAnalysis(a))
	}

	got, err := r.RecentVerdicts(context.Background(), "aapl", 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Verdict{model.VerdictAcceptable, model.VerdictDangerous}, got)
}

func TestSQLiteRecorder_RecordRadar(t *testing.T) {
	r := openTemp(t)
	snap := &model.IndicatorSnapshot{
		Symbol:    "AAPL",
		AsOf:      time.Now(),
		Bars:      80,
		LastClose: 179,
		SMA:       map[int]model.Metric{50: model.Some(154.5), 200: model.Unavailable},
	}
	require.NoError(t, r.RecordRadar(snap))

	var sma200 *float64
	require.NoError(t, r.db.QueryRow(`SELECT sma200 FROM radar_snapshots WHERE symbol = 'AAPL'`).Scan(&sma200))
	assert.Nil(t, sma200, "unavailable SMA stored as NULL")
}
