package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"SetupRadar/internal/model"
)

// SQLiteRecorder persists radar snapshots, analyses and per-ticker defaults.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.L().Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS radar_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			as_of          INTEGER,
			bars           INTEGER,
			last_close     REAL,
			sma50          REAL,
			sma100         REAL,
			sma200         REAL,
			support        REAL,
			resistance     REAL,
			high_52w       REAL,
			low_52w        REAL,
			rsi14          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_radar_symbol_ts ON radar_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			symbol             TEXT,
			entry              REAL,
			anchor             REAL,
			target             REAL,
			fair_value         REAL,
			capital            REAL,
			risk_pct_trade     REAL,
			risk_distance      REAL,
			reward_distance    REAL,
			rr_ratio           REAL,
			risk_pct           REAL,
			reward_pct         REAL,
			risk_cash          REAL,
			position_size      INTEGER,
			verdict            TEXT,
			range_position_pct REAL,
			fair_value_dev_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS setup_defaults (
			symbol     TEXT PRIMARY KEY,
			anchor     REAL,
			target     REAL,
			fair_value REAL,
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable stores unavailable metrics as NULL.
func nullable(m model.Metric) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Available}
}

func (r *SQLiteRecorder) RecordRadar(snap *model.IndicatorSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO radar_snapshots
		(timestamp, symbol, as_of, bars, last_close, sma50, sma100, sma200,
		 support, resistance, high_52w, low_52w, rsi14)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.Symbol, snap.AsOf.Unix(), snap.Bars, snap.LastClose,
		nullable(snap.SMA[50]), nullable(snap.SMA[100]), nullable(snap.SMA[200]),
		nullable(snap.Support), nullable(snap.Resistance),
		nullable(snap.High52w), nullable(snap.Low52w), nullable(snap.RSI14),
	)
	return err
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, symbol, entry, anchor, target, fair_value, capital, risk_pct_trade,
		 risk_distance, reward_distance, rr_ratio, risk_pct, reward_pct, risk_cash,
		 position_size, verdict, range_position_pct, fair_value_dev_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.At.Unix(), a.Setup.Symbol, a.Setup.Entry, a.Setup.Anchor, a.Setup.Target,
		nullable(a.Setup.FairValue), a.Portfolio.Capital, a.Portfolio.RiskPct,
		a.Risk.RiskDistance, a.Risk.RewardDistance, a.Risk.RRRatio,
		a.Risk.RiskPct, a.Risk.RewardPct, a.Risk.RiskCash,
		a.Risk.PositionSize, string(a.Risk.Verdict),
		nullable(a.Range.RangePositionPct), nullable(a.Range.FairValueDeviationPct),
	)
	return err
}

// RecentVerdicts returns the latest verdicts recorded for symbol, newest first.
func (r *SQLiteRecorder) RecentVerdicts(ctx context.Context, symbol string, limit int) ([]model.Verdict, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT verdict FROM analyses WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Verdict
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, model.Verdict(v))
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) LoadDefaults(ctx context.Context, symbol string) (Defaults, error) {
	d := Defaults{Symbol: strings.ToUpper(symbol)}
	var fair sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT anchor, target, fair_value FROM setup_defaults WHERE symbol = ?`, d.Symbol,
	).Scan(&d.Anchor, &d.Target, &fair)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults{}, ErrNoDefaults
	}
	if err != nil {
		return Defaults{}, fmt.Errorf("load defaults %s: %w", d.Symbol, err)
	}
	d.FairValue = fair.Float64
	return d, nil
}

func (r *SQLiteRecorder) SaveDefaults(ctx context.Context, d Defaults) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fair := sql.NullFloat64{Float64: d.FairValue, Valid: d.FairValue > 0}
	_, err := r.db.ExecContext(ctx, `INSERT INTO setup_defaults (symbol, anchor, target, fair_value, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			anchor = excluded.anchor, target = excluded.target,
			fair_value = excluded.fair_value, updated_at = excluded.updated_at`,
		strings.ToUpper(d.Symbol), d.Anchor, d.Target, fair, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save defaults %s: %w", d.Symbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	zap.L().Info("closing sqlite recorder")
	return r.db.Close()
}
