// Package session holds the per-user Radar -> Analyze workflow. Every Session
// owns its setup and snapshot; nothing here is process-global.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"SetupRadar/internal/calculator"
	"SetupRadar/internal/model"
	"SetupRadar/internal/recorder"
	"SetupRadar/internal/strategy"
)

// State is a session's position in the workflow.
type State int

const (
	StateEmpty State = iota
	StateRadared
	StateAnalyzed
)

func (s State) String() string {
	switch s {
	case StateRadared:
		return "radared"
	case StateAnalyzed:
		return "analyzed"
	default:
		return "empty"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Resolver maps a display name to a ticker.
type Resolver interface {
	Resolve(display string) (string, error)
}

// RadarSource fetches history and builds an indicator snapshot.
type RadarSource interface {
	Radar(ctx context.Context, ticker string) (*model.IndicatorSnapshot, error)
}

// Deps are the read-only collaborators shared by all sessions.
type Deps struct {
	Directory            Resolver
	Radar                RadarSource
	Defaults             recorder.DefaultsStore
	Recorder             recorder.Recorder
	Thresholds           strategy.Thresholds
	FairValueSensitivity float64
}

// View is a copy of a session's state for display.
type View struct {
	ID        string                   `json:"id"`
	State     State                    `json:"state"`
	Setup     model.TradeSetup         `json:"setup"`
	Portfolio model.PortfolioConfig    `json:"portfolio"`
	Snapshot  *model.IndicatorSnapshot `json:"snapshot,omitempty"`
	Last      *model.Analysis          `json:"last_analysis,omitempty"`
}

// Session is one user's trade setup workspace. Methods are safe to call from
// several goroutines but are serialized.
type Session struct {
	mu        sync.Mutex
	id        string
	deps      *Deps
	state     State
	setup     model.TradeSetup
	portfolio model.PortfolioConfig
	snapshot  *model.IndicatorSnapshot
	last      *model.Analysis
}

// New creates an empty session starting from the given portfolio configuration.
func New(id string, deps *Deps, portfolio model.PortfolioConfig) *Session {
	return &Session{id: id, deps: deps, portfolio: portfolio}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Setup() model.TradeSetup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setup
}

func (s *Session) Portfolio() model.PortfolioConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolio
}

// Snapshot returns the indicators of the last successful radar, or nil.
func (s *Session) Snapshot() *model.IndicatorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// View returns a copy of the whole session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{ID: s.id, State: s.state, Setup: s.setup, Portfolio: s.portfolio, Snapshot: s.snapshot, Last: s.last}
}

// Radar resolves display, fetches its history and replaces the setup with
// defaults derived from the indicators. On failure nothing changes.
func (s *Session) Radar(ctx context.Context, display string) (*model.IndicatorSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deps.Radar == nil {
		return nil, fmt.Errorf("%w: no market data source configured", model.ErrDataUnavailable)
	}
	ticker := display
	if s.deps.Directory != nil {
		t, err := s.deps.Directory.Resolve(display)
		if err != nil {
			return nil, err
		}
		ticker = t
	}

	snap, err := s.deps.Radar.Radar(ctx, ticker)
	if err != nil {
		zap.L().Warn("radar failed", zap.String("session", s.id), zap.String("symbol", ticker), zap.Error(err))
		return nil, err
	}

	setup := defaultSetup(snap)
	s.applySavedDefaults(ctx, &setup)

	s.snapshot = snap
	s.setup = setup
	s.last = nil
	s.state = StateRadared

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordRadar(snap); err != nil {
			zap.L().Error("record radar", zap.String("symbol", ticker), zap.Error(err))
		}
	}
	return snap, nil
}

// defaultSetup is entry at the last close, anchor at short-term support and target
// at short-term resistance. Missing bands fall back to the extremes of the fetched history.
func defaultSetup(snap *model.IndicatorSnapshot) model.TradeSetup {
	return model.TradeSetup{
		Symbol: snap.Symbol,
		Entry:  snap.LastClose,
		Anchor: snap.Support.Or(snap.HistoryLow.Or(0)),
		Target: snap.Resistance.Or(snap.HistoryHigh.Or(0)),
	}
}

func (s *Session) applySavedDefaults(ctx context.Context, setup *model.TradeSetup) {
	if s.deps.Defaults == nil {
		return
	}
	d, err := s.deps.Defaults.LoadDefaults(ctx, setup.Symbol)
	if err != nil {
		if !errors.Is(err, recorder.ErrNoDefaults) {
			zap.L().Warn("load saved defaults", zap.String("symbol", setup.Symbol), zap.Error(err))
		}
		return
	}
	if d.Anchor > 0 && d.Anchor < setup.Entry {
		setup.Anchor = d.Anchor
	}
	if d.Target > 0 {
		setup.Target = d.Target
	}
	if d.FairValue > 0 {
		setup.FairValue = model.Some(d.FairValue)
	}
}

// Edit overrides one setup or portfolio field. It never triggers a recomputation.
func (s *Session) Edit(field string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	finite := !math.IsNaN(value) && !math.IsInf(value, 0)
	switch key := strings.ToLower(strings.TrimSpace(field)); key {
	case model.FieldEntry, "price", model.FieldAnchor, "stop", "sl", model.FieldTarget, model.FieldFairValue, "fair":
		if !finite {
			return fmt.Errorf("%w: %s must be a finite number, got %v", model.ErrInvalidSetup, key, value)
		}
		return s.editSetup(key, value)
	case model.FieldCapital:
		p := s.portfolio
		p.Capital = value
		if err := p.Validate(); err != nil {
			return err
		}
		s.portfolio = p
	case model.FieldRiskPct, "risk":
		p := s.portfolio
		p.RiskPct = value
		if err := p.Validate(); err != nil {
			return err
		}
		s.portfolio = p
	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownField, field)
	}
	return nil
}

func (s *Session) editSetup(key string, value float64) error {
	switch key {
	case model.FieldEntry, "price":
		if value <= 0 {
			return fmt.Errorf("%w: entry %.4f must be positive", model.ErrInvalidSetup, value)
		}
		s.setup.Entry = value
	case model.FieldAnchor, "stop", "sl":
		s.setup.Anchor = value
	case model.FieldTarget:
		s.setup.Target = value
	case model.FieldFairValue, "fair":
		if value <= 0 {
			s.setup.FairValue = model.Unavailable
		} else {
			s.setup.FairValue = model.Some(value)
		}
	}
	return nil
}

// SetSymbol names a manually entered setup.
func (s *Session) SetSymbol(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setup.Symbol = strings.ToUpper(strings.TrimSpace(symbol))
}

// Analyze evaluates the setup exactly as it stands now.
func (s *Session) Analyze() (model.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	risk, err := strategy.Evaluate(s.setup, s.portfolio, s.deps.Thresholds)
	if err != nil {
		return model.Analysis{}, err
	}

	// A snapshot of another symbol, left over from an earlier radar, is not reported.
	var snap *model.IndicatorSnapshot
	low52, high52 := model.Unavailable, model.Unavailable
	if s.snapshot != nil && s.snapshot.Symbol == s.setup.Symbol {
		snap = s.snapshot
		low52, high52 = snap.Low52w, snap.High52w
	}

	a := model.Analysis{
		Setup:     s.setup,
		Portfolio: s.portfolio,
		Snapshot:  snap,
		Risk:      risk,
		Range:     calculator.Position(s.setup.Entry, low52, high52, s.setup.FairValue, s.deps.FairValueSensitivity),
		At:        time.Now(),
	}
	s.last = &a
	s.state = StateAnalyzed

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordAnalysis(&a); err != nil {
			zap.L().Error("record analysis", zap.String("symbol", a.Setup.Symbol), zap.Error(err))
		}
	}
	return a, nil
}

// SaveDefaults persists the current anchor, target and fair value for the symbol.
func (s *Session) SaveDefaults(ctx context.Context) error {
	s.mu.Lock()
	setup := s.setup
	s.mu.Unlock()

	if setup.Symbol == "" {
		return fmt.Errorf("%w: no symbol to save defaults for", model.ErrInvalidSetup)
	}
	if s.deps.Defaults == nil {
		return errors.New("no defaults store configured")
	}
	return s.deps.Defaults.SaveDefaults(ctx, recorder.Defaults{
		Symbol:    setup.Symbol,
		Anchor:    setup.Anchor,
		Target:    setup.Target,
		FairValue: setup.FairValue.Or(0),
	})
}

// Reset returns the session to Empty, keeping its portfolio configuration.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateEmpty
	s.setup = model.TradeSetup{}
	s.snapshot = nil
	s.last = nil
}
