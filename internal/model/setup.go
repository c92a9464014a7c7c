package model

import (
	"fmt"
	"math"
)

// TradeSetup is the set of price levels for a long trade.
type TradeSetup struct {
	Symbol    string  `json:"symbol"`
	Entry     float64 `json:"entry"`
	Anchor    float64 `json:"anchor"`
	Target    float64 `json:"target"`
	FairValue Metric  `json:"fair_value"`
}

// Validate checks the long-setup invariants.
func (s TradeSetup) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{FieldEntry, s.Entry}, {FieldAnchor, s.Anchor}, {FieldTarget, s.Target}, {FieldFairValue, s.FairValue.Or(0)}} {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidSetup, f.name, f.v)
		}
	}
	if s.Entry <= 0 {
		return fmt.Errorf("%w: entry %.4f must be positive", ErrInvalidSetup, s.Entry)
	}
	if s.Entry <= s.Anchor {
		return fmt.Errorf("%w: entry %.4f must be above anchor %.4f", ErrInvalidSetup, s.Entry, s.Anchor)
	}
	return nil
}

// PortfolioConfig is the capital base and per-trade risk budget.
type PortfolioConfig struct {
	Capital float64 `json:"capital"`
	RiskPct float64 `json:"risk_pct"` // percent of capital, 0 < RiskPct <= 100
}

// Validate checks capital and risk percentage ranges.
func (p PortfolioConfig) Validate() error {
	if !finite(p.Capital) || !finite(p.RiskPct) {
		return fmt.Errorf("%w: capital %v and risk_pct %v must be finite", ErrConfiguration, p.Capital, p.RiskPct)
	}
	if p.Capital <= 0 {
		return fmt.Errorf("%w: capital %.2f must be positive", ErrConfiguration, p.Capital)
	}
	if p.RiskPct <= 0 || p.RiskPct > 100 {
		return fmt.Errorf("%w: risk_pct %.2f must be in (0, 100]", ErrConfiguration, p.RiskPct)
	}
	return nil
}

// Field names accepted by setup edits.
const (
	FieldEntry     = "entry"
	FieldAnchor    = "anchor"
	FieldTarget    = "target"
	FieldFairValue = "fair_value"
	FieldCapital   = "capital"
	FieldRiskPct   = "risk_pct"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
