package model

import "time"

// Verdict classifies a setup by its reward-to-risk ratio.
type Verdict string

const (
	VerdictExcellent  Verdict = "EXCELLENT"
	VerdictAcceptable Verdict = "ACCEPTABLE"
	VerdictMarginal   Verdict = "MARGINAL"
	VerdictDangerous  Verdict = "DANGEROUS"
)

// Label is the human-readable verdict text.
func (v Verdict) Label() string {
	switch v {
	case VerdictExcellent:
		return "EXCELLENT (Strong Trade)"
	case VerdictAcceptable:
		return "GOOD (Acceptable Trade)"
	case VerdictMarginal:
		return "FAIR (High Risk)"
	default:
		return "DANGEROUS (Avoid)"
	}
}

// RiskReport is derived from a setup and portfolio config on every analyze.
type RiskReport struct {
	RiskDistance   float64 `json:"risk_distance"`
	RewardDistance float64 `json:"reward_distance"`
	RRRatio        float64 `json:"rr_ratio"`
	RiskPct        float64 `json:"risk_pct"`
	RewardPct      float64 `json:"reward_pct"`
	RiskCash       float64 `json:"risk_cash"`
	PositionSize   int64   `json:"position_size"`
	Verdict        Verdict `json:"verdict"`
}

// RangeReport places a price inside its 52-week range and against fair value.
type RangeReport struct {
	RangePositionPct      Metric `json:"range_position_pct"`
	FairValueDeviationPct Metric `json:"fair_value_deviation_pct"`
	FairValueMarker       Metric `json:"fair_value_marker"`
}

// Analysis is everything a renderer or recorder needs from one analyze call.
type Analysis struct {
	Setup     TradeSetup         `json:"setup"`
	Portfolio PortfolioConfig    `json:"portfolio"`
	Snapshot  *IndicatorSnapshot `json:"snapshot,omitempty"`
	Risk      RiskReport         `json:"risk"`
	Range     RangeReport        `json:"range"`
	At        time.Time          `json:"at"`
}
