package strategy

import (
	"fmt"

	"SetupRadar/internal/model"
)

// Thresholds are the minimum reward:risk ratios of each verdict tier.
// A zero Excellent collapses the scheme to two tiers above DANGEROUS.
type Thresholds struct {
	Excellent  float64 `yaml:"excellent" json:"excellent"`
	Acceptable float64 `yaml:"acceptable" json:"acceptable"`
	Marginal   float64 `yaml:"marginal" json:"marginal"`
}

// DefaultThresholds returns the 3.0 / 2.0 / 1.0 tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 3.0, Acceptable: 2.0, Marginal: 1.0}
}

// Validate requires finite, non-negative tiers ordered Excellent >= Acceptable >= Marginal.
// A zero Excellent is the two-tier scheme and skips its ordering check.
func (th Thresholds) Validate() error {
	for _, v := range []float64{th.Excellent, th.Acceptable, th.Marginal} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: verdict thresholds must be finite and non-negative, got %v/%v/%v",
				model.ErrConfiguration, th.Excellent, th.Acceptable, th.Marginal)
		}
	}
	if th.Excellent > 0 && th.Excellent < th.Acceptable {
		return fmt.Errorf("%w: excellent threshold %v is below acceptable %v",
			model.ErrConfiguration, th.Excellent, th.Acceptable)
	}
	if th.Acceptable < th.Marginal {
		return fmt.Errorf("%w: acceptable threshold %v is below marginal %v",
			model.ErrConfiguration, th.Acceptable, th.Marginal)
	}
	return nil
}

// mapVerdict maps an R:R ratio to a verdict.
func mapVerdict(rr float64, th Thresholds) model.Verdict {
	switch {
	case th.Excellent > 0 && rr >= th.Excellent:
		return model.VerdictExcellent
	case rr >= th.Acceptable:
		return model.VerdictAcceptable
	case rr >= th.Marginal:
		return model.VerdictMarginal
	default:
		return model.VerdictDangerous
	}
}
