package strategy

import (
	"math"

	"github.com/shopspring/decimal"

	"SetupRadar/internal/model"
)

// Evaluate computes the risk report for a long setup.
// It fails with model.ErrInvalidSetup when entry is not above the anchor and with
// model.ErrConfiguration when the portfolio config is out of range.
func Evaluate(setup model.TradeSetup, portfolio model.PortfolioConfig, th Thresholds) (model.RiskReport, error) {
	if err := setup.Validate(); err != nil {
		return model.RiskReport{}, err
	}
	if err := portfolio.Validate(); err != nil {
		return model.RiskReport{}, err
	}

	risk := setup.Entry - setup.Anchor
	reward := setup.Target - setup.Entry
	rr := RRRatio(risk, reward)

	riskCash, size := PositionSize(portfolio, risk)

	verdict := mapVerdict(rr, th)
	if reward < 0 {
		verdict = model.VerdictDangerous
	}

	return model.RiskReport{
		RiskDistance:   risk,
		RewardDistance: reward,
		RRRatio:        rr,
		RiskPct:        risk / setup.Entry * 100,
		RewardPct:      reward / setup.Entry * 100,
		RiskCash:       riskCash,
		PositionSize:   size,
		Verdict:        verdict,
	}, nil
}

// RRRatio is reward/risk, saturating to 0 when risk is zero.
func RRRatio(risk, reward float64) float64 {
	if risk == 0 {
		return 0
	}
	return reward / risk
}

var maxShares = decimal.NewFromInt(math.MaxInt64)

// PositionSize returns the cash at risk and the whole number of shares it buys
// at the given per-share risk. Sizes are never negative and saturate at MaxInt64.
// Non-finite inputs size to zero.
func PositionSize(portfolio model.PortfolioConfig, risk float64) (float64, int64) {
	if !finite(portfolio.Capital) || !finite(portfolio.RiskPct) {
		return 0, 0
	}
	riskCash := decimal.NewFromFloat(portfolio.Capital).
		Mul(decimal.NewFromFloat(portfolio.RiskPct)).
		Div(decimal.NewFromInt(100))
	cash, _ := riskCash.Float64()
	if !finite(risk) || risk <= 0 || riskCash.Sign() <= 0 {
		return cash, 0
	}
	// Rounding absorbs float noise such as 2.1799999999999997; a sub-1e-8 risk keeps its exact value.
	perShare := decimal.NewFromFloat(risk)
	if rounded := perShare.Round(8); !rounded.IsZero() {
		perShare = rounded
	}
	shares := riskCash.Div(perShare).Floor()
	if shares.GreaterThan(maxShares) {
		return cash, math.MaxInt64
	}
	return cash, shares.IntPart()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
