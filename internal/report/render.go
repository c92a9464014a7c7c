// Package report renders analyses and snapshots as plain-text tables.
package report

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"SetupRadar/internal/model"
)

const na = "n/a"

// Render formats every field of an analysis.
func Render(a model.Analysis) string {
	t := newTable(fmt.Sprintf("SETUP REPORT %s", a.Setup.Symbol))

	t.AppendRow(table.Row{"Entry", price(a.Setup.Entry)})
	t.AppendRow(table.Row{"Anchor (SL)", price(a.Setup.Anchor)})
	t.AppendRow(table.Row{"Target", price(a.Setup.Target)})
	t.AppendRow(table.Row{"Fair value", metric(a.Setup.FairValue, "%.2f")})
	t.AppendSeparator()

	r := a.Risk
	t.AppendRow(table.Row{"R:R ratio", RatioText(r.RRRatio)})
	t.AppendRow(table.Row{"Verdict", r.Verdict.Label()})
	t.AppendRow(table.Row{"Quantity", fmt.Sprintf("%d shares", r.PositionSize)})
	t.AppendRow(table.Row{"Risk cash", fmt.Sprintf("%.2f", r.RiskCash)})
	t.AppendRow(table.Row{"Risk to SL", fmt.Sprintf("-%.2f%%", r.RiskPct)})
	t.AppendRow(table.Row{"Reward to target", fmt.Sprintf("%+.2f%%", r.RewardPct)})
	t.AppendRow(table.Row{"Risk / reward distance", fmt.Sprintf("%.4f / %.4f", r.RiskDistance, r.RewardDistance)})
	t.AppendRow(table.Row{"Portfolio", fmt.Sprintf("%.2f @ %.2f%%", a.Portfolio.Capital, a.Portfolio.RiskPct)})
	t.AppendSeparator()

	t.AppendRow(table.Row{"52w range position", metric(a.Range.RangePositionPct, "%.2f%%")})
	t.AppendRow(table.Row{"Fair value deviation", metric(a.Range.FairValueDeviationPct, "%+.2f%%")})
	t.AppendRow(table.Row{"Fair value marker", metric(a.Range.FairValueMarker, "%.1f")})

	if a.Snapshot != nil && a.Snapshot.Symbol == a.Setup.Symbol {
		t.AppendSeparator()
		appendSnapshot(t, a.Snapshot)
	}
	return t.Render()
}

// RenderSnapshot formats the indicators from a radar fetch.
func RenderSnapshot(s *model.IndicatorSnapshot) string {
	t := newTable(fmt.Sprintf("RADAR %s", s.Symbol))
	appendSnapshot(t, s)
	return t.Render()
}

// RatioText is the R:R ratio in 1:x.xx form.
func RatioText(rr float64) string {
	return fmt.Sprintf("1:%.2f", rr)
}

func appendSnapshot(t table.Writer, s *model.IndicatorSnapshot) {
	t.AppendRow(table.Row{"As of", fmt.Sprintf("%s (%d bars)", s.AsOf.Format("2006-01-02"), s.Bars)})
	t.AppendRow(table.Row{"Last close", price(s.LastClose)})

	windows := make([]int, 0, len(s.SMA))
	for w := range s.SMA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		t.AppendRow(table.Row{fmt.Sprintf("SMA%d", w), metric(s.SMA[w], "%.2f")})
	}

	t.AppendRow(table.Row{fmt.Sprintf("Support (%dd)", s.ShortLookback), metric(s.Support, "%.2f")})
	t.AppendRow(table.Row{fmt.Sprintf("Resistance (%dd)", s.ShortLookback), metric(s.Resistance, "%.2f")})
	t.AppendRow(table.Row{"52w high", metric(s.High52w, "%.2f")})
	t.AppendRow(table.Row{"52w low", metric(s.Low52w, "%.2f")})
	t.AppendRow(table.Row{"RSI14", metric(s.RSI14, "%.1f")})
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func price(v float64) string { return fmt.Sprintf("%.2f", v) }

func metric(m model.Metric, format string) string {
	if !m.Available {
		return na
	}
	return fmt.Sprintf(format, m.Value)
}
