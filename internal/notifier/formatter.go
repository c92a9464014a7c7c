package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"SetupRadar/internal/model"
	"SetupRadar/internal/report"
)

var verdictIcons = map[model.Verdict]string{
	model.VerdictExcellent:  "🟢",
	model.VerdictAcceptable: "🟡",
	model.VerdictMarginal:   "🟠",
	model.VerdictDangerous:  "🔴",
}

// FormatAnalysis formats an analysis into a Telegram message.
func FormatAnalysis(a model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n",
		verdictIcons[a.Risk.Verdict], html.EscapeString(a.Setup.Symbol), a.Risk.Verdict.Label()))
	b.WriteString(pre(report.Render(a)))
	return b.String()
}

// FormatSnapshot formats a radar snapshot and the setup derived from it.
func FormatSnapshot(snap *model.IndicatorSnapshot, setup model.TradeSetup) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📡 <b>Radar %s</b>\n", html.EscapeString(snap.Symbol)))
	b.WriteString(pre(report.RenderSnapshot(snap)))
	b.WriteString(fmt.Sprintf("\nDefaults: entry %.2f | anchor %.2f | target %.2f\n", setup.Entry, setup.Anchor, setup.Target))
	b.WriteString("Adjust with /set, then /analyze")
	return b.String()
}

// FormatSetup formats the current, not yet analyzed, setup.
func FormatSetup(setup model.TradeSetup, p model.PortfolioConfig, state string) string {
	var b strings.Builder
	symbol := setup.Symbol
	if symbol == "" {
		symbol = "-"
	}
	b.WriteString(fmt.Sprintf("📋 <b>Setup %s</b> (%s)\n", html.EscapeString(symbol), state))
	b.WriteString(fmt.Sprintf("Entry: %.2f\n", setup.Entry))
	b.WriteString(fmt.Sprintf("Anchor (SL): %.2f\n", setup.Anchor))
	b.WriteString(fmt.Sprintf("Target: %.2f\n", setup.Target))
	if setup.FairValue.Available {
		b.WriteString(fmt.Sprintf("Fair value: %.2f\n", setup.FairValue.Value))
	}
	b.WriteString(fmt.Sprintf("Capital: %.2f | Risk: %.2f%%\n", p.Capital, p.RiskPct))
	return b.String()
}

// FormatScanSummary formats the result of a watchlist scan, best ratio first.
func FormatScanSummary(at time.Time, analyses []model.Analysis, failures map[string]error) string {
	sorted := make([]model.Analysis, len(analyses))
	copy(sorted, analyses)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Risk.RRRatio > sorted[j].Risk.RRRatio })

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛰 <b>Watchlist scan</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	for _, a := range sorted {
		b.WriteString(fmt.Sprintf("%s %-6s R:R %s | qty %d | %s\n",
			verdictIcons[a.Risk.Verdict], html.EscapeString(a.Setup.Symbol),
			report.RatioText(a.Risk.RRRatio), a.Risk.PositionSize, a.Risk.Verdict))
	}

	if len(failures) > 0 {
		symbols := make([]string, 0, len(failures))
		for s := range failures {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		b.WriteString("\n⚠️ <b>Skipped</b>\n")
		for _, s := range symbols {
			b.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(s), html.EscapeString(failures[s].Error())))
		}
	}
	if len(sorted) == 0 && len(failures) == 0 {
		b.WriteString("Watchlist is empty.")
	}
	return b.String()
}

func pre(s string) string {
	return "<pre>" + html.EscapeString(s) + "</pre>"
}
