// Package bot turns chat commands into session operations. Each chat owns one session.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"SetupRadar/internal/collector"
	"SetupRadar/internal/directory"
	"SetupRadar/internal/model"
	"SetupRadar/internal/notifier"
	"SetupRadar/internal/session"
)

const helpText = `Commands:
• /radar &lt;symbol or name&gt; - fetch indicators and default levels
• /set &lt;field&gt; &lt;value&gt; - entry, anchor, target, fair_value, capital, risk_pct
• /analyze - evaluate the current setup
• /show - show the current setup
• /save - remember anchor, target and fair value for this symbol
• /reset - clear the setup
• /scan - analyze the watchlist now`

// Handler dispatches chat commands.
type Handler struct {
	Sessions *session.Manager
	// Scan runs the watchlist scan and returns its summary. Nil disables /scan.
	Scan func(ctx context.Context) string
}

// Handle processes one message from chatID and returns the reply.
func (h *Handler) Handle(ctx context.Context, chatID, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]
	sess := h.Sessions.GetOrCreate(chatID)

	switch cmd {
	case "/radar":
		if len(args) == 0 {
			return "Usage: /radar &lt;symbol or name&gt;"
		}
		snap, err := sess.Radar(ctx, strings.Join(args, " "))
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatSnapshot(snap, sess.Setup())

	case "/set":
		if len(args) != 2 {
			return "Usage: /set &lt;field&gt; &lt;value&gt;"
		}
		value, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
		if err != nil {
			return fmt.Sprintf("❌ %q is not a number", html.EscapeString(args[1]))
		}
		if err := sess.Edit(args[0], value); err != nil {
			return errorReply(err)
		}
		v := sess.View()
		return "✅ updated\n" + notifier.FormatSetup(v.Setup, v.Portfolio, v.State.String())

	case "/analyze":
		a, err := sess.Analyze()
		if err != nil {
			return errorReply(err)
		}
		return notifier.FormatAnalysis(a)

	case "/show":
		v := sess.View()
		if v.State == session.StateAnalyzed && v.Last != nil && v.Last.Setup == v.Setup && v.Last.Portfolio == v.Portfolio {
			return notifier.FormatAnalysis(*v.Last)
		}
		return notifier.FormatSetup(v.Setup, v.Portfolio, v.State.String())

	case "/save":
		if err := sess.SaveDefaults(ctx); err != nil {
			return errorReply(err)
		}
		return fmt.Sprintf("💾 defaults saved for %s", html.EscapeString(sess.Setup().Symbol))

	case "/reset":
		sess.Reset()
		return "🧹 setup cleared"

	case "/scan":
		if h.Scan == nil {
			return "Watchlist scan is not configured."
		}
		return h.Scan(ctx)

	default:
		return helpText
	}
}

func errorReply(err error) string {
	prefix := "❌"
	switch {
	case errors.Is(err, directory.ErrNotFound), errors.Is(err, collector.ErrNotFound):
		prefix = "❓ unknown symbol:"
	case errors.Is(err, model.ErrDataUnavailable):
		prefix = "📭 no data:"
	case errors.Is(err, collector.ErrUnavailable):
		prefix = "🌐 data source unavailable:"
	case errors.Is(err, model.ErrUnknownField):
		return "❌ " + html.EscapeString(err.Error()) + "\n\n" + helpText
	}
	return prefix + " " + html.EscapeString(err.Error())
}
