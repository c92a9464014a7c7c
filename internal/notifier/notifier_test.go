package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SetupRadar/internal/model"
)

func TestSendTo(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "100", "")
	n.APIBase = srv.URL
	require.NoError(t, n.SendTo(context.Background(), "42", "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])

	require.NoError(t, n.Send(context.Background(), "x"))
	assert.Equal(t, "100", got["chat_id"])
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("T", "1", "")
	n.APIBase = srv.URL
	err := n.SendWithRetry(context.Background(), "x", 0)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSendTo_EmptyChat(t *testing.T) {
	n := NewTelegramNotifier("T", "", "")
	assert.Error(t, n.Send(context.Background(), "x"))
}

func TestStartPolling_RepliesToChat(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	replies := make(chan map[string]string, 1)
	var served atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botT/getUpdates":
			if served.Swap(true) {
				<-ctx.Done()
				return
			}
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /show ","chat":{"id":555}}}]}`))
		case "/botT/sendMessage":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			w.Write([]byte(`{"ok":true}`))
			replies <- body
		}
	}))
	defer srv.Close()
	defer cancel()

	n := NewTelegramNotifier("T", "", "")
	n.APIBase = srv.URL
	go n.StartPolling(ctx, func(_ context.Context, chatID, text string) string {
		return chatID + ":" + text
	})

	select {
	case body := <-replies:
		assert.Equal(t, "555", body["chat_id"])
		assert.Equal(t, "555:/show", body["text"])
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
}

func TestSafeHandle_RecoversPanic(t *testing.T) {
	reply := safeHandle(context.Background(), func(context.Context, string, string) string {
		panic("boom")
	}, "1", "/analyze")
	assert.Contains(t, reply, "internal error")

	reply = safeHandle(context.Background(), func(_ context.Context, chatID, text string) string {
		return chatID + text
	}, "1", "/show")
	assert.Equal(t, "1/show", reply)
}

func TestFormatAnalysis(t *testing.T) {
	a := model.Analysis{
		Setup: model.TradeSetup{Symbol: "SEF", Entry: 44.54, Anchor: 42, Target: 50},
		Risk:  model.RiskReport{RRRatio: 2.15, PositionSize: 393, Verdict: model.VerdictAcceptable},
	}
	msg := FormatAnalysis(a)
	assert.Contains(t, msg, "🟡 <b>SEF</b>")
	assert.Contains(t, msg, "<pre>")
	assert.Contains(t, msg, "393 shares")
}

func TestFormatScanSummary(t *testing.T) {
	at := time.Date(2024, 6, 3, 22, 30, 0, 0, time.UTC)
	msg := FormatScanSummary(at, []model.Analysis{
		{Setup: model.TradeSetup{Symbol: "AAA"}, Risk: model.RiskReport{RRRatio: 0.5, Verdict: model.VerdictDangerous}},
		{Setup: model.TradeSetup{Symbol: "BBB"}, Risk: model.RiskReport{RRRatio: 3.2, Verdict: model.VerdictExcellent}},
	}, map[string]error{"<X>": errors.New("no data")})

	assert.Contains(t, msg, "2024-06-03 22:30")
	assert.Less(t, strings.Index(msg, "BBB"), strings.Index(msg, "AAA"))
	assert.Contains(t, msg, "1:3.20")
	assert.Contains(t, msg, "&lt;X&gt;: no data")

	assert.Contains(t, FormatScanSummary(at, nil, nil), "empty")
}

