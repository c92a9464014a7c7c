package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"SetupRadar/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. requestsPerSecond <= 0 disables limiting.
func NewYahooFetcher(proxyURL string, requestsPerSecond int) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	f := &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
	if requestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloats(vals []*float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
		if i < len(vals) && vals[i] != nil {
			out[i] = *vals[i]
		}
	}
	return out
}

// yahooRange picks the smallest chart range that covers lookback trading days.
func yahooRange(lookback int) string {
	switch {
	case lookback <= 20:
		return "1mo"
	case lookback <= 60:
		return "3mo"
	case lookback <= 120:
		return "6mo"
	case lookback <= 250:
		return "1y"
	case lookback <= 500:
		return "2y"
	default:
		return "5y"
	}
}

func (f *YahooFetcher) FetchHistory(ctx context.Context, ticker string, lookback int) (model.RawFrame, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return model.RawFrame{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	symbol := f.yahooSymbol(ticker)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		strings.TrimRight(f.BaseURL, "/"), url.PathEscape(symbol), yahooRange(lookback))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.RawFrame{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.RawFrame{}, fmt.Errorf("%w: yahoo fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RawFrame{}, fmt.Errorf("%w: yahoo read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return model.RawFrame{}, fmt.Errorf("%w: yahoo %s", ErrNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return model.RawFrame{}, fmt.Errorf("%w: yahoo status %d, body: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.RawFrame{}, fmt.Errorf("%w: yahoo decode: %v", ErrUnavailable, err)
	}
	if chart.Chart.Error != nil {
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return model.RawFrame{}, fmt.Errorf("%w: %s", ErrNotFound, chart.Chart.Error.Description)
		}
		return model.RawFrame{}, fmt.Errorf("%w: yahoo api error: %s", ErrUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return model.RawFrame{}, fmt.Errorf("%w: yahoo returned no result for %s", ErrNotFound, symbol)
	}

	result := chart.Chart.Result[0]
	n := len(result.Timestamp)
	frame := model.RawFrame{Symbol: symbol, Index: make([]time.Time, n)}
	for i, ts := range result.Timestamp {
		frame.Index[i] = time.Unix(ts, 0).UTC()
	}
	// Yahoo nests quote series per request symbol; keep that as a second key level.
	for _, q := range result.Indicators.Quote {
		frame.Columns = append(frame.Columns,
			model.Column{Key: []string{"Open", symbol}, Values: toFloats(q.Open, n)},
			model.Column{Key: []string{"High", symbol}, Values: toFloats(q.High, n)},
			model.Column{Key: []string{"Low", symbol}, Values: toFloats(q.Low, n)},
			model.Column{Key: []string{"Close", symbol}, Values: toFloats(q.Close, n)},
			model.Column{Key: []string{"Volume", symbol}, Values: toFloats(q.Volume, n)},
		)
	}
	for _, a := range result.Indicators.AdjClose {
		frame.Columns = append(frame.Columns, model.Column{Key: []string{"Adj Close", symbol}, Values: toFloats(a.AdjClose, n)})
	}

	if lookback > 0 && n > lookback {
		frame = tail(frame, lookback)
	}
	zap.L().Debug("yahoo history fetched", zap.String("symbol", symbol), zap.Int("rows", frame.Len()))
	return frame, nil
}

// tail trims a frame to its last n rows.
func tail(f model.RawFrame, n int) model.RawFrame {
	start := f.Len() - n
	out := model.RawFrame{Symbol: f.Symbol, Index: f.Index[start:]}
	for _, c := range f.Columns {
		vals := c.Values
		if len(vals) > start {
			vals = vals[start:]
		} else {
			vals = nil
		}
		out.Columns = append(out.Columns, model.Column{Key: c.Key, Values: vals})
	}
	return out
}
