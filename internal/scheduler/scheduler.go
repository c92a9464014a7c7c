package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"SetupRadar/internal/model"
	"SetupRadar/internal/notifier"
	"SetupRadar/internal/session"
)

const defaultConcurrency = 4

// Sender delivers a scan summary.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// ScanResult is the outcome of one watchlist scan.
type ScanResult struct {
	At       time.Time
	Analyses []model.Analysis
	Failures map[string]error
}

// Scheduler runs the watchlist scan on a cron schedule.
type Scheduler struct {
	Cron        *cron.Cron
	Sessions    *session.Manager
	Notifier    Sender
	Watchlist   []string
	Concurrency int
	Ctx         context.Context

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new Scheduler. tn may be nil, in which case summaries are only logged.
func NewScheduler(ctx context.Context, sessions *session.Manager, tn Sender, watchlist []string) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Sessions:    sessions,
		Notifier:    tn,
		Watchlist:   watchlist,
		Concurrency: defaultConcurrency,
		Ctx:         ctx,
	}
}

// Register adds the watchlist scan under spec, a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scanTask); err != nil {
		return fmt.Errorf("register watchlist scan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.L().Info("scheduler started", zap.Int("watchlist", len(s.Watchlist)))
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zap.L().Info("scheduler stopped")
}

// RunScanNow scans immediately and returns the summary message.
func (s *Scheduler) RunScanNow(ctx context.Context) string {
	res := s.Scan(ctx)
	return notifier.FormatScanSummary(res.At, res.Analyses, res.Failures)
}

func (s *Scheduler) scanTask() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		zap.L().Warn("watchlist scan still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.trySend(s.RunScanNow(s.Ctx))
}

// Scan radars and analyzes every watchlist symbol with its default setup. Each
// symbol gets its own detached session; a failing symbol does not stop the rest.
func (s *Scheduler) Scan(ctx context.Context) ScanResult {
	start := time.Now()
	res := ScanResult{At: start, Failures: make(map[string]error)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)

	for _, symbol := range s.Watchlist {
		symbol := strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		g.Go(func() error {
			sess := s.Sessions.Detached("scan-" + symbol)
			a, err := scanOne(gctx, sess, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures[symbol] = err
				zap.L().Warn("watchlist symbol skipped", zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			res.Analyses = append(res.Analyses, a)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("watchlist scan finished",
		zap.Int("analyzed", len(res.Analyses)),
		zap.Int("failed", len(res.Failures)),
		zap.Duration("took", time.Since(start)))
	return res
}

func scanOne(ctx context.Context, sess *session.Session, symbol string) (model.Analysis, error) {
	if _, err := sess.Radar(ctx, symbol); err != nil {
		return model.Analysis{}, err
	}
	return sess.Analyze()
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		zap.L().Info("scan summary", zap.String("text", text))
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		zap.L().Error("send notification", zap.Error(err))
	}
}
