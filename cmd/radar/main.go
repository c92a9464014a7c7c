package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"SetupRadar/internal/bot"
	"SetupRadar/internal/collector"
	"SetupRadar/internal/config"
	"SetupRadar/internal/directory"
	"SetupRadar/internal/logging"
	"SetupRadar/internal/notifier"
	"SetupRadar/internal/portfolio"
	"SetupRadar/internal/recorder"
	"SetupRadar/internal/scheduler"
	"SetupRadar/internal/server"
	"SetupRadar/internal/session"
)

func main() {
	zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		zap.L().Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		zap.L().Fatal("config validation", zap.Error(err))
	}

	logger, err := logging.Init(cfg.Log)
	if err != nil {
		zap.L().Fatal("init logging", zap.Error(err))
	}
	defer logger.Sync()
	zap.L().Info("SetupRadar starting", zap.String("config", cfgPath))

	dir, err := directory.Load(cfg.Directory.CSVPath)
	if err != nil {
		zap.L().Fatal("load symbol directory", zap.Error(err))
	}
	zap.L().Info("symbol directory loaded", zap.Int("entries", len(dir.Entries())))

	fetcher := newFetcher(cfg)
	zap.L().Info("data source", zap.String("provider", fetcher.Name()))
	col := collector.NewCollector(fetcher, cfg.IndicatorConfig(), 0)

	// Init recorder
	var store recorder.Store = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			zap.L().Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			store = sr
			defer sr.Close()
		}
	}

	profile, err := portfolio.NewManager(cfg.Portfolio.StateFile, cfg.PortfolioConfig())
	if err != nil {
		zap.L().Fatal("init portfolio profile", zap.Error(err))
	}

	sessions := session.NewManager(&session.Deps{
		Directory:            dir,
		Radar:                col,
		Defaults:             store,
		Recorder:             store,
		Thresholds:           cfg.Analysis.Thresholds,
		FairValueSensitivity: cfg.Analysis.FairValueSensitivity,
	}, profile)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy)
		if cfg.Telegram.ChatID != "" {
			sender = tn
		}
	}

	sched := scheduler.NewScheduler(ctx, sessions, sender, cfg.Watchlist.Symbols)
	if len(cfg.Watchlist.Symbols) > 0 {
		if err := sched.Register(cfg.Watchlist.Cron); err != nil {
			zap.L().Fatal("register watchlist scan", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	if tn != nil {
		h := &bot.Handler{Sessions: sessions, Scan: sched.RunScanNow}
		go tn.StartPolling(ctx, h.Handle)
		zap.L().Info("telegram polling started")
	}

	httpCfg := server.HTTPConfig{Addr: cfg.HTTP.Addr, Sessions: sessions, Profile: profile}
	if h, ok := store.(server.HistoryStore); ok {
		httpCfg.History = h
	}
	api, err := server.NewHTTPServer(httpCfg)
	if err != nil {
		zap.L().Fatal("init http api", zap.Error(err))
	}
	go func() {
		if err := api.Start(ctx); err != nil {
			zap.L().Error("http api stopped", zap.Error(err))
			cancel()
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" && len(cfg.Watchlist.Symbols) > 0 {
		zap.L().Info("RUN_ON_START enabled, scanning watchlist now")
		go func() {
			summary := sched.RunScanNow(ctx)
			if sender != nil {
				if err := sender.SendWithRetry(ctx, summary, 3); err != nil {
					zap.L().Error("send scan summary", zap.Error(err))
				}
			}
		}()
	}

	zap.L().Info("SetupRadar is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		zap.L().Info("shutdown signal received, stopping")
	case <-ctx.Done():
	}
	cancel()
	zap.L().Info("SetupRadar stopped")
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderAlpaca:
		return collector.NewAlpacaFetcher(cfg.DataSource.AlpacaKey, cfg.DataSource.AlpacaSecret)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.DataSource.Proxy, cfg.DataSource.RequestsPerSec)
	}
}
