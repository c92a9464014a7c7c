// Command setupcli analyzes one trade setup and prints the report.
//
//	setupcli -entry 44.54 -anchor 42 -target 50 -capital 1000 -risk 100
//	setupcli -symbol SEF -target 50
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"SetupRadar/internal/collector"
	"SetupRadar/internal/config"
	"SetupRadar/internal/directory"
	"SetupRadar/internal/logging"
	"SetupRadar/internal/model"
	"SetupRadar/internal/recorder"
	"SetupRadar/internal/report"
	"SetupRadar/internal/session"
)

func main() {
	var (
		cfgPath = flag.String("config", "configs/config.yaml", "config file")
		symbol  = flag.String("symbol", "", "symbol or company name; fetches history unless -manual")
		manual  = flag.Bool("manual", false, "skip the market data fetch")
		save    = flag.Bool("save", false, "save anchor, target and fair value as defaults for the symbol")
		verbose = flag.Bool("v", false, "log at debug level")
		timeout = flag.Duration("timeout", 30*time.Second, "fetch timeout")
	)
	overrides := map[string]*float64{
		model.FieldEntry:     flag.Float64("entry", 0, "entry price"),
		model.FieldAnchor:    flag.Float64("anchor", 0, "anchor / stop-loss price"),
		model.FieldTarget:    flag.Float64("target", 0, "target price"),
		model.FieldFairValue: flag.Float64("fair", 0, "fair value estimate"),
		model.FieldCapital:   flag.Float64("capital", 0, "portfolio capital"),
		model.FieldRiskPct:   flag.Float64("risk", 0, "percent of capital at risk"),
	}
	flagFields := map[string]string{
		"entry": model.FieldEntry, "anchor": model.FieldAnchor, "target": model.FieldTarget,
		"fair": model.FieldFairValue, "capital": model.FieldCapital, "risk": model.FieldRiskPct,
	}
	flag.Parse()

	if err := run(*cfgPath, *symbol, *manual, *save, *verbose, *timeout, overrides, flagFields); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfgPath, symbol string, manual, save, verbose bool, timeout time.Duration,
	overrides map[string]*float64, flagFields map[string]string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.Log.Level = "warn"
	if verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Log.File = ""
	logger, err := logging.Init(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	var store recorder.Store = recorder.NewNoopRecorder()
	if save && cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer sr.Close()
		store = sr
	}

	dir, err := directory.Load(cfg.Directory.CSVPath)
	if err != nil {
		return err
	}

	var radar session.RadarSource
	if !manual {
		var fetcher collector.Fetcher
		switch cfg.DataSource.Provider {
		case config.ProviderAlpaca:
			fetcher = collector.NewAlpacaFetcher(cfg.DataSource.AlpacaKey, cfg.DataSource.AlpacaSecret)
		case config.ProviderMock:
			fetcher = &collector.MockFetcher{Price: 100}
		default:
			fetcher = collector.NewYahooFetcher(cfg.DataSource.Proxy, cfg.DataSource.RequestsPerSec)
		}
		radar = collector.NewCollector(fetcher, cfg.IndicatorConfig(), 0)
	}

	sess := session.New("cli", &session.Deps{
		Directory:            dir,
		Radar:                radar,
		Defaults:             store,
		Recorder:             store,
		Thresholds:           cfg.Analysis.Thresholds,
		FairValueSensitivity: cfg.Analysis.FairValueSensitivity,
	}, cfg.PortfolioConfig())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if !manual && symbol != "" {
		snap, err := sess.Radar(ctx, symbol)
		if err != nil {
			return err
		}
		zap.L().Debug("radar done", zap.String("symbol", snap.Symbol), zap.Int("bars", snap.Bars))
	} else if symbol != "" {
		ticker, err := dir.Resolve(symbol)
		if err != nil {
			return err
		}
		sess.SetSymbol(ticker)
	}

	// Only flags given on the command line override the radar defaults.
	var editErr error
	flag.Visit(func(f *flag.Flag) {
		field, ok := flagFields[f.Name]
		if !ok || editErr != nil {
			return
		}
		editErr = sess.Edit(field, *overrides[field])
	})
	if editErr != nil {
		return editErr
	}

	a, err := sess.Analyze()
	if err != nil {
		return err
	}
	fmt.Println(report.Render(a))

	if save {
		if err := sess.SaveDefaults(ctx); err != nil {
			return err
		}
		fmt.Printf("defaults saved for %s\n", a.Setup.Symbol)
	}
	return nil
}
