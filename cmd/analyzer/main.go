package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/LokeshGaddam14/stock-market-analysis/internal/api"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/collector"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/config"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/dataset"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/logger"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/metrics"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/model"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/notifier"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/pipeline"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/recorder"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/scheduler"
	"github.com/LokeshGaddam14/stock-market-analysis/internal/strategy"
)

const usage = `usage: analyzer <command> [flags]

commands:
  init    create the data directory layout
  run     analyse and backtest symbols once
  serve   run the scheduled refresh and the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "setup logger: %v\n", err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "init":
		err = runInit(cfg, args)
	case "run":
		err = runOnce(cfg, args)
	case "serve":
		err = serve(cfg)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

func runInit(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	sample := fs.String("sample", "", "comma separated symbols to seed with generated stock prices")
	days := fs.Int("days", 300, "number of generated bars per sample symbol")
	_ = fs.Parse(args)

	store := dataset.NewStore(cfg.Data.Root)
	if err := store.Layout.Ensure(); err != nil {
		return err
	}
	for _, dir := range store.Layout.Dirs() {
		log.Info().Str("path", dir).Msg("directory ready")
	}

	for _, symbol := range splitSymbols(*sample) {
		src := &collector.MockSource{Price: 100, Count: *days}
		series, err := src.LoadSeries(model.KindStock, symbol)
		if err != nil {
			return err
		}
		if err := store.SaveBars(series, dataset.FormatCSV); err != nil {
			return fmt.Errorf("seed %s: %w", symbol, err)
		}
		log.Info().Str("symbol", series.Symbol).Int("bars", len(series.Bars)).Msg("seeded sample prices")
	}
	return nil
}

func runOnce(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	symbols := fs.String("symbols", "", "comma separated symbols (default: every raw file of -kind)")
	kindFlag := fs.String("kind", "stock", "stock or index")
	_ = fs.Parse(args)

	kind, ok := model.ParseKind(*kindFlag)
	if !ok {
		return fmt.Errorf("unknown kind %q", *kindFlag)
	}

	app, err := build(cfg, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer app.recorder.Close()

	list := splitSymbols(*symbols)
	if len(list) == 0 {
		if list, err = app.store.Layout.Symbols(kind); err != nil {
			return err
		}
	}
	if len(list) == 0 {
		log.Warn().Str("dir", app.store.Layout.RawDir(kind)).Msg("no symbols found")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reports, runErr := app.pipeline.RunAll(ctx, kind, list)
	for _, r := range reports {
		fmt.Printf("%-10s return %+8.2f%%  annual %+7.2f%%  vol %6.2f%%  sharpe %6.2f  maxdd %7.2f%%  final %12.2f\n",
			r.Symbol,
			r.Results.TotalReturn*100,
			r.Results.AnnualReturn*100,
			r.Results.AnnualVolatility*100,
			r.Results.SharpeRatio,
			r.Results.MaxDrawdown*100,
			r.Results.FinalPortfolioValue,
		)
	}
	if failed := pipeline.FailedSymbols(runErr); len(failed) > 0 {
		return fmt.Errorf("%d of %d symbols failed (%s): %w", len(failed), len(list), strings.Join(failed, ","), runErr)
	}
	return runErr
}

func serve(cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := build(cfg, reg)
	if err != nil {
		return err
	}
	defer app.recorder.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notify notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.NotifyEnabled() {
		if tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID); err != nil {
			log.Warn().Err(err).Msg("telegram unavailable, notifications disabled")
			tn = nil
		} else {
			notify = tn
		}
	}

	sched := scheduler.NewScheduler(ctx, app.pipeline, notify, app.recorder)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.Commands())
		log.Info().Msg("telegram polling started")
	}

	handler := api.NewHandler(app.store, app.recorder,
		api.WithWindows(cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow),
		api.WithLastRun(sched.LastRun),
	)
	server := api.NewServer(cfg.Server.Addr, handler, reg)
	server.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	log.Info().Str("cron", cfg.Schedule.RefreshCron).Msg("analyzer is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	return server.Stop(shutdownCtx)
}

type app struct {
	store    *dataset.Store
	recorder recorder.Recorder
	pipeline *pipeline.Pipeline
}

func build(cfg *config.Config, reg prometheus.Registerer) (*app, error) {
	store := dataset.NewStore(cfg.Data.Root)
	if err := store.Layout.Ensure(); err != nil {
		return nil, err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	var colOpts []collector.Option
	if cfg.Preprocess.DropOutliers {
		colOpts = append(colOpts, collector.WithOutlierFilter(cfg.Preprocess.IQRMultiplier))
	}
	s := cfg.Strategy
	p := pipeline.New(
		collector.NewCollector(store, colOpts...),
		store,
		pipeline.WithRecorder(rec),
		pipeline.WithMetrics(metrics.New(reg)),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithStrategy(
			strategy.WithWindows(s.ShortWindow, s.LongWindow),
			strategy.WithRSIPeriod(s.RSIPeriod),
			strategy.WithMACD(s.MACDFast, s.MACDSlow, s.MACDSignal),
			strategy.WithBollinger(s.BollingerPeriod, s.BollingerStdDev),
			strategy.WithInitialCapital(cfg.Backtest.InitialCapital),
			strategy.WithTradingDays(cfg.Backtest.TradingDays),
		),
	)
	return &app{store: store, recorder: rec, pipeline: p}, nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
