package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
	"StockScreener/internal/scheduler"
	"StockScreener/internal/screener"
	"StockScreener/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger.SetGlobalLogger(logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}))
	log.Info().Msg("StockScreener starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	fetcher := collector.NewEastMoneyFetcher(cfg.Proxy, cfg.Fetch.RequestsPerSecond, collector.UniverseFilter{
		ExcludeSpecial: cfg.Universe.ExcludeSpecial,
		MainBoardsOnly: cfg.Universe.MainBoardsOnly,
		RequireBullish: cfg.Universe.RequireBullish,
		MaxInstruments: cfg.Universe.MaxInstruments,
	})
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	scr := screener.New(fetcher, fetcher, cfg.Patterns)
	scr.Concurrency = cfg.Screen.Concurrency
	scr.ProgressEvery = cfg.Screen.ProgressEvery
	scr.LookbackBars = cfg.Fetch.LookbackBars
	scr.FetchTimeout = time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second

	var n scheduler.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
		n = notifier.NewNoopNotifier()
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, scr, n, rec, report.NewWriter(cfg.Output.Dir))
	sched.Names = collector.NewSinaNameResolver()
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}

	// One-shot mode for CI and cron-job hosts.
	if os.Getenv("RUN_ONCE") == "true" {
		sched.RunNow()
		return
	}

	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, screening now")
		go sched.RunNow()
	}

	log.Info().Msg("StockScreener is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("StockScreener stopped")
}
