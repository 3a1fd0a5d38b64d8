package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pleroma_rss/internal/config"
	"pleroma_rss/internal/fetcher"
	"pleroma_rss/internal/filter"
	"pleroma_rss/internal/mastodon"
	"pleroma_rss/internal/preview"
	"pleroma_rss/internal/publisher"
	"pleroma_rss/internal/scheduler"
	"pleroma_rss/internal/telegram"
	"pleroma_rss/internal/tracker"
)

const httpTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	log.Info("bot stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	httpClient := &http.Client{Timeout: httpTimeout}

	src := fetcher.New(httpClient)
	watermark := tracker.InitialWatermark(cfg.OnlyNew, time.Now())
	feeds := make([]scheduler.Checker, 0, len(cfg.Feeds))
	for _, u := range cfg.Feeds {
		feeds = append(feeds, tracker.New(u, watermark, src, log))
	}

	client := mastodon.NewClient(cfg.BaseURL, cfg.AccessToken, httpClient)

	var attacher publisher.Attacher = preview.None{}
	if cfg.PreviewEnabled() {
		p, err := preview.New(preview.Options{
			TemplatePath: cfg.PreviewTemplate,
			DefaultImage: cfg.DefaultPreviewImage,
			Dir:          cfg.PreviewDir,
		}, preview.WKHTMLToImage{}, client, log)
		if err != nil {
			return err
		}
		attacher = p
	}

	rules, err := filter.Compile(cfg.Filters)
	if err != nil {
		return err
	}

	opts := scheduler.Options{
		DryRun:     cfg.DryRun,
		ItemDelay:  cfg.ItemDelay,
		RoundDelay: cfg.RoundDelay,
		Filters:    rules,
	}
	if cfg.TelegramToken != "" {
		alerter, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			return err
		}
		opts.Alerter = alerter
	}

	sched := scheduler.New(feeds, publisher.New(client, attacher, log), opts, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot",
		"feeds", len(feeds),
		"instance", cfg.BaseURL,
		"dry_run", cfg.DryRun,
		"only_new", cfg.OnlyNew,
		"preview", cfg.PreviewEnabled(),
	)
	return sched.Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
