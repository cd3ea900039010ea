package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogcast/internal/blog"
	"blogcast/internal/bot"
	"blogcast/internal/config"
	"blogcast/internal/database"
	"blogcast/internal/domain"
	"blogcast/internal/podcast"
	"blogcast/internal/scheduler"
	"blogcast/internal/web"

	"github.com/getsentry/sentry-go"
)

const (
	shutdownTimeout   = 10 * time.Second
	sentryFlushPeriod = 2 * time.Second
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	if cfg.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.ErrorContext(ctx, "Failed to initialize sentry",
				"error", err)
		} else {
			log.InfoContext(ctx, "Sentry is initialized",
				"environment", cfg.Environment)
			defer sentry.Flush(sentryFlushPeriod)
		}
	}

	if err = run(ctx, cfg, log); err != nil {
		sentry.CaptureException(err)
		log.ErrorContext(ctx, "Failed to run",
			"error", err)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	narrators, err := podcast.NewClientFactory(cfg, log)
	if err != nil {
		return err
	}

	storage := podcast.NewStorage(cfg.OutputDir)
	serverKeys := podcast.Keys{OpenAI: cfg.OpenAIAPIKey, ElevenLabs: cfg.ElevenLabsAPIKey}
	mode := domain.Mode(cfg.DefaultMode)

	pipeline := podcast.NewPipeline(
		blog.NewFetcher(cfg.FetchTimeout, cfg.FetchMaxBytes, log),
		narrators,
		storage,
		db,
		podcast.Options{
			MinContentChars: cfg.MinContentChars,
			DefaultMode:     mode,
		},
		log,
	)

	sched := scheduler.New(ctx, storage, cfg.OutputRetention, log)
	if err = sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.TelegramToken != "" {
		botInst, botErr := bot.New(bot.Config{
			Token:           cfg.TelegramToken,
			AllowedUsers:    cfg.AllowedUsers,
			Keys:            serverKeys,
			Mode:            mode,
			GenerateTimeout: cfg.GenerateTimeout,
		}, pipeline, log)
		if botErr != nil {
			return botErr
		}
		defer botInst.Stop()

		go botInst.Start(ctx)
		log.InfoContext(ctx, "Bot is started",
			"allowedUsersCount", len(cfg.AllowedUsers),
			"updateTimeoutSeconds", bot.BotUpdateTimeout)
	}

	server, err := web.New(pipeline, storage, db, web.Config{
		ServerKeys:        serverKeys,
		OpenAIKeyRequired: narrators.RequiresOpenAI(mode),
		GenerateTimeout:   cfg.GenerateTimeout,
		GenerateLimit:     cfg.GenerateRateLimit,
		GenerateWindow:    cfg.GenerateRateWindow,
		HistoryLimit:      cfg.HistoryLimit,
	}, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "HTTP server is started",
			"addr", cfg.HTTPAddr,
			"outputDir", cfg.OutputDir,
			"defaultMode", mode,
			"summarizerProvider", cfg.SummarizerProvider)

		if listenErr := srv.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.InfoContext(ctx, "Shutdown signal is received")
	case err = <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}

	return nil
}
