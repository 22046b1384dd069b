package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborwell/harborwell/internal/app"
	"github.com/harborwell/harborwell/internal/observability"
	"github.com/harborwell/harborwell/internal/platform/cache"
	"github.com/harborwell/harborwell/internal/proposal"
	"github.com/harborwell/harborwell/internal/shortlink"
	"github.com/harborwell/harborwell/jobs"
	"github.com/harborwell/harborwell/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, short link cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	linkRepo := shortlink.NewRepository(dbpool)
	linkService := shortlink.NewService(linkRepo, redisClient, logger)
	linkHandler := shortlink.NewHandler(logger, linkService, map[string]string{
		proposal.ShortLinkNamespace: "/api/proposals/%s",
	})

	taskClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init task client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Warn("task client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewProposalNotifier(taskClient)

	proposalRepo := proposal.NewRepository(dbpool)
	proposalService := proposal.NewService(proposalRepo, logger, linkService, notifier)

	var renderer proposal.PDFRenderer
	if cfg.GotenbergURL != "" {
		renderer = report.NewProposalRenderer(report.NewClient(cfg.GotenbergURL))
	}
	proposalHandler := proposal.NewHandler(logger, proposalService, renderer)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ProposalHandler:  proposalHandler,
		ShortLinkHandler: linkHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
