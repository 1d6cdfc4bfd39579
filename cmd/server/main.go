package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandroviegener/g-challenge/internal/adapters/http/rest"
	"github.com/alejandroviegener/g-challenge/internal/app"
	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/alejandroviegener/g-challenge/internal/platform/config"
	pg "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/alejandroviegener/g-challenge/internal/platform/logging"
	"github.com/alejandroviegener/g-challenge/internal/platform/server"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	var dbPool *pgxpool.Pool
	if cfg.NeedsDatabase() {
		dbPool, err = pg.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to initialize database pool", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
	}

	store := agenda.NewSyncRegistry(nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report, err := app.Load(gctx, cfg, store, dbPool, logger)
		if err != nil {
			logger.Error("initial load failed", "error", err)
			return nil
		}
		if report != nil {
			logger.Info("initial load completed",
				"run_id", report.RunID,
				"inserted", report.Inserted,
				"failed", report.Failed,
				"unreadable", report.Unreadable,
			)
		}
		return nil
	})

	grpcServer := server.New(cfg.Server.ListenAddr, store, logger)
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})

	if cfg.Server.HTTPAddr != "" {
		httpServer := server.NewHTTP(cfg.Server.HTTPAddr, rest.NewRouter(store, logger), logger)
		g.Go(func() error {
			return httpServer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
