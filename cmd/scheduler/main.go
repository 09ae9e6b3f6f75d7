package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/config"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/Mekazstan/course-marketplace-api/internal/jobs"
	"github.com/Mekazstan/course-marketplace-api/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reconcileTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("unable to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	db := database.New(pool)
	writer := enrollment.NewWriter(db, logger.Named("enrollment"))
	jobLog := logger.Named("reconcile")

	c := cron.New(cron.WithSeconds())

	// Paid payments that never produced an enrollment.
	_, err = c.AddFunc(cfg.ReconcileSchedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		if _, err := jobs.ReconcilePaidEnrollments(runCtx, db, writer, jobs.DefaultReconcileBatch, jobLog); err != nil {
			jobLog.Error("reconciliation run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("failed to schedule reconciliation job", zap.String("schedule", cfg.ReconcileSchedule), zap.Error(err))
	}

	c.Start()
	logger.Info("cron scheduler started", zap.String("reconcile_schedule", cfg.ReconcileSchedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down cron scheduler")

	stopCtx := c.Stop()
	<-stopCtx.Done()

	logger.Info("cron scheduler stopped")
}
