package cmd

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-billing/app/cache"
	"github.com/vibast-solutions/ms-go-billing/app/plan"
	"github.com/vibast-solutions/ms-go-billing/app/repository"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/config"

	_ "github.com/go-sql-driver/mysql"
)

var usageSweepWorker bool

var usageSweepCmd = &cobra.Command{
	Use:   "usage-sweep",
	Short: "Evaluate usage thresholds for the current billing period",
	Run: func(_ *cobra.Command, _ []string) {
		cfg, usageService, cleanup := mustCreateUsageService()
		defer cleanup()

		if usageSweepWorker {
			runWorker("usage_sweep", cfg.Jobs.ThresholdSweepInterval, usageService)
			return
		}

		runJob("usage_sweep", func() error {
			return usageService.RunThresholdSweepBatch(context.Background())
		})
	},
}

func init() {
	rootCmd.AddCommand(usageSweepCmd)
	usageSweepCmd.Flags().BoolVar(&usageSweepWorker, "worker", false, "Run continuously using configured interval")
}

func runWorker(name string, interval time.Duration, usageService *service.UsageService) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return usageService.RunThresholdSweepBatch(ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return usageService.RunThresholdSweepBatch(ctx) })
		}
	}
}

func mustCreateUsageService() (*config.Config, *service.UsageService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	usageService := service.NewUsageService(
		repository.NewUsageRepository(db),
		repository.NewSubscriptionRepository(db),
		cache.New(),
		plan.NewCatalog(),
		service.NewLogPublisher(),
		cfg.Cache,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, usageService, cleanup
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
