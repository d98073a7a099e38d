// The worker consumes campaign dispatch jobs from the durable queue and
// runs the batch sends. It also re-enqueues campaigns stuck in `sending`
// after a crash and prunes delivery-ledger rows past the retention window.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/assohub/assohub-backend/internal/config"
	"github.com/assohub/assohub-backend/internal/db"
	"github.com/assohub/assohub-backend/internal/metrics"
	"github.com/assohub/assohub-backend/internal/queue"
	"github.com/assohub/assohub-backend/internal/repository"
	"github.com/assohub/assohub-backend/internal/service"
	"github.com/assohub/assohub-backend/internal/transport"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, relying on process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close()

	dispatchQueue, err := queue.Dial(cfg.AMQPURL, cfg.DispatchQueue, logger)
	if err != nil {
		logger.Fatal("queue connection failed", zap.Error(err))
	}
	defer dispatchQueue.Close()

	metrics.Init()

	// The dispatch counters live in this process; scrape them here.
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	campaignRepo := &repository.CampaignRepository{DB: database}
	ledgerRepo := &repository.LedgerRepository{DB: database}
	listRepo := &repository.ListRepository{DB: database}
	subscriptionRepo := &repository.SubscriptionRepository{DB: database}
	memberRepo := &repository.MemberRepository{DB: database}

	smtp := transport.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	if !smtp.Available() {
		logger.Warn("smtp transport not configured, dispatches will fail")
	}

	dispatcher := service.NewDispatcher(smtp, ledgerRepo, cfg.SendInterval, cfg.BatchSize, logger)

	campaignService := &service.CampaignService{
		Campaigns: campaignRepo,
		Ledger:    ledgerRepo,
		Lists:     listRepo,
		Resolver: &service.RecipientResolver{
			Subscriptions: subscriptionRepo,
			Members:       memberRepo,
			Lists:         listRepo,
		},
		Publisher:  dispatchQueue,
		Dispatcher: dispatcher,
		Log:        logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
		dispatchQueue.Close()
	}()

	if err := campaignService.RecoverStuck(cfg.StuckCampaignTimeout); err != nil {
		logger.Error("stuck-campaign recovery failed", zap.Error(err))
	}

	go retentionLoop(ctx, ledgerRepo, cfg.LedgerRetention, logger)

	logger.Info("worker running, waiting for dispatch jobs")
	err = dispatchQueue.Consume(func(job queue.DispatchJob) error {
		return campaignService.RunDispatch(ctx, job.CampaignID)
	})
	if err != nil && ctx.Err() == nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("worker shutdown complete")
}

func retentionLoop(ctx context.Context, ledger repository.LedgerRepositoryInterface, retention time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		deleted, err := ledger.DeleteOlderThan(time.Now().Add(-retention))
		if err != nil {
			logger.Error("ledger retention cleanup failed", zap.Error(err))
		} else if deleted > 0 {
			logger.Info("ledger retention cleanup", zap.Int64("deleted", deleted))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
