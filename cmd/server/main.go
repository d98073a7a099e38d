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
	"github.com/assohub/assohub-backend/internal/handler"
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

	campaignRepo := &repository.CampaignRepository{DB: database}
	ledgerRepo := &repository.LedgerRepository{DB: database}
	listRepo := &repository.ListRepository{DB: database}
	subscriptionRepo := &repository.SubscriptionRepository{DB: database}
	memberRepo := &repository.MemberRepository{DB: database}

	resolver := &service.RecipientResolver{
		Subscriptions: subscriptionRepo,
		Members:       memberRepo,
		Lists:         listRepo,
	}

	smtp := transport.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	dispatcher := service.NewDispatcher(smtp, ledgerRepo, cfg.SendInterval, cfg.BatchSize, logger)

	campaignService := &service.CampaignService{
		Campaigns:  campaignRepo,
		Ledger:     ledgerRepo,
		Lists:      listRepo,
		Resolver:   resolver,
		Publisher:  dispatchQueue,
		Dispatcher: dispatcher,
		Log:        logger,
	}
	subscriptionService := &service.SubscriptionService{
		Subscriptions: subscriptionRepo,
		Lists:         listRepo,
		Members:       memberRepo,
		Log:           logger,
	}
	ingestor := &service.CallbackIngestor{Ledger: ledgerRepo, Log: logger}

	router := handler.NewRouter(
		&handler.CampaignHandler{Service: campaignService},
		&handler.ListHandler{Lists: listRepo, Subscriptions: subscriptionService},
		&handler.MemberHandler{Members: memberRepo, Subscriptions: subscriptionService},
		&handler.CallbackHandler{Ingestor: ingestor, Log: logger},
	)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	apiServer := &http.Server{Addr: ":" + cfg.APIPort, Handler: router}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("server shutdown complete")
}
