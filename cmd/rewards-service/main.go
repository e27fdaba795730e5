package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/carsa-labs/carsa-rewards-service/internal/config"
	"github.com/carsa-labs/carsa-rewards-service/internal/delivery/stream"
	publisher "github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/kafka"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/logger"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/metrics"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/migrate"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/postgres/repository"
	rediscache "github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/redis"
	"github.com/carsa-labs/carsa-rewards-service/internal/infrastructure/solana"
	"github.com/carsa-labs/carsa-rewards-service/internal/usecase"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg.LogConfig)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.RewardsDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.RewardsDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Ledger access
	deriver, err := solana.NewDeriver(cfg.SolanaLedger.ProgramID)
	if err != nil {
		log.Fatalf("failed to init address deriver: %v", err)
	}
	ledgerClient := solana.NewRPCLedgerClient(cfg.SolanaLedger.RPCURL)
	waiter := solana.NewConfirmationWatcher(ledgerClient, cfg.SolanaLedger.PollInterval)

	// Repositories
	merchantRepo := repository.NewDefaultMerchantRepository(db)
	idempotencyRepo := repository.NewDefaultIdempotencyRepository(db)
	settlementRepo := repository.NewDefaultSettlementRepository(db)
	merchantCache := rediscache.NewMerchantCache(cfg.RedisCache)
	defer merchantCache.Close()

	// Message broker
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)
	defer pub.Close()
	sub := publisher.NewDefaultKafkaSubscriber(brokers)

	// Usecases
	recorderMetrics := metrics.NewRecorderMetrics()
	recorder := usecase.NewDefaultRecorderUsecase(
		idempotencyRepo,
		settlementRepo,
		merchantRepo,
		waiter,
		deriver,
		pub,
		merchantCache,
		recorderMetrics,
		cfg.KafkaService.EventsTopic,
		cfg.SolanaLedger.ConfirmTimeout,
	)
	merchants := usecase.NewDefaultMerchantUsecase(merchantRepo, merchantCache, deriver)

	// Delivery
	audit := logger.NewPGRecordingAuditLogger(db)
	handler := stream.NewRecordingHandler(
		recorder,
		merchants,
		sub,
		audit,
		cfg.KafkaService.RequestsTopic,
		cfg.KafkaService.ConsumerGroup,
	)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsServer.Addr, nil); err != nil {
			slog.Error("metrics server stopped", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("rewards service started",
		"env", cfg.Env,
		"requests_topic", cfg.KafkaService.RequestsTopic,
		"events_topic", cfg.KafkaService.EventsTopic)

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("recording handler stopped: %v", err)
	}
	slog.Info("rewards service stopped")
}

func setupLogger(cfg config.LogConfig) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
