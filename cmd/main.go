package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akunmarket/platform/claims-service/internal/api"
	"github.com/akunmarket/platform/claims-service/internal/config"
	"github.com/akunmarket/platform/claims-service/internal/evidence"
	"github.com/akunmarket/platform/claims-service/internal/handlers"
	"github.com/akunmarket/platform/claims-service/internal/notifier"
	"github.com/akunmarket/platform/claims-service/internal/repository"
	"github.com/akunmarket/platform/claims-service/internal/service"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize telemetry
	if err := telemetry.InitTelemetry("claims-service"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Claims Service")

	// Apply database migrations
	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to create migration instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		telemetry.Logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	claimRepo := repository.NewClaimRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	refundRepo := repository.NewRefundRepository(db, claimRepo)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	// Connect to NATS for advisory claim screening; skipped when unset
	var screener *service.Screener
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()
		screener = service.NewScreener(nc, claimRepo)
	} else {
		telemetry.Logger.Warn("NATS_URL not set, claim screening disabled")
	}

	// Kafka writer for the durable claim event stream
	var kafkaWriter *kafka.Writer
	if cfg.KafkaBrokers != "" {
		kafkaWriter = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
	} else {
		telemetry.Logger.Warn("KAFKA_BROKERS not set, durable claim events disabled")
	}

	// Evidence storage (S3 presigning); skipped when no bucket is configured
	var evidenceStore *evidence.Store
	if cfg.EvidenceBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			telemetry.Logger.Fatal("Failed to load AWS config", zap.Error(err))
		}
		evidenceStore = evidence.NewStore(s3.NewFromConfig(awsCfg), cfg.EvidenceBucket)
	} else {
		telemetry.Logger.Warn("EVIDENCE_BUCKET not set, evidence endpoints disabled")
	}

	// Wire services
	realtimeNotifier := notifier.NewRealtimeNotifier(redisClient, kafkaWriter)
	claimService := service.NewClaimService(claimRepo, purchaseRepo, realtimeNotifier, redisClient, screener, cfg.CacheTTL)
	reviewService := service.NewReviewService(claimRepo, refundRepo, realtimeNotifier)

	// Setup router
	r := api.NewRouter(
		handlers.NewClaimHandler(claimService, evidenceStore),
		handlers.NewAdminHandler(reviewService),
		handlers.NewEventsHandler(redisClient),
	)

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Claims Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
