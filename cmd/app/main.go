package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres/courierrepo"
	"fulfillment/internal/adapters/out/postgres/inboxrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDB(configs)
	mustMigrate(gormDB)

	publisher, err := kafka.NewSaramaEventPublisher(configs.KafkaBrokers)
	if err != nil {
		log.Fatalf("Failed to connect to Kafka: %v", err)
	}
	defer publisher.Close()

	root := cmd.NewCompositionRoot(configs, gormDB, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = root.HydrateGeoIndex(ctx); err != nil {
		log.Fatalf("Failed to hydrate geo index: %v", err)
	}

	jobManager := root.CreateJobManager(logger)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	workflowHandler := root.CreateWorkflowEventHandler(logger)
	consumer, err := kafka.NewConsumer(
		configs.KafkaBrokers,
		configs.KafkaConsumerGroup,
		workflowHandler.Topics(),
		workflowHandler.Handle,
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	go func() {
		if runErr := consumer.Run(ctx); runErr != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", "error", runErr)
		}
	}()

	startWebServer(ctx, root, configs.HTTPPort, logger)
}

func startWebServer(ctx context.Context, root *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	server := httpin.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateRequestTransitionCommandHandler(),
		root.CreateAssignCourierCommandHandler(),
		root.CreateCreateCourierCommandHandler(),
		root.CreateSetCourierAvailabilityCommandHandler(),
		root.CreateUpdateCourierLocationCommandHandler(),
		root.CreateGetOrderQueryHandler(),
		root.CreateListOrdersQueryHandler(),
		root.CreateListCouriersQueryHandler(),
	)
	server.RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
		logger.Info("server stopped", "reason", err.Error())
	}
}

func mustOpenDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return gormDB
}

func mustMigrate(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&courierrepo.CourierDTO{},
		&outboxrepo.OutboxMessageDTO{},
		&inboxrepo.InboxEntryDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	return cmd.Config{
		HTTPPort:           envOr("HTTP_PORT", "8080"),
		DBHost:             envOr("DB_HOST", "localhost"),
		DBPort:             envOr("DB_PORT", "5432"),
		DBUser:             envOr("DB_USER", "postgres"),
		DBPassword:         envOr("DB_PASSWORD", "postgres"),
		DBName:             envOr("DB_NAME", "fulfillment"),
		DBSslMode:          envOr("DB_SSLMODE", "disable"),
		KafkaBrokers:       strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaConsumerGroup: envOr("KAFKA_CONSUMER_GROUP", kafka.ConsumerGroupWorkflow),
		AssignBaseRadiusKm: envFloatOr("ASSIGN_BASE_RADIUS_KM", 3),
		AssignMaxRadiusKm:  envFloatOr("ASSIGN_MAX_RADIUS_KM", 24),
		OutboxBatchSize:    envIntOr("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxAttempts:  envIntOr("OUTBOX_MAX_ATTEMPTS", 5),
	}
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return value
}

func envFloatOr(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid float for %s: %v", key, err)
	}
	return value
}
