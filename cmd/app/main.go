package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/activitylog"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/rabbitmq"
	"dispatch/internal/adapters/out/redis"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	loadDotEnv()
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := openDatabase(configs, logger)
	mirrors, closeMirrors := connectMirrors(ctx, configs, logger)
	defer closeMirrors()

	app := cmd.NewCompositionRoot(configs, gormDB, logger, mirrors...)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:          envOrDefault("HTTP_PORT", "8080"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBSslMode:         envOrDefault("DB_SSLMODE", "disable"),
		Storage:           envOrDefault("STORAGE", cmd.StoragePostgres),
		AMQPURL:           os.Getenv("AMQP_URL"),
		AMQPExchange:      envOrDefault("AMQP_EXCHANGE", "dispatch.activity"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisChannel:      envOrDefault("REDIS_CHANNEL", redis.DefaultChannel),
		ReconcileSchedule: envOrDefault("RECONCILE_SCHEDULE", jobs.DefaultReconcileSchedule),
	}
	return config
}

// loadDotEnv reads .env when present. Real environment variables win.
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openDatabase returns nil when the in-memory store is configured.
func openDatabase(configs cmd.Config, logger *slog.Logger) *gorm.DB {
	if configs.InMemory() {
		logger.Warn("Running with in-memory storage; state is lost on restart")
		return nil
	}

	gormDB, err := gorm.Open(pgdriver.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return gormDB
}

// connectMirrors connects the optional activity feed publishers.
func connectMirrors(ctx context.Context, configs cmd.Config, logger *slog.Logger) ([]activitylog.Mirror, func()) {
	var (
		mirrors []activitylog.Mirror
		closers []func() error
	)

	if configs.AMQPURL != "" {
		publisher, err := rabbitmq.Connect(configs.AMQPURL, configs.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		mirrors = append(mirrors, activitylog.Mirror{Name: "rabbitmq", Log: publisher})
		closers = append(closers, publisher.Close)
		logger.Info("Publishing activity to RabbitMQ", "exchange", configs.AMQPExchange)
	}

	if configs.RedisAddr != "" {
		publisher, err := redis.Connect(ctx, configs.RedisAddr, configs.RedisChannel)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		mirrors = append(mirrors, activitylog.Mirror{Name: "redis", Log: publisher})
		closers = append(closers, publisher.Close)
		logger.Info("Publishing activity to Redis", "channel", publisher.Channel())
	}

	return mirrors, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Failed to close activity publisher", "error", err)
			}
		}
	}
}

func startWebServer(ctx context.Context, app cmd.CompositionRoot, port string, logger *slog.Logger) {
	e, err := httpin.NewRouter(app.CreateHTTPServer(), logger)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server stopped: %v", err)
		}
	}()
	logger.Info("HTTP server started", "port", port)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
}
