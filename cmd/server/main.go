package main

import (
	"log/slog"
	"os"

	"gigwork-service/configs"
	"gigwork-service/internal/adapters/database"
	"gigwork-service/internal/adapters/kafka"
	"gigwork-service/internal/api/routes"
	"gigwork-service/internal/auth"
	"gigwork-service/internal/chat"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := configs.Load()

	db, err := database.NewPostgresDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	minioClient, err := database.NewMinIOClient(
		cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		logger.Error("failed to connect to minio", "error", err)
		os.Exit(1)
	}

	var events chat.EventPublisher
	if cfg.KafkaEnabled {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, "gigwork-service")
		if err != nil {
			logger.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		events = producer
	} else {
		logger.Info("kafka brokers not configured, message events disabled")
	}

	jwks := auth.NewJWKSCache(cfg.JWKSURL, cfg.SupabaseAnonKey, logger)
	verifier := auth.NewVerifier(jwks)

	router := routes.NewRouter(db, redisClient, minioClient, events, verifier, cfg.AllowedOrigins, logger)
	router.SetupRoutes()

	logger.Info("starting server", "port", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
