package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"towerguide/internal/app"
	"towerguide/internal/config"
	"towerguide/internal/server"
	"towerguide/internal/util"
	"towerguide/pkg/ai"
	"towerguide/pkg/payment"
	"towerguide/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	genTimeout, err := config.ParseGenerationTimeout(cfg.GenerationTimeout)
	if err != nil {
		log.Fatalf("failed to parse generation timeout: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	generator := ai.NewOpenAICompatGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.GenerationModel).
		WithSampling(cfg.GenerationMaxTokens, cfg.GenerationTemperature)

	var archive storage.GuideArchive
	if cfg.MinioEndpoint != "" {
		archive, err = storage.NewMinioArchive(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init guide archive: %v", err)
		}
	}

	appCore, err := app.New(app.Config{
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		DatabaseURL:       cfg.DatabaseURL,
		GenerationTimeout: genTimeout,
		Generator:         generator,
		Archive:           archive,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var payments payment.IntentCreator
	if cfg.StripeSecretKey != "" {
		payments = payment.NewStripeClient(cfg.StripeSecretKey)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		Payments:                   payments,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		GenerateRateLimitPerMinute: cfg.GenerateRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
