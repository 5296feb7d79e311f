package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carbusiness-backend/internal/config"
	"carbusiness-backend/internal/domain/ports/adapter"
	aiAdapters "carbusiness-backend/internal/infra/adapters/ai"
	"carbusiness-backend/internal/infra/adapters/storage"
	pg "carbusiness-backend/internal/infra/db/postgres"
	"carbusiness-backend/internal/infra/i18n"
	"carbusiness-backend/internal/infra/logging"
	"carbusiness-backend/internal/infra/metrics"
	red "carbusiness-backend/internal/infra/redis"
	"carbusiness-backend/internal/infra/sched"
	"carbusiness-backend/internal/infra/web"
	"carbusiness-backend/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI fallback, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	rateLimiter := red.NewRateLimiter(redisClient)
	premiumCache := red.NewPremiumCache(redisClient, cfg.Redis.TTL)

	// ---- Translations ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "pt")
	if err != nil {
		logger.Fatal().Err(err).Msg("translator init failed")
	}

	// ---- Repositories ----
	codeRepo := pg.NewActivationCodeRepo(pool)
	profileRepo := pg.NewProfileRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- AI adapter (gateway -> Gemini -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.GatewayKey != "":
		ai, err = aiAdapters.NewGatewayAdapter(cfg.AI.GatewayKey, cfg.AI.DefaultModel, cfg.AI.GatewayBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("gateway adapter init failed")
		}
		logger.Info().Str("base", cfg.AI.GatewayBaseURL).Str("model", cfg.AI.DefaultModel).Msg("AI adapter: gateway")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: gemini")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.gateway_key or ai.gemini_key in %s", *cfgPath)
	}

	// ---- Storage ----
	var fileStorage adapter.FileStorage
	if cfg.Storage.CloudName != "" {
		fileStorage, err = storage.NewCloudinaryStorage(cfg.Storage.CloudName, cfg.Storage.APIKey, cfg.Storage.APISecret, cfg.Storage.Folder)
		if err != nil {
			logger.Fatal().Err(err).Msg("cloudinary init failed")
		}
	} else if cfg.Runtime.Dev {
		fileStorage = storage.NewLocalStorage(os.TempDir())
		logger.Warn().Msg("storage: local temp dir (dev mode)")
	} else {
		logger.Fatal().Msg("storage.cloud_name is required outside dev mode")
	}

	// ---- Use cases ----
	activationUC := usecase.NewActivationUseCase(codeRepo, txManager, cfg.Premium.OperatorWhatsApp, tr, logger)
	chatUC := usecase.NewChatUseCase(ai, activationUC, tr, cfg.AI.DefaultModel, logger)
	premiumUC := usecase.NewPremiumUseCase(profileRepo, premiumCache, logger)

	// ---- HTTP server ----
	verifier := web.NewAuthVerifier(cfg.Auth.JWTSecret)
	srv := web.NewServer(
		activationUC, chatUC, premiumUC, fileStorage,
		verifier, cfg.Auth.AdminAPIKey,
		rateLimiter, cfg.Premium.ChatRatePerMinute,
		tr, logger,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Expiry worker (hourly) ----
	worker := sched.NewExpiryWorker(1*time.Hour, activationUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
