package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/orchestrator"
	"server/internal/plan"
	"server/internal/providers/speech"
	"server/internal/providers/textgen"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	contents := repo.NewContentRepository(runner)
	queries := repo.NewQueryRepository(runner)
	users := repo.NewUserRepository(runner)

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize asset storage")
	}

	llm, err := textgen.NewGeminiClient(textgen.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize text provider")
	}
	synth, err := speech.NewClient(speech.Options{
		APIKey:  cfg.SpeechAPIKey,
		BaseURL: cfg.SpeechBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize speech provider")
	}

	gate := plan.NewGate(plan.DefaultCatalog(), contents, users, logger)
	orch := orchestrator.New(orchestrator.Config{
		Registry:     orchestrator.NewRegistry(llm),
		Contents:     contents,
		Queries:      queries,
		Gate:         gate,
		Speech:       synth,
		Objects:      fileStore,
		GenTimeout:   cfg.GenTimeout,
		DefaultVoice: cfg.SpeechVoice,
		Logger:       logger,
	})

	app := &handlers.App{
		Service:  orch,
		Contents: contents,
		Queries:  queries,
		Assets:   fileStore,
		Logger:   logger,
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, locale detection degraded")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(httpapi.Config{
		App:             app,
		JWTSecret:       cfg.JWTSecret,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  strings.Split(os.Getenv("CORS_ORIGINS"), ","),
		StaticDir:       fileStore.BasePath(),
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
