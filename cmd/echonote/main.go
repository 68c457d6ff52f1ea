package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echonote/echonote/internal/api"
	"github.com/echonote/echonote/internal/config"
	"github.com/echonote/echonote/internal/health"
	"github.com/echonote/echonote/internal/openai"
	"github.com/echonote/echonote/internal/pipeline"
	"github.com/echonote/echonote/internal/platform/factory"
	"github.com/echonote/echonote/internal/platform/logger"
	"github.com/echonote/echonote/internal/services"
	"github.com/echonote/echonote/internal/structure"
	"github.com/echonote/echonote/internal/transcribe"
)

func main() {
	log := logger.New("echonote")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// -------- Storage layer -----------------
	cards, err := factory.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage adapter unavailable")
	}
	defer func() { _ = cards.Close() }()

	// -------- OpenAI adapters ---------------
	aiClient, err := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("OpenAI client unavailable")
	}
	transcriber := transcribe.NewWhisper(aiClient, cfg.TranscribeModel)
	structurer := structure.NewLLM(aiClient, cfg.StructureModel)

	// -------- Services & pipeline -----------
	svc := services.NewMemoryService(cards, services.ListLimits{
		Min:     cfg.ListLimitMin,
		Default: cfg.ListLimitDefault,
		Max:     cfg.ListLimitMax,
	})
	pipe := pipeline.New(transcriber, structurer, cards, cfg.MinAudioBytes, log)

	// -------- Health monitor ----------------
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := health.NewServiceHealthChecker(
		health.NewPingChecker("store", cards, log),
	)
	checker.Start(ctx, 30*time.Second)

	// -------- Router & server ---------------
	router := api.NewRouter(svc, pipe, checker, cards)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("Server exited")
}
