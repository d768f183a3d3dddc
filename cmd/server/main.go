package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "time/tzdata"

	"github.com/plaum/appointment-backend/internal/ai"
	"github.com/plaum/appointment-backend/internal/config"
	httpapi "github.com/plaum/appointment-backend/internal/http"
	"github.com/plaum/appointment-backend/internal/ocr"
	"github.com/plaum/appointment-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "appointment-backend").Logger()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone")
	}

	var adapter ai.Adapter
	switch {
	case cfg.AIMode == "mock":
		adapter = ai.Mock{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock AI adapter")
	case cfg.GeminiAPIKey == "":
		adapter = ai.Disabled{}
		logger.Warn().Msg("GEMINI_API_KEY not set; AI-backed requests will fail")
	default:
		adapter = ai.Gemini{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}
	}

	ocrService := &ocr.Service{}
	if cfg.OCRURL == "" {
		ocrService.NewEngine = func(ctx context.Context) (ocr.Engine, error) {
			return ocr.MockEngine{Text: "Book dentist next Friday at 3pm", Confidence: 0.8}, nil
		}
		logger.Info().Msg("using mock OCR engine")
	} else {
		ocrService.NewEngine = ocr.HTTPEngineFactory(cfg.OCRURL)
	}

	pipeline := &service.Pipeline{
		OCR:      ocrService,
		AI:       adapter,
		Logger:   logger,
		Location: location,
	}

	router := httpapi.Router(cfg, pipeline, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
