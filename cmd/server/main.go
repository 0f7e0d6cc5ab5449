package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/b3at1/Dicere/internal/app"
	"github.com/b3at1/Dicere/internal/config"
	"github.com/b3at1/Dicere/internal/events"
	httpapi "github.com/b3at1/Dicere/internal/http"
	"github.com/b3at1/Dicere/internal/observability"
	"github.com/b3at1/Dicere/internal/service/pipeline"
	"github.com/b3at1/Dicere/internal/service/transcriber"
	"github.com/b3at1/Dicere/internal/service/transcriber/assemblyai"
	"github.com/b3at1/Dicere/internal/service/transcriber/mock"
)

func main() {
	cfg := config.Load()

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to start application")
	}
	defer application.Shutdown()

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
	})
	defer publisher.Close()

	var adapter transcriber.Adapter
	switch cfg.Transcription.Provider {
	case "mock":
		adapter = mock.New()
		application.Logger.Warn().Msg("Using mock transcriber, reports are canned")
	default:
		adapter = assemblyai.New(assemblyai.Config{
			APIKey:        cfg.Transcription.APIKey,
			BaseURL:       cfg.Transcription.BaseURL,
			PollInterval:  cfg.Transcription.PollInterval,
			PollTimeout:   cfg.Transcription.PollTimeout,
			PrimaryModel:  cfg.Transcription.PrimaryModel,
			FallbackModel: cfg.Transcription.FallbackModel,
		})
	}

	orchestrator := pipeline.New(adapter, publisher)

	obs := observability.NewServer(":" + cfg.Service.MetricsPort)
	obs.Start()

	server := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     httpapi.NewRouter(orchestrator, cfg.Service.MaxUploadBytes),
		ReadTimeout: 30 * time.Second,
		// No write timeout: the analyze call blocks on upstream polling and
		// its deadline is governed by TRANSCRIPTION_POLL_TIMEOUT.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		application.Logger.Info().Str("addr", server.Addr).Msg("Fluency analysis API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			application.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Logger.Info().Msg("Shutting down HTTP servers")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := obs.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("Observability server shutdown error")
	}
}
