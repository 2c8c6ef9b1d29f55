package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xplainit/xplainit-be/internal/api"
	"github.com/xplainit/xplainit-be/internal/auth"
	"github.com/xplainit/xplainit-be/internal/config"
	"github.com/xplainit/xplainit-be/internal/generator"
	"github.com/xplainit/xplainit-be/internal/logger"
	"github.com/xplainit/xplainit-be/internal/services"
	"github.com/xplainit/xplainit-be/internal/storage"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up storage
	store, err := storage.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to initialize storage")
	}
	defer store.Close()

	// Set up the generator collaborator
	gen := generator.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	// Set up services
	tokenService := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authService := services.NewAuthService(store, tokenService)
	explainService := services.NewExplainService(store, gen, cfg.GeneratorTimeout)

	// Set up router
	router := api.NewRouter(store, authService, explainService, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("database", cfg.DatabaseDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
