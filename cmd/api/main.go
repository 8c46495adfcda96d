package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ashmitsharp/vendlens-api/internal/app"
	"github.com/ashmitsharp/vendlens-api/internal/config"
	"github.com/ashmitsharp/vendlens-api/internal/logger"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var log zerolog.Logger
	if cfg.IsProduction() {
		log = logger.NewJSON(cfg.LogLevel)
	} else {
		log = logger.New(cfg.LogLevel)
	}
	if envErr != nil {
		log.Debug().Msg(".env file not found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer a.Close()

	router := a.Router()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := router.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().
		Str("addr", addr).
		Str("environment", cfg.Environment).
		Bool("storage", a.Storage != nil).
		Msg("vendlens API is running")

	if err := router.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
