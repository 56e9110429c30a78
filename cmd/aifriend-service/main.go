package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aifriend/aifriend/internal/api"
	"github.com/aifriend/aifriend/internal/config"
	"github.com/aifriend/aifriend/internal/notify"
	"github.com/aifriend/aifriend/internal/platform/logger"
	"github.com/aifriend/aifriend/internal/storage/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	envFile := flag.String("env-file", "", "Optional .env file to load before reading configuration")
	flag.Parse()

	log := logger.New("aifriend-service")

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatal().Err(err).Str("file", *envFile).Msg("Failed to load env file")
		}
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("AIFRIEND_GEMINI_API_KEY is not set; language endpoints will return 500")
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("chat_model", cfg.ChatModel).
		Msg("AI Friend service starting…")

	// -------- Storage layer -----------------
	store, err := sqlite.NewSubscriptionStore(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Subscription store unavailable")
	}
	defer func() { _ = store.Close() }()

	// -------- Push sender & scheduler -------
	sender := notify.NewSender(store, cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, log)
	if cfg.CronEnabled {
		scheduler, err := notify.NewScheduler(cfg.CronSpec, sender, log)
		if err != nil {
			log.Fatal().Err(err).Str("spec", cfg.CronSpec).Msg("Invalid cron spec")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// -------- Router & Server --------------
	router := api.NewRouter(cfg, store, sender, log)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // speech synthesis is slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
