package api

import (
	"github.com/aifriend/aifriend/internal/api/recovery"
	"github.com/aifriend/aifriend/internal/config"
	"github.com/aifriend/aifriend/internal/gemini"
	"github.com/aifriend/aifriend/internal/services"
	"github.com/aifriend/aifriend/internal/storage/sqlite"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires every endpoint onto a mux router. All feature services
// share one upstream client; handlers stay stateless.
func NewRouter(cfg *config.Config, store *sqlite.SubscriptionStore, sender Nudger, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	router.Use(metricsMiddleware)

	llm := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, log)
	hasKey := cfg.GeminiAPIKey != ""

	// Feature services
	chatSvc := services.NewChatService(llm, cfg.ChatModel, log)
	grammarSvc := services.NewGrammarService(llm, cfg.GrammarModel, log)
	nativeSvc := services.NewNativeService(llm, cfg.GrammarModel, log)
	translateSvc := services.NewTranslateService(llm, cfg.GrammarModel, log)
	memorySvc := services.NewMemoryService(llm, cfg.GrammarModel, log)
	ttsSvc := services.NewTTSService(llm, cfg.TTSModel, cfg.TTSVoice, log)

	// Handlers
	languageHandler := NewLanguageHandler(chatSvc, grammarSvc, nativeSvc, translateSvc, hasKey)
	memoryHandler := NewMemoryHandler(memorySvc, hasKey)
	ttsHandler := NewTTSHandler(ttsSvc, log)
	pushHandler := NewPushHandler(store, sender, log)
	healthHandler := NewHealthHandler(store, hasKey)

	// Health & metrics
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Language features
	router.HandleFunc("/api/chat", languageHandler.Chat).Methods("POST")
	router.HandleFunc("/api/grammar-feedback", languageHandler.GrammarFeedback).Methods("POST")
	router.HandleFunc("/api/native-alternatives", languageHandler.NativeAlternatives).Methods("POST")
	router.HandleFunc("/api/translate", languageHandler.Translate).Methods("POST")

	// Memory & speech
	router.HandleFunc("/api/memory-summary", memoryHandler.Summarize).Methods("POST")
	router.HandleFunc("/api/tts", ttsHandler.Speak).Methods("POST")

	// Push notifications
	router.HandleFunc("/api/push", pushHandler.Subscribe).Methods("POST")
	router.HandleFunc("/api/push", pushHandler.Unsubscribe).Methods("DELETE")
	router.HandleFunc("/api/cron", pushHandler.Cron).Methods("POST")

	return router
}
