package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clozereader/internal/config"
	"clozereader/internal/corpus"
	"clozereader/internal/database"
	"clozereader/internal/game"
	"clozereader/internal/handlers"
	"clozereader/internal/hints"
	"clozereader/internal/llm"
	"clozereader/internal/passage"
	"clozereader/internal/quality"
	"clozereader/internal/repository"
	"clozereader/internal/security"
	"clozereader/internal/selector"
	"clozereader/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed and load the word denylist
	if err := db.SeedDenylist(); err != nil {
		log.Printf("Warning: Failed to seed denylist: %v", err)
	}
	denylistWords, err := db.LoadDenylistWords()
	if err != nil {
		log.Fatalf("Failed to load denylist: %v", err)
	}
	denylist := selector.NewDenylist(denylistWords)

	// Quality thresholds: tuned defaults, optional YAML override
	thresholds := quality.DefaultThresholds()
	if cfg.QualityConfigPath != "" {
		thresholds, err = quality.LoadThresholds(cfg.QualityConfigPath)
		if err != nil {
			log.Fatalf("Failed to load quality thresholds: %v", err)
		}
		log.Printf("Quality thresholds loaded from %s", cfg.QualityConfigPath)
	}
	scorer := quality.NewScorer(thresholds)

	// Generative-text provider, wrapped with retry and rate limiting. With
	// no API key the stub keeps the game playable on the deterministic
	// fallback paths.
	var provider llm.Provider
	if cfg.LLMAPIKey != "" {
		openai := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
		resilient := llm.NewResilientProvider(openai, llm.DefaultResilientConfig())
		defer resilient.Close()
		provider = resilient
		log.Printf("Generative-text provider configured (model: %s)", cfg.LLMModel)
	} else {
		provider = llm.NewStubProvider()
		log.Println("No LLM API key set; running on deterministic selection only")
	}

	corpusClient := corpus.NewClient(cfg.CorpusBaseURL, rand.New(rand.NewSource(time.Now().UnixNano())))

	// Each game session gets its own engine; extraction and fallback
	// selection keep per-engine randomness, and the hint tracker's
	// conversation state dies with the session.
	newEngine := func() *game.Engine {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		sel := selector.New(
			selector.NewGenerative(provider, denylist),
			selector.NewManual(rng, denylist),
		)
		return game.NewEngine(game.Deps{
			Documents:    corpusClient,
			Extractor:    passage.NewExtractor(scorer, rng, passage.DefaultConfig()),
			Selector:     sel,
			Hints:        hints.NewTracker(provider),
			BatchTimeout: cfg.SelectionTimeout,
		})
	}

	// Leaderboard wiring
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	signer := service.NewOutcomeSigner(cfg.LeaderboardSecret, service.DefaultOutcomeTTL)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, signer)

	// Session store with background eviction
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions := handlers.NewSessionStore(cfg.SessionTTL)
	sessions.StartCleanup(ctx, 10*time.Minute)

	// Initialize handlers
	gameHandler := handlers.NewGameHandler(sessions, newEngine, leaderboardService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files (the web client)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticPath))))

	// Game routes
	mux.HandleFunc("POST /api/game", gameHandler.Create)
	mux.HandleFunc("GET /api/game/{id}", gameHandler.Current)
	mux.HandleFunc("POST /api/game/{id}/submit", gameHandler.Submit)
	mux.HandleFunc("POST /api/game/{id}/next", gameHandler.Next)
	mux.HandleFunc("POST /api/game/{id}/hint", gameHandler.Hint)
	mux.HandleFunc("POST /api/game/{id}/end", gameHandler.End)

	// Leaderboard routes
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.Top)
	mux.HandleFunc("POST /api/leaderboard", leaderboardHandler.Submit)

	// Wrap with rate limiting and logging middleware
	limiter := security.NewRateLimiter(60, time.Minute)
	handler := handlers.Logging(handlers.RateLimit(limiter)(mux))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
