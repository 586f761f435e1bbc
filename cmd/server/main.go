package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/adapters/cache"
	"itinerary-planner-service/internal/adapters/gemini"
	"itinerary-planner-service/internal/adapters/repositories"
	"itinerary-planner-service/internal/api"
	"itinerary-planner-service/internal/config"
	"itinerary-planner-service/internal/platform/db"
	"itinerary-planner-service/internal/ports"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis, Gemini) behind ports and starts the HTTP server.
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	if err := run(log, config.Load()); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, cfg config.Config) error {
	ctx := context.Background()

	model, err := config.LoadTravelModel(cfg.TravelModelPath)
	if err != nil {
		return err
	}
	log.Info("travel model loaded",
		"base_minutes", model.BaseMinutes,
		"minutes_per_unit", model.MinutesPerUnit,
		"fallback_minutes", model.FallbackMinutes,
		"default_visit_minutes", model.DefaultVisitMinutes,
	)

	conn, dialect, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed the location catalog on startup.
	if err := initAndSeed(conn, dialect, cfg.SeedPath); err != nil {
		return err
	}
	log.Info("store ready", "dialect", dialect.String())

	repo := repositories.NewSQLItineraryRepository(conn, dialect)
	catalog := repositories.NewSQLLocationCatalog(conn, dialect)
	planner := services.NewPlanner(repo, catalog, model, log)

	if cfg.SeedDefaultDay {
		if _, err := planner.EnsureDefaultDay(ctx); err != nil {
			return err
		}
	}

	advisor, closeAdvisor, err := newAdvisor(ctx, cfg, planner, log)
	if err != nil {
		return err
	}
	defer closeAdvisor()

	router := api.NewRouter(planner, advisor, api.RouterOptions{
		Token:          cfg.APIToken,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		DB:             conn,
	}, log)

	// Suggestion endpoints wait on an external model, so writes get a generous timeout.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// openStore uses Postgres when DATABASE_URL is set and the embedded SQLite file otherwise.
func openStore(cfg config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		return conn, repositories.Postgres, err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, repositories.Sqlite, fmt.Errorf("create sqlite directory %q: %w", dir, err)
		}
	}

	conn, err := db.OpenSqlite(cfg.DBPath)
	return conn, repositories.Sqlite, err
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newAdvisor returns nil when no text generator is configured. A Redis outage
// only disables caching.
func newAdvisor(ctx context.Context, cfg config.Config, planner *services.Planner, log *slog.Logger) (*services.Advisor, func(), error) {
	noop := func() {}

	var gen ports.TextGenerator
	switch {
	case cfg.GeminiAPIKey != "":
		client, err := gemini.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		gen = client
	case cfg.OfflineAdvisor:
		log.Warn("using offline canned suggestions")
		gen = gemini.NewMockTextGenerator(gemini.OfflineReplies())
	default:
		log.Info("GEMINI_API_KEY not set, suggestion endpoints disabled")
		return nil, noop, nil
	}

	if cfg.RedisURL == "" {
		return services.NewAdvisor(gen, nil, planner, cfg.Region, log), noop, nil
	}

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, suggestion cache disabled", "err", err)
		return services.NewAdvisor(gen, nil, planner, cfg.Region, log), noop, nil
	}

	suggestionCache := cache.NewRedisSuggestionCache(client, cfg.SuggestionTTL)
	closeFn := func() { _ = client.Close() }
	return services.NewAdvisor(gen, suggestionCache, planner, cfg.Region, log), closeFn, nil
}
