package main

import (
	"database/sql"
	"itinerary-planner-service/internal/adapters/repositories"
	"itinerary-planner-service/internal/config"
	"itinerary-planner-service/internal/platform/db"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// dbtool prepares a Postgres database: schema plus location catalog seed.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/locations.json")
	if err := initAndSeed(log, conn, seedPath); err != nil {
		log.Error("dbtool failed", "err", err)
		conn.Close()
		os.Exit(1)
	}
}

func initAndSeed(log *slog.Logger, conn *sql.DB, seedPath string) error {
	log.Info("initializing database schema")
	if err := repositories.InitSchema(conn, repositories.Postgres); err != nil {
		return err
	}
	log.Info("schema ready")

	log.Info("seeding location catalog", "path", seedPath)
	if err := repositories.SeedFromJSON(conn, repositories.Postgres, seedPath); err != nil {
		return err
	}
	log.Info("seeding complete")

	return nil
}
