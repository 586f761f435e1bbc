package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"os"
	"strings"
)

// Initialize the itinerary schema.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDaysQuery := `
	CREATE TABLE IF NOT EXISTS days (
		day_id TEXT PRIMARY KEY,
		day_number INTEGER NOT NULL,
		start_time TEXT NOT NULL
	);
	`

	createStopsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS stops (
		stop_id TEXT PRIMARY KEY,
		day_id TEXT NOT NULL REFERENCES days(day_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		note TEXT NOT NULL,
		x %[1]s,
		y %[1]s,
		duration_minutes INTEGER NOT NULL
	);
	`, dialect.floatType())

	createLocationsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		x %[1]s NOT NULL,
		y %[1]s NOT NULL,
		area TEXT NOT NULL,
		default_duration INTEGER NOT NULL
	);
	`, dialect.floatType())

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stops_day_position
	ON stops(day_id, position);
	`

	statements := []string{
		createDaysQuery,
		createStopsQuery,
		createLocationsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LocationSeed struct {
	Name            string  `json:"name"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Area            string  `json:"area"`
	DefaultDuration int     `json:"default_duration"`
}

// Read and validate catalog locations from a JSON file.
func LoadLocationSeeds(jsonPath string) ([]domain.Location, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	var data []LocationSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed locations: parse json: %w", err)
	}

	locs := make([]domain.Location, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed locations: item at index %d: name cannot be empty", i+1)
		}

		if item.X < 0 || item.X > 100 || item.Y < 0 || item.Y > 100 {
			return nil, fmt.Errorf("seed locations: %q: coordinates (%v, %v) outside 0-100", name, item.X, item.Y)
		}

		if item.DefaultDuration <= 0 {
			return nil, fmt.Errorf("seed locations: %q: invalid default duration %d", name, item.DefaultDuration)
		}

		locs = append(locs, domain.Location{
			Name:            name,
			Coords:          domain.Coordinates{X: item.X, Y: item.Y},
			Area:            strings.TrimSpace(item.Area),
			DefaultDuration: item.DefaultDuration,
		})
	}

	return locs, nil
}

// Populate the location catalog from a JSON file.
func SeedFromJSON(db *sql.DB, dialect Dialect, jsonPath string) error {
	locs, err := LoadLocationSeeds(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := dialect.rebind(`
	INSERT INTO locations (
		name,
		x,
		y,
		area,
		default_duration
	)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE
	SET x = EXCLUDED.x,
		y = EXCLUDED.y,
		area = EXCLUDED.area,
		default_duration = EXCLUDED.default_duration;
	`)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range locs {
		if _, err := stmt.Exec(l.Name, l.Coords.X, l.Coords.Y, l.Area, l.DefaultDuration); err != nil {
			return fmt.Errorf("seed locations: insert %q: %w", l.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}
