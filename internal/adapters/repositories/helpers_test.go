package repositories

import (
	"itinerary-planner-service/internal/platform/db"
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLItineraryRepository {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := InitSchema(conn, Sqlite); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return NewSQLItineraryRepository(conn, Sqlite)
}

func writeSeedFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "locations.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}
