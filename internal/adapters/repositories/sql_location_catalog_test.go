package repositories

import (
	"context"
	"testing"
)

const seedJSON = `[
  {"name": "Kansai Airport", "x": 20, "y": 95, "area": "Gateway", "default_duration": 60},
  {"name": "Namba", "x": 50, "y": 60, "area": "Minami", "default_duration": 120},
  {"name": "Namba Parks", "x": 49, "y": 62, "area": "Minami", "default_duration": 90},
  {"name": "Umeda Sky Building", "x": 45, "y": 18, "area": "Kita", "default_duration": 60}
]`

func newTestCatalog(t *testing.T) *SQLLocationCatalog {
	t.Helper()

	repo := openTestDB(t)
	if err := SeedFromJSON(repo.DB, Sqlite, writeSeedFile(t, seedJSON)); err != nil {
		t.Fatalf("SeedFromJSON() error = %v", err)
	}
	return NewSQLLocationCatalog(repo.DB, Sqlite)
}

func TestSQLLocationCatalog_Lookup(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	loc, ok, err := catalog.Lookup(ctx, " namba ")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Fatalf("Lookup(namba) ok = false, want true")
	}
	if loc.Name != "Namba" || loc.Coords.X != 50 || loc.Coords.Y != 60 || loc.DefaultDuration != 120 {
		t.Fatalf("Lookup(namba) = %+v", loc)
	}

	_, ok, err = catalog.Lookup(ctx, "Grandma's house")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ok {
		t.Fatalf("Lookup(unknown) ok = true, want false")
	}
}

func TestSQLLocationCatalog_Search(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	got, err := catalog.Search(ctx, "NAMBA")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Search(NAMBA)) = %d, want 2", len(got))
	}
	if got[0].Name != "Namba" || got[1].Name != "Namba Parks" {
		t.Fatalf("Search order = [%s %s], want [Namba, Namba Parks]", got[0].Name, got[1].Name)
	}

	got, err = catalog.Search(ctx, "%")
	if err != nil {
		t.Fatalf("Search(%%) error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(Search(%%)) = %d, want 0", len(got))
	}
}

func TestSeedFromJSON_IsIdempotent(t *testing.T) {
	catalog := newTestCatalog(t)

	if err := SeedFromJSON(catalog.DB, Sqlite, writeSeedFile(t, seedJSON)); err != nil {
		t.Fatalf("second SeedFromJSON() error = %v", err)
	}

	var n int
	if err := catalog.DB.QueryRow(`SELECT COUNT(*) FROM locations;`).Scan(&n); err != nil {
		t.Fatalf("count locations: %v", err)
	}
	if n != 4 {
		t.Fatalf("locations = %d, want 4", n)
	}
}

func TestLoadLocationSeeds_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"empty name":   `[{"name": " ", "x": 1, "y": 1, "area": "", "default_duration": 30}]`,
		"out of range": `[{"name": "Far", "x": 101, "y": 1, "area": "", "default_duration": 30}]`,
		"no duration":  `[{"name": "Zero", "x": 1, "y": 1, "area": "", "default_duration": 0}]`,
	}

	for name, body := range cases {
		if _, err := LoadLocationSeeds(writeSeedFile(t, body)); err == nil {
			t.Fatalf("%s: LoadLocationSeeds() error = nil, want error", name)
		}
	}
}
