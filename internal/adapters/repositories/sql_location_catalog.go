package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"strings"
)

const maxSearchResults = 20

// SQL backed catalog mapping place names to map coordinates.
// Names match case-insensitively.
type SQLLocationCatalog struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLLocationCatalog(db *sql.DB, dialect Dialect) *SQLLocationCatalog {
	return &SQLLocationCatalog{DB: db, Dialect: dialect}
}

// Fetch the location with the given name.
func (s *SQLLocationCatalog) Lookup(ctx context.Context, name string) (_ domain.Location, _ bool, err error) {
	defer obs.Time(ctx, "location.catalog.Lookup")(&err)

	if s.DB == nil {
		return domain.Location{}, false, errors.New("location catalog: DB is nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Location{}, false, nil
	}

	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(`
	SELECT
		name,
		x,
		y,
		area,
		default_duration
	FROM locations
	WHERE LOWER(name) = LOWER(?);
	`), name)

	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Location{}, false, nil
		}
		return domain.Location{}, false, fmt.Errorf("lookup location %q: %w", name, err)
	}

	return loc, true, nil
}

// Fetch up to maxSearchResults locations whose name contains query.
func (s *SQLLocationCatalog) Search(ctx context.Context, query string) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "location.catalog.Search")(&err)

	if s.DB == nil {
		return nil, errors.New("location catalog: DB is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Location{}, nil
	}

	// LIKE wildcards typed by the user are matched literally.
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(fmt.Sprintf(`
	SELECT
		name,
		x,
		y,
		area,
		default_duration
	FROM locations
	WHERE LOWER(name) LIKE ? ESCAPE '\'
	ORDER BY name
	LIMIT %d;
	`, maxSearchResults)), pattern)
	if err != nil {
		return nil, fmt.Errorf("search locations: query locations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Location, 0, 8)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("search locations: %w", err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search locations: row iteration: %w", err)
	}

	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanLocation(row scanner) (domain.Location, error) {
	var loc domain.Location
	if err := row.Scan(&loc.Name, &loc.Coords.X, &loc.Coords.Y, &loc.Area, &loc.DefaultDuration); err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

var _ ports.LocationCatalog = (*SQLLocationCatalog)(nil)
