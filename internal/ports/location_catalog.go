package ports

import (
	"context"
	"itinerary-planner-service/internal/domain"
)

// Port: lookup of known places and their map coordinates.
type LocationCatalog interface {
	// Return the location with the exact name; ok is false when unknown.
	Lookup(ctx context.Context, name string) (loc domain.Location, ok bool, err error)
	// Return locations whose name contains query, ordered by name.
	Search(ctx context.Context, query string) ([]domain.Location, error)
}
