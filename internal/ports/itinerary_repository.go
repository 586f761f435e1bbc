package ports

import (
	"context"
	"errors"
	"itinerary-planner-service/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Port: the authoritative store for days and their ordered stops.
type ItineraryRepository interface {
	// Return all days ordered by day number, each with its stops in order.
	ListDays(ctx context.Context) ([]*domain.Day, error)
	// Return one day with its stops, or ErrNotFound.
	GetDay(ctx context.Context, dayID string) (*domain.Day, error)
	// Insert or fully replace a day and its stop order.
	SaveDay(ctx context.Context, day *domain.Day) error
	// Remove a day and all of its stops, or ErrNotFound.
	DeleteDay(ctx context.Context, dayID string) error
}
