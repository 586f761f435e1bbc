package services

import (
	"itinerary-planner-service/internal/domain"
	"math"
)

// TravelModel is the deterministic travel-time estimate shared by the
// timeline builder and the route optimizer. It is a linear model on the
// normalized map plane, not a geographic routing estimate.
type TravelModel struct {
	// Fixed overhead added to every coordinated leg.
	BaseMinutes float64 `yaml:"base_minutes"`
	// Minutes per unit of map distance.
	MinutesPerUnit float64 `yaml:"minutes_per_unit"`
	// Used when either end of a leg has no coordinates.
	FallbackMinutes int `yaml:"fallback_minutes"`
	// Used for stops with no positive duration.
	DefaultVisitMinutes int `yaml:"default_visit_minutes"`
}

func DefaultTravelModel() TravelModel {
	return TravelModel{
		BaseMinutes:         10,
		MinutesPerUnit:      1.2,
		FallbackMinutes:     30,
		DefaultVisitMinutes: 90,
	}
}

// Distance returns the Euclidean distance between a and b, or 0 if either is absent.
func Distance(a, b *domain.Coordinates) float64 {
	if a == nil || b == nil {
		return 0
	}
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// TravelTime returns round(base + distance*scale) minutes, or 0 if either coordinate is absent.
func (m TravelModel) TravelTime(a, b *domain.Coordinates) int {
	if a == nil || b == nil {
		return 0
	}
	return int(math.Round(m.BaseMinutes + Distance(a, b)*m.MinutesPerUnit))
}

// Leg minutes between two consecutive stops, applying the fallback for uncoordinated ends.
func (m TravelModel) legMinutes(prev, next domain.Stop) int {
	if prev.HasCoords() && next.HasCoords() {
		return m.TravelTime(prev.Coords, next.Coords)
	}
	return m.FallbackMinutes
}

func (m TravelModel) visitMinutes(s domain.Stop) int {
	if s.DurationMinutes > 0 {
		return s.DurationMinutes
	}
	return m.DefaultVisitMinutes
}
