package services

import (
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
)

var ErrTooFewStops = errors.New("optimize route: at least 3 stops are required")

// OptimizeRoute reorders stops using a greedy nearest-neighbor heuristic.
//
// The first stop stays first. At each step the nearest coordinated stop to the
// current position is chosen; ties keep the earlier stop. From an uncoordinated
// position the first coordinated stop in order is taken. Stops without
// coordinates that are never reached go last in their original order.
// The result is a new slice; the input is never mutated. The route is not
// guaranteed to be globally shortest.
//
// With two or fewer stops the call is refused with ErrTooFewStops and an
// unchanged copy of the input is returned.
func OptimizeRoute(stops []domain.Stop) ([]domain.Stop, error) {
	if len(stops) <= 2 {
		return domain.CloneStops(stops), fmt.Errorf("%w (got %d)", ErrTooFewStops, len(stops))
	}

	// Indices into stops that have not been placed yet, in original order.
	remaining := make([]int, 0, len(stops)-1)
	for i := 1; i < len(stops); i++ {
		remaining = append(remaining, i)
	}

	optimized := make([]domain.Stop, 0, len(stops))
	optimized = append(optimized, stops[0].Clone())
	current := stops[0]

	for len(remaining) > 0 {
		withCoords := make([]int, 0, len(remaining))
		withoutCoords := make([]int, 0, len(remaining))
		for _, idx := range remaining {
			if stops[idx].HasCoords() {
				withCoords = append(withCoords, idx)
			} else {
				withoutCoords = append(withoutCoords, idx)
			}
		}

		if len(withCoords) == 0 {
			for _, idx := range withoutCoords {
				optimized = append(optimized, stops[idx].Clone())
			}
			break
		}

		next := withCoords[0]
		// Without a current position there is nothing to measure from.
		if current.HasCoords() {
			minDist := Distance(current.Coords, stops[next].Coords)
			for _, idx := range withCoords[1:] {
				// Strict comparison keeps the earliest stop on ties.
				if d := Distance(current.Coords, stops[idx].Coords); d < minDist {
					minDist = d
					next = idx
				}
			}
		}

		optimized = append(optimized, stops[next].Clone())
		remaining = removeIndex(remaining, next)
		current = stops[next]
	}

	return optimized, nil
}

// Remove the value v from an ordered index set, preserving order.
func removeIndex(set []int, v int) []int {
	for i, idx := range set {
		if idx == v {
			return append(set[:i], set[i+1:]...)
		}
	}
	return set
}

// RouteDistance sums map distance over consecutive coordinated legs.
func RouteDistance(stops []domain.Stop) float64 {
	total := 0.0
	for i := 1; i < len(stops); i++ {
		total += Distance(stops[i-1].Coords, stops[i].Coords)
	}
	return total
}
