package domain

// Represents a single itinerary entry.
// Coords is nil when the location is not in the catalog (a custom place),
// in which case travel legs touching this stop use the fallback estimate.
type Stop struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Note            string       `json:"note"`
	Coords          *Coordinates `json:"coords,omitempty"`
	DurationMinutes int          `json:"duration"`
}

func (s Stop) HasCoords() bool { return s.Coords != nil }

// Return a deep copy so the caller's coordinates are never shared.
func (s Stop) Clone() Stop {
	s.Coords = s.Coords.Clone()
	return s
}

// Copy a stop sequence without aliasing the input slice or its coordinates.
func CloneStops(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	for i, s := range stops {
		out[i] = s.Clone()
	}
	return out
}
