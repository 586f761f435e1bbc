package domain

// A known place on the map with its default visit length.
type Location struct {
	Name            string      `json:"name"`
	Coords          Coordinates `json:"coords"`
	Area            string      `json:"area"`
	DefaultDuration int         `json:"default_duration"`
}
