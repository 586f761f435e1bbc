package domain

// Immutable position on the stylized 0-100 map plane.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Return a copy of c that callers can keep without aliasing the stop's value.
func (c *Coordinates) Clone() *Coordinates {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
