package domain

import (
	"errors"
	"fmt"
)

var (
	ErrStopNotFound     = errors.New("stop not found")
	ErrInvalidDirection = errors.New("move direction must be up or down")
)

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// Day aggregate holding an ordered stop sequence and its start time.
type Day struct {
	ID        string
	Number    int
	StartTime ClockTime
	Stops     []Stop
}

func NewDay(id string, number int, start ClockTime) *Day {
	return &Day{
		ID:        id,
		Number:    number,
		StartTime: start,
		Stops:     []Stop{},
	}
}

// Append a stop to the end of the day.
func (d *Day) Append(stop Stop) {
	d.Stops = append(d.Stops, stop)
}

// Remove the stop with the given id.
func (d *Day) Remove(stopID string) error {
	for i, s := range d.Stops {
		if s.ID == stopID {
			d.Stops = append(d.Stops[:i:i], d.Stops[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove stop %q from day %s: %w", stopID, d.ID, ErrStopNotFound)
}

// Swap the stop at index with its neighbour. Moves past either end are no-ops.
func (d *Day) Move(index int, dir MoveDirection) (bool, error) {
	switch dir {
	case MoveUp:
		if index <= 0 || index >= len(d.Stops) {
			return false, nil
		}
		d.Stops[index], d.Stops[index-1] = d.Stops[index-1], d.Stops[index]
	case MoveDown:
		if index < 0 || index >= len(d.Stops)-1 {
			return false, nil
		}
		d.Stops[index], d.Stops[index+1] = d.Stops[index+1], d.Stops[index]
	default:
		return false, fmt.Errorf("move stop: %q: %w", dir, ErrInvalidDirection)
	}
	return true, nil
}

// Set the visit duration of one stop.
func (d *Day) SetDuration(stopID string, minutes int) error {
	for i := range d.Stops {
		if d.Stops[i].ID == stopID {
			d.Stops[i].DurationMinutes = minutes
			return nil
		}
	}
	return fmt.Errorf("set duration of stop %q in day %s: %w", stopID, d.ID, ErrStopNotFound)
}

// Replace the stop order. The new order must contain exactly the same stop ids.
func (d *Day) ReplaceStops(order []Stop) error {
	if len(order) != len(d.Stops) {
		return fmt.Errorf("replace stops: got %d stops, day %s has %d", len(order), d.ID, len(d.Stops))
	}

	ids := make(map[string]struct{}, len(d.Stops))
	for _, s := range d.Stops {
		ids[s.ID] = struct{}{}
	}
	for _, s := range order {
		if _, ok := ids[s.ID]; !ok {
			return fmt.Errorf("replace stops: %q: %w", s.ID, ErrStopNotFound)
		}
		delete(ids, s.ID)
	}

	d.Stops = CloneStops(order)
	return nil
}
