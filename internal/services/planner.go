package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/ports"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const defaultStopNote = "Free time"

var (
	ErrEmptyStopName   = errors.New("stop name must not be empty")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
)

// DayTimeline is a day together with its freshly computed schedule.
type DayTimeline struct {
	Day     *domain.Day
	Entries []domain.TimelineEntry
	Summary domain.TimelineSummary
}

// Planner is the application state layer around the pure timeline and
// routing functions. Reads recompute the timeline every time; writes load,
// modify and save a whole day under a single lock so concurrent edits to
// one day's order cannot interleave.
type Planner struct {
	repo    ports.ItineraryRepository
	catalog ports.LocationCatalog
	model   TravelModel
	log     *slog.Logger
	newID   func() string

	mu sync.Mutex
}

func NewPlanner(
	repo ports.ItineraryRepository,
	catalog ports.LocationCatalog,
	model TravelModel,
	log *slog.Logger,
) *Planner {
	if log == nil {
		log = slog.Default()
	}
	return &Planner{
		repo:    repo,
		catalog: catalog,
		model:   model,
		log:     log,
		newID:   uuid.NewString,
	}
}

func (p *Planner) ListDays(ctx context.Context) ([]*domain.Day, error) {
	days, err := p.repo.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

func (p *Planner) GetDay(ctx context.Context, dayID string) (*domain.Day, error) {
	day, err := p.repo.GetDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("get day %q: %w", dayID, err)
	}
	return day, nil
}

// CreateDay appends a new empty day after the last existing one.
func (p *Planner) CreateDay(ctx context.Context, startTime string) (*domain.Day, error) {
	start, err := domain.ParseClockTime(startTime)
	if err != nil {
		return nil, fmt.Errorf("create day: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	days, err := p.repo.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("create day: list days: %w", err)
	}

	number := 1
	for _, d := range days {
		if d.Number >= number {
			number = d.Number + 1
		}
	}

	day := domain.NewDay(p.newID(), number, start)
	if err := p.repo.SaveDay(ctx, day); err != nil {
		return nil, fmt.Errorf("create day: %w", err)
	}

	p.log.Info("day created", "day_id", day.ID, "number", number, "start", start.String())
	return day, nil
}

func (p *Planner) DeleteDay(ctx context.Context, dayID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.repo.DeleteDay(ctx, dayID); err != nil {
		return fmt.Errorf("delete day %q: %w", dayID, err)
	}
	return nil
}

func (p *Planner) SetStartTime(ctx context.Context, dayID, startTime string) (*domain.Day, error) {
	start, err := domain.ParseClockTime(startTime)
	if err != nil {
		return nil, fmt.Errorf("set start time: %w", err)
	}

	return p.update(ctx, dayID, "set start time", func(day *domain.Day) error {
		day.StartTime = start
		return nil
	})
}

// AddStop appends a named stop. Catalog locations bring their coordinates and
// default duration; anything else becomes an uncoordinated custom stop.
func (p *Planner) AddStop(ctx context.Context, dayID, name, note string) (*domain.Stop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("add stop: %w", ErrEmptyStopName)
	}

	stop, err := p.newStop(ctx, name, note)
	if err != nil {
		return nil, fmt.Errorf("add stop: %w", err)
	}

	_, err = p.update(ctx, dayID, "add stop", func(day *domain.Day) error {
		day.Append(stop)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("stop added", "day_id", dayID, "stop_id", stop.ID, "name", name, "known", stop.HasCoords())
	return &stop, nil
}

// newStop builds a stop, resolving name against the catalog when one is set.
func (p *Planner) newStop(ctx context.Context, name, note string) (domain.Stop, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		note = defaultStopNote
	}

	stop := domain.Stop{
		ID:              p.newID(),
		Name:            name,
		Note:            note,
		DurationMinutes: p.model.DefaultVisitMinutes,
	}

	if p.catalog != nil {
		loc, ok, err := p.catalog.Lookup(ctx, name)
		if err != nil {
			return domain.Stop{}, fmt.Errorf("lookup %q: %w", name, err)
		}
		if ok {
			coords := loc.Coords
			stop.Coords = &coords
			if loc.DefaultDuration > 0 {
				stop.DurationMinutes = loc.DefaultDuration
			}
		}
	}

	return stop, nil
}

// The itinerary a fresh install starts with.
var defaultDayStart = domain.MustParseClockTime("10:00")

var defaultDayStops = []struct {
	name     string
	note     string
	duration int
}{
	{"Kansai Airport", "Flight arrives", 60},
	{"Namba", "Hotel check-in", 60},
}

// EnsureDefaultDay creates Day 1 with the arrival stops when no days exist.
// It reports whether a day was created.
func (p *Planner) EnsureDefaultDay(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	days, err := p.repo.ListDays(ctx)
	if err != nil {
		return false, fmt.Errorf("default day: list days: %w", err)
	}
	if len(days) > 0 {
		return false, nil
	}

	day := domain.NewDay(p.newID(), 1, defaultDayStart)
	for _, s := range defaultDayStops {
		stop, err := p.newStop(ctx, s.name, s.note)
		if err != nil {
			return false, fmt.Errorf("default day: %w", err)
		}
		stop.DurationMinutes = s.duration
		day.Append(stop)
	}

	if err := p.repo.SaveDay(ctx, day); err != nil {
		return false, fmt.Errorf("default day: %w", err)
	}

	p.log.Info("default day created", "day_id", day.ID, "stops", len(day.Stops))
	return true, nil
}

func (p *Planner) RemoveStop(ctx context.Context, dayID, stopID string) (*domain.Day, error) {
	return p.update(ctx, dayID, "remove stop", func(day *domain.Day) error {
		return day.Remove(stopID)
	})
}

// MoveStop swaps the stop at index with its neighbour; moves past either end change nothing.
func (p *Planner) MoveStop(ctx context.Context, dayID string, index int, dir domain.MoveDirection) (*domain.Day, error) {
	return p.update(ctx, dayID, "move stop", func(day *domain.Day) error {
		_, err := day.Move(index, dir)
		return err
	})
}

func (p *Planner) SetStopDuration(ctx context.Context, dayID, stopID string, minutes int) (*domain.Day, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("set stop duration: %w", ErrInvalidDuration)
	}

	return p.update(ctx, dayID, "set stop duration", func(day *domain.Day) error {
		return day.SetDuration(stopID, minutes)
	})
}

// Timeline recomputes the schedule of the day from its stored state.
func (p *Planner) Timeline(ctx context.Context, dayID string) (*DayTimeline, error) {
	day, err := p.repo.GetDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("timeline for day %q: %w", dayID, err)
	}

	return p.timelineFor(day), nil
}

func (p *Planner) timelineFor(day *domain.Day) *DayTimeline {
	entries := BuildTimeline(day, p.model)
	return &DayTimeline{
		Day:     day,
		Entries: entries,
		Summary: SummarizeTimeline(day, entries, p.model),
	}
}

// Optimize reorders the day with OptimizeRoute and stores the new order.
// ErrTooFewStops is returned unchanged and nothing is written.
func (p *Planner) Optimize(ctx context.Context, dayID string) (*DayTimeline, error) {
	var before, after float64

	day, err := p.update(ctx, dayID, "optimize", func(day *domain.Day) error {
		optimized, err := OptimizeRoute(day.Stops)
		if err != nil {
			return err
		}
		before = RouteDistance(day.Stops)
		after = RouteDistance(optimized)
		return day.ReplaceStops(optimized)
	})
	if err != nil {
		return nil, err
	}

	p.log.Info("route optimized", "day_id", dayID, "stops", len(day.Stops), "distance_before", before, "distance_after", after)
	return p.timelineFor(day), nil
}

func (p *Planner) SearchLocations(ctx context.Context, query string) ([]domain.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" || p.catalog == nil {
		return []domain.Location{}, nil
	}

	locs, err := p.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search locations %q: %w", query, err)
	}
	return locs, nil
}

// update loads a day, applies fn and saves the result under the write lock.
// Nothing is saved when fn fails.
func (p *Planner) update(ctx context.Context, dayID, op string, fn func(*domain.Day) error) (*domain.Day, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	day, err := p.repo.GetDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("%s: get day %q: %w", op, dayID, err)
	}

	if err := fn(day); err != nil {
		return nil, fmt.Errorf("%s: day %q: %w", op, dayID, err)
	}

	if err := p.repo.SaveDay(ctx, day); err != nil {
		return nil, fmt.Errorf("%s: save day %q: %w", op, dayID, err)
	}

	return day, nil
}
