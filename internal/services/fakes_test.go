package services

import (
	"context"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/ports"
	"sort"
	"strings"
	"sync"
)

type memRepo struct {
	mu    sync.Mutex
	days  map[string]*domain.Day
	saves int
}

func newMemRepo() *memRepo { return &memRepo{days: map[string]*domain.Day{}} }

func copyDay(d *domain.Day) *domain.Day {
	cp := *d
	cp.Stops = domain.CloneStops(d.Stops)
	return &cp
}

func (r *memRepo) ListDays(_ context.Context) ([]*domain.Day, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Day, 0, len(r.days))
	for _, d := range r.days {
		out = append(out, copyDay(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memRepo) GetDay(_ context.Context, id string) (*domain.Day, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.days[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return copyDay(d), nil
}

func (r *memRepo) SaveDay(_ context.Context, d *domain.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.days[d.ID] = copyDay(d)
	return nil
}

func (r *memRepo) DeleteDay(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.days[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.days, id)
	return nil
}

type memCatalog map[string]domain.Location

func (c memCatalog) Lookup(_ context.Context, name string) (domain.Location, bool, error) {
	l, ok := c[name]
	return l, ok, nil
}

func (c memCatalog) Search(_ context.Context, q string) ([]domain.Location, error) {
	out := []domain.Location{}
	for name, l := range c {
		if strings.Contains(name, q) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func testCatalog() memCatalog {
	return memCatalog{
		"Kansai Airport": {Name: "Kansai Airport", Coords: domain.Coordinates{X: 20, Y: 95}, Area: "Gateway", DefaultDuration: 60},
		"Namba":          {Name: "Namba", Coords: domain.Coordinates{X: 50, Y: 60}, Area: "Minami", DefaultDuration: 120},
		"Osaka Castle":   {Name: "Osaka Castle", Coords: domain.Coordinates{X: 70, Y: 45}, Area: "Castle", DefaultDuration: 150},
		"Dotonbori":      {Name: "Dotonbori", Coords: domain.Coordinates{X: 50, Y: 58}, Area: "Minami", DefaultDuration: 90},
	}
}

type fakeGenerator struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	prompts []string
}

// Answer with the first answer whose key appears in the prompt.
func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	for k, v := range g.answers {
		if strings.Contains(prompt, k) {
			return v, nil
		}
	}
	return "", nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type mapCache struct {
	mu sync.Mutex
	m  map[string]string
}

func (c *mapCache) Get(_ context.Context, kind, subject string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[kind+"|"+subject]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, kind, subject, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]string{}
	}
	c.m[kind+"|"+subject] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, kind, subject string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, kind+"|"+subject)
	return nil
}
