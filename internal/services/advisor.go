package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/ports"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

var ErrMalformedSuggestion = errors.New("suggestion service returned malformed data")

const (
	cacheKindSpotInfo = "info"
	cacheKindFood     = "food"
)

type NextStopSuggestion struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

type FoodRecommendation struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

// SpotGuide combines a spot description with nearby food. Either half may be
// empty when its request failed.
type SpotGuide struct {
	Name        string
	Description string
	Food        []FoodRecommendation
}

// Advisor turns itinerary state into prompts for the generative-language
// service and decodes the answers. Generated descriptions and food lists are
// cached per spot; cache failures never fail a request.
type Advisor struct {
	gen     ports.TextGenerator
	cache   ports.SuggestionCache
	planner *Planner
	region  string
	log     *slog.Logger
}

func NewAdvisor(gen ports.TextGenerator, cache ports.SuggestionCache, planner *Planner, region string, log *slog.Logger) *Advisor {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(region) == "" {
		region = "Osaka"
	}
	return &Advisor{gen: gen, cache: cache, planner: planner, region: region, log: log}
}

// NextStops asks for three stops that fit after the last stop of the day.
func (a *Advisor) NextStops(ctx context.Context, dayID string) ([]NextStopSuggestion, error) {
	day, err := a.planner.GetDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("next stops: %w", err)
	}

	names := make([]string, 0, len(day.Stops))
	for _, s := range day.Stops {
		names = append(names, s.Name)
	}

	prompt := fmt.Sprintf(
		"I am travelling in %s. Today's plan: %s. Based on the last stop, recommend 3 charming or must-see "+
			"spots or shops that are on the way. Reply with plain JSON only, no markdown: "+
			`[{"name":"name","reason":"very short reason","type":"cafe/spot/shop"}]`,
		a.region, strings.Join(names, ", "),
	)

	text, err := a.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("next stops: generate: %w", err)
	}

	var out []NextStopSuggestion
	if err := decodeJSONAnswer(text, &out); err != nil {
		return nil, fmt.Errorf("next stops: %w", err)
	}
	return out, nil
}

// SpotInfo returns a short travel-journal style description of a spot.
func (a *Advisor) SpotInfo(ctx context.Context, spot string) (string, error) {
	spot = strings.TrimSpace(spot)
	if spot == "" {
		return "", fmt.Errorf("spot info: %w", ErrEmptyStopName)
	}

	if cached, ok := a.cached(ctx, cacheKindSpotInfo, spot); ok {
		return cached, nil
	}

	prompt := fmt.Sprintf(
		"In the voice of a cute travel journal, introduce the highlights of the %s spot %q in under 100 words.",
		a.region, spot,
	)

	text, err := a.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("spot info %q: generate: %w", spot, err)
	}

	text = strings.TrimSpace(text)
	a.store(ctx, cacheKindSpotInfo, spot, text)
	return text, nil
}

// NearbyFood returns three cafes or restaurants near a spot.
func (a *Advisor) NearbyFood(ctx context.Context, spot string) ([]FoodRecommendation, error) {
	spot = strings.TrimSpace(spot)
	if spot == "" {
		return nil, fmt.Errorf("nearby food: %w", ErrEmptyStopName)
	}

	text, ok := a.cached(ctx, cacheKindFood, spot)
	if !ok {
		prompt := fmt.Sprintf(
			"Recommend 3 cute cafes or highly rated places to eat near %q in %s. Reply with plain JSON only, "+
				`no markdown: [{"name":"shop name","type":"kind","rating":"4.5","comment":"short cute review"}]`,
			spot, a.region,
		)

		var err error
		text, err = a.gen.GenerateText(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("nearby food %q: generate: %w", spot, err)
		}
	}

	var out []FoodRecommendation
	if err := decodeJSONAnswer(text, &out); err != nil {
		return nil, fmt.Errorf("nearby food %q: %w", spot, err)
	}

	if !ok {
		a.store(ctx, cacheKindFood, spot, text)
	}
	return out, nil
}

// SpotGuide fetches the description and food list concurrently.
// A failing half is logged and left empty; only cancellation fails the guide.
func (a *Advisor) SpotGuide(ctx context.Context, spot string) (*SpotGuide, error) {
	spot = strings.TrimSpace(spot)
	if spot == "" {
		return nil, fmt.Errorf("spot guide: %w", ErrEmptyStopName)
	}

	g, gCtx := errgroup.WithContext(ctx)
	guide := &SpotGuide{Name: spot}

	g.Go(func() error {
		desc, err := a.SpotInfo(gCtx, spot)
		if err != nil {
			a.log.Warn("spot guide: description failed", "spot", spot, "err", err)
			return nil
		}
		guide.Description = desc
		return nil
	})

	g.Go(func() error {
		food, err := a.NearbyFood(gCtx, spot)
		if err != nil {
			a.log.Warn("spot guide: food failed", "spot", spot, "err", err)
			return nil
		}
		guide.Food = food
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("spot guide %q: %w", spot, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("spot guide %q: %w", spot, err)
	}

	return guide, nil
}

// Forget drops the cached description and food list of a spot so the next
// request regenerates them.
func (a *Advisor) Forget(ctx context.Context, spot string) error {
	spot = strings.TrimSpace(spot)
	if a.cache == nil || spot == "" {
		return nil
	}

	for _, kind := range []string{cacheKindSpotInfo, cacheKindFood} {
		if err := a.cache.Delete(ctx, kind, spot); err != nil {
			return fmt.Errorf("forget %q: %w", spot, err)
		}
	}
	return nil
}

func (a *Advisor) cached(ctx context.Context, kind, subject string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	v, ok, err := a.cache.Get(ctx, kind, subject)
	if err != nil {
		a.log.Warn("suggestion cache get failed", "kind", kind, "subject", subject, "err", err)
		return "", false
	}
	return v, ok
}

func (a *Advisor) store(ctx context.Context, kind, subject, value string) {
	if a.cache == nil || value == "" {
		return
	}
	if err := a.cache.Set(ctx, kind, subject, value); err != nil {
		a.log.Warn("suggestion cache set failed", "kind", kind, "subject", subject, "err", err)
	}
}

// decodeJSONAnswer strips markdown code fences from a model answer and decodes it.
func decodeJSONAnswer(text string, dst any) error {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSuggestion, err)
	}
	return nil
}
