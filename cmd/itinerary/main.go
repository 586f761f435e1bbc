package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"itinerary-planner-service/internal/config"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/render"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"os"
)

const usage = `usage: itinerary [-travel-model FILE] <command> <day.json>

commands:
  timeline   print the day's computed schedule
  optimize   reorder stops by nearest neighbour and print the new schedule
`

const defaultStartTime = "09:00"

// dayFile is the on-disk shape of a single day. A missing start_time means 09:00.
type dayFile struct {
	Day       int               `json:"day"`
	StartTime *domain.ClockTime `json:"start_time"`
	Stops     []domain.Stop     `json:"stops"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("itinerary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelPath := fs.String("travel-model", config.Get("TRAVEL_MODEL_PATH", "travel_model.yaml"), "optional YAML travel model")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rest := fs.Args()
	if len(rest) != 2 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	model, err := config.LoadTravelModel(*modelPath)
	if err != nil {
		log.Error("load travel model", "err", err)
		return 1
	}

	day, err := readDay(rest[1])
	if err != nil {
		log.Error("read day", "err", err)
		return 1
	}

	title := fmt.Sprintf("Day %d", day.Number)

	switch rest[0] {
	case "timeline":
	case "optimize":
		before := services.RouteDistance(day.Stops)
		optimized, err := services.OptimizeRoute(day.Stops)
		if errors.Is(err, services.ErrTooFewStops) {
			log.Warn("nothing to optimize", "stops", len(day.Stops))
		} else if err != nil {
			log.Error("optimize", "err", err)
			return 1
		} else {
			day.Stops = optimized
			fmt.Fprintln(stdout, render.RouteChange(before, services.RouteDistance(optimized)))
			title += " (optimized)"
		}
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}

	entries := services.BuildTimeline(day, model)
	fmt.Fprintln(stdout, render.Timeline(title, entries, services.SummarizeTimeline(day, entries, model)))
	return 0
}

func readDay(path string) (*domain.Day, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	var f dayFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	number := f.Day
	if number <= 0 {
		number = 1
	}

	start := domain.MustParseClockTime(defaultStartTime)
	if f.StartTime != nil {
		start = *f.StartTime
	}

	day := domain.NewDay(path, number, start)
	for i, s := range f.Stops {
		if s.ID == "" {
			s.ID = fmt.Sprintf("stop-%d", i+1)
		}
		day.Append(s)
	}
	return day, nil
}
