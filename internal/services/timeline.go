package services

import (
	"itinerary-planner-service/internal/domain"
)

// BuildTimeline derives arrival and departure times for every stop of the day.
//
// The clock starts at the day's start time. The first stop has no travel leg;
// each later stop arrives after the previous departure plus the estimated leg.
// Times wrap at midnight without a day marker. The function is pure and never
// retains or mutates the input.
func BuildTimeline(day *domain.Day, model TravelModel) []domain.TimelineEntry {
	if day == nil || len(day.Stops) == 0 {
		return []domain.TimelineEntry{}
	}

	entries := make([]domain.TimelineEntry, 0, len(day.Stops))
	clock := day.StartTime

	for i, stop := range day.Stops {
		travel := 0
		if i > 0 {
			travel = model.legMinutes(day.Stops[i-1], stop)
			clock = clock.AddMinutes(travel)
		}

		arrival := clock
		departure := arrival.AddMinutes(model.visitMinutes(stop))
		clock = departure

		entries = append(entries, domain.TimelineEntry{
			Stop:               stop.Clone(),
			ArrivalTime:        arrival,
			DepartureTime:      departure,
			TravelTimeFromPrev: travel,
		})
	}

	return entries
}

// SummarizeTimeline totals travel and visit minutes for a built timeline.
func SummarizeTimeline(day *domain.Day, entries []domain.TimelineEntry, model TravelModel) domain.TimelineSummary {
	summary := domain.TimelineSummary{}
	if day == nil {
		return summary
	}

	summary.StartTime = day.StartTime
	summary.EndTime = day.StartTime
	if len(entries) == 0 {
		return summary
	}

	for _, e := range entries {
		summary.TotalTravelMinutes += e.TravelTimeFromPrev
		summary.TotalVisitMinutes += model.visitMinutes(e.Stop)
	}

	summary.EndTime = entries[len(entries)-1].DepartureTime

	// Unwrapped end of day in minutes after midnight.
	unwrapped := day.StartTime.Hour()*60 + day.StartTime.Minute() +
		summary.TotalTravelMinutes + summary.TotalVisitMinutes
	summary.CrossesMidnight = unwrapped >= 24*60

	return summary
}
