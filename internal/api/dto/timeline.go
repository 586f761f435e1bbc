package dto

import (
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/services"
)

type TimelineEntryResponse struct {
	StopResponse
	ArrivalTime        string `json:"arrival_time"`
	DepartureTime      string `json:"departure_time"`
	TravelTimeFromPrev int    `json:"travel_time_from_prev"`
}

type TimelineSummaryResponse struct {
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	TotalTravelMinutes int    `json:"total_travel_minutes"`
	TotalVisitMinutes  int    `json:"total_visit_minutes"`
	CrossesMidnight    bool   `json:"crosses_midnight"`
}

type TimelineResponse struct {
	DayID   string                  `json:"day_id"`
	Day     int                     `json:"day"`
	Entries []TimelineEntryResponse `json:"entries"`
	Summary TimelineSummaryResponse `json:"summary"`
}

type LocationResponse struct {
	Name            string              `json:"name"`
	Coords          CoordinatesResponse `json:"coords"`
	Area            string              `json:"area"`
	DefaultDuration int                 `json:"default_duration"`
}

type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
}

func NewTimelineResponse(tl *services.DayTimeline) TimelineResponse {
	res := TimelineResponse{
		DayID:   tl.Day.ID,
		Day:     tl.Day.Number,
		Entries: make([]TimelineEntryResponse, 0, len(tl.Entries)),
		Summary: TimelineSummaryResponse{
			StartTime:          tl.Summary.StartTime.String(),
			EndTime:            tl.Summary.EndTime.String(),
			TotalTravelMinutes: tl.Summary.TotalTravelMinutes,
			TotalVisitMinutes:  tl.Summary.TotalVisitMinutes,
			CrossesMidnight:    tl.Summary.CrossesMidnight,
		},
	}
	for _, e := range tl.Entries {
		res.Entries = append(res.Entries, TimelineEntryResponse{
			StopResponse:       NewStopResponse(e.Stop),
			ArrivalTime:        e.ArrivalTime.String(),
			DepartureTime:      e.DepartureTime.String(),
			TravelTimeFromPrev: e.TravelTimeFromPrev,
		})
	}
	return res
}

func NewLocationResponse(l domain.Location) LocationResponse {
	return LocationResponse{
		Name:            l.Name,
		Coords:          CoordinatesResponse{X: l.Coords.X, Y: l.Coords.Y},
		Area:            l.Area,
		DefaultDuration: l.DefaultDuration,
	}
}
