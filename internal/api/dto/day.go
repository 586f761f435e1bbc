package dto

import "itinerary-planner-service/internal/domain"

type CreateDayRequest struct {
	StartTime string `json:"start_time"`
}

type StartTimeRequest struct {
	StartTime string `json:"start_time"`
}

type AddStopRequest struct {
	Name string `json:"name"`
	Note string `json:"note"`
}

type MoveStopRequest struct {
	Direction string `json:"direction"`
}

type DurationRequest struct {
	Minutes int `json:"minutes"`
}

type CoordinatesResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type StopResponse struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Note     string               `json:"note"`
	Coords   *CoordinatesResponse `json:"coords"`
	Duration int                  `json:"duration"`
}

type DayResponse struct {
	ID        string         `json:"id"`
	Number    int            `json:"day"`
	StartTime string         `json:"start_time"`
	Stops     []StopResponse `json:"stops"`
}

type ListDaysResponse struct {
	Days []DayResponse `json:"days"`
}

func NewStopResponse(s domain.Stop) StopResponse {
	res := StopResponse{
		ID:       s.ID,
		Name:     s.Name,
		Note:     s.Note,
		Duration: s.DurationMinutes,
	}
	if s.Coords != nil {
		res.Coords = &CoordinatesResponse{X: s.Coords.X, Y: s.Coords.Y}
	}
	return res
}

func NewDayResponse(d *domain.Day) DayResponse {
	res := DayResponse{
		ID:        d.ID,
		Number:    d.Number,
		StartTime: d.StartTime.String(),
		Stops:     make([]StopResponse, 0, len(d.Stops)),
	}
	for _, s := range d.Stops {
		res.Stops = append(res.Stops, NewStopResponse(s))
	}
	return res
}
