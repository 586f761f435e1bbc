package handlers

import (
	"itinerary-planner-service/internal/api/dto"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// DayHandler exposes the itinerary editing endpoints.
type DayHandler struct {
	Planner *services.Planner
	Log     *slog.Logger
}

func (h *DayHandler) List(w http.ResponseWriter, r *http.Request) {
	days, err := h.Planner.ListDays(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Log, "list days", err)
		return
	}

	res := dto.ListDaysResponse{Days: make([]dto.DayResponse, 0, len(days))}
	for _, d := range days {
		res.Days = append(res.Days, dto.NewDayResponse(d))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *DayHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDayRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := strings.TrimSpace(req.StartTime)
	if start == "" {
		start = "09:00"
	}

	day, err := h.Planner.CreateDay(r.Context(), start)
	if err != nil {
		writeServiceError(w, r, h.Log, "create day", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewDayResponse(day))
}

func (h *DayHandler) Get(w http.ResponseWriter, r *http.Request) {
	day, err := h.Planner.GetDay(r.Context(), pathParam(r, "dayID"))
	if err != nil {
		writeServiceError(w, r, h.Log, "get day", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDayResponse(day))
}

func (h *DayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteDay(r.Context(), pathParam(r, "dayID")); err != nil {
		writeServiceError(w, r, h.Log, "delete day", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DayHandler) SetStartTime(w http.ResponseWriter, r *http.Request) {
	var req dto.StartTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	day, err := h.Planner.SetStartTime(r.Context(), pathParam(r, "dayID"), req.StartTime)
	if err != nil {
		writeServiceError(w, r, h.Log, "set start time", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDayResponse(day))
}

func (h *DayHandler) AddStop(w http.ResponseWriter, r *http.Request) {
	var req dto.AddStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stop, err := h.Planner.AddStop(r.Context(), pathParam(r, "dayID"), req.Name, req.Note)
	if err != nil {
		writeServiceError(w, r, h.Log, "add stop", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewStopResponse(*stop))
}

func (h *DayHandler) RemoveStop(w http.ResponseWriter, r *http.Request) {
	day, err := h.Planner.RemoveStop(r.Context(), pathParam(r, "dayID"), pathParam(r, "stop"))
	if err != nil {
		writeServiceError(w, r, h.Log, "remove stop", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDayResponse(day))
}

func (h *DayHandler) MoveStop(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(pathParam(r, "stop"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}

	var req dto.MoveStopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dir := domain.MoveDirection(strings.ToLower(strings.TrimSpace(req.Direction)))
	day, err := h.Planner.MoveStop(r.Context(), pathParam(r, "dayID"), index, dir)
	if err != nil {
		writeServiceError(w, r, h.Log, "move stop", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDayResponse(day))
}

func (h *DayHandler) SetStopDuration(w http.ResponseWriter, r *http.Request) {
	var req dto.DurationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	day, err := h.Planner.SetStopDuration(r.Context(), pathParam(r, "dayID"), pathParam(r, "stop"), req.Minutes)
	if err != nil {
		writeServiceError(w, r, h.Log, "set stop duration", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDayResponse(day))
}

func (h *DayHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	tl, err := h.Planner.Timeline(r.Context(), pathParam(r, "dayID"))
	if err != nil {
		writeServiceError(w, r, h.Log, "timeline", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTimelineResponse(tl))
}

// Optimize reorders the day's stops and returns the recomputed timeline.
func (h *DayHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	tl, err := h.Planner.Optimize(r.Context(), pathParam(r, "dayID"))
	if err != nil {
		writeServiceError(w, r, h.Log, "optimize", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTimelineResponse(tl))
}

func (h *DayHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Planner.SearchLocations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, h.Log, "search locations", err)
		return
	}

	res := dto.ListLocationsResponse{Locations: make([]dto.LocationResponse, 0, len(locs))}
	for _, l := range locs {
		res.Locations = append(res.Locations, dto.NewLocationResponse(l))
	}

	writeJSON(w, r, http.StatusOK, res)
}
