package handlers

import (
	"itinerary-planner-service/internal/api/dto"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// SuggestionHandler serves generated recommendations. Advisor is nil when no
// text generator is configured, and every endpoint then answers 503.
type SuggestionHandler struct {
	Advisor *services.Advisor
	Log     *slog.Logger
}

func (h *SuggestionHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.Advisor == nil {
		writeError(w, r, http.StatusServiceUnavailable, "suggestions are not configured")
		return false
	}
	return true
}

// refresh drops cached answers for the spot when the request asks for ?refresh=true.
func (h *SuggestionHandler) refresh(r *http.Request, spot string) {
	if v, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); !v {
		return
	}
	if err := h.Advisor.Forget(r.Context(), spot); err != nil {
		h.Log.WarnContext(r.Context(), "suggestion cache refresh failed", "spot", spot, "err", err)
	}
}

func (h *SuggestionHandler) NextStops(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	got, err := h.Advisor.NextStops(r.Context(), pathParam(r, "dayID"))
	if err != nil {
		writeSuggestionError(w, r, h.Log, "next stops", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NextStopsResponse{Suggestions: got})
}

func (h *SuggestionHandler) SpotInfo(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	name := strings.TrimSpace(pathParam(r, "name"))
	h.refresh(r, name)
	desc, err := h.Advisor.SpotInfo(r.Context(), name)
	if err != nil {
		writeSuggestionError(w, r, h.Log, "spot info", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SpotInfoResponse{Name: name, Description: desc})
}

func (h *SuggestionHandler) NearbyFood(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	name := strings.TrimSpace(pathParam(r, "name"))
	h.refresh(r, name)
	food, err := h.Advisor.NearbyFood(r.Context(), name)
	if err != nil {
		writeSuggestionError(w, r, h.Log, "nearby food", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NearbyFoodResponse{Name: name, Food: food})
}

func (h *SuggestionHandler) Guide(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	name := strings.TrimSpace(pathParam(r, "name"))
	h.refresh(r, name)
	guide, err := h.Advisor.SpotGuide(r.Context(), name)
	if err != nil {
		writeSuggestionError(w, r, h.Log, "spot guide", err)
		return
	}

	food := guide.Food
	if food == nil {
		food = []services.FoodRecommendation{}
	}
	writeJSON(w, r, http.StatusOK, dto.SpotGuideResponse{
		Name:        guide.Name,
		Description: guide.Description,
		Food:        food,
	})
}

// writeSuggestionError reports upstream generator failures as 502; planner
// errors keep their usual mapping.
func writeSuggestionError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	if isPlannerError(err) {
		writeServiceError(w, r, log, op, err)
		return
	}

	log.WarnContext(r.Context(), op+" failed", "err", err)
	writeError(w, r, http.StatusBadGateway, "suggestion service unavailable")
}
