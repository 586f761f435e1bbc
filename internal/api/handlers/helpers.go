package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/ports"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object with no unknown fields into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeServiceError maps planner and advisor errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "day not found")
	case errors.Is(err, domain.ErrStopNotFound):
		writeError(w, r, http.StatusNotFound, "stop not found")
	case errors.Is(err, domain.ErrInvalidClockTime):
		writeError(w, r, http.StatusBadRequest, "start_time must be HH:MM")
	case errors.Is(err, domain.ErrInvalidDirection):
		writeError(w, r, http.StatusBadRequest, domain.ErrInvalidDirection.Error())
	case errors.Is(err, services.ErrEmptyStopName):
		writeError(w, r, http.StatusBadRequest, services.ErrEmptyStopName.Error())
	case errors.Is(err, services.ErrInvalidDuration):
		writeError(w, r, http.StatusBadRequest, services.ErrInvalidDuration.Error())
	case errors.Is(err, services.ErrTooFewStops):
		writeError(w, r, http.StatusConflict, "at least 3 stops are needed to optimize")
	case errors.Is(err, services.ErrMalformedSuggestion):
		log.WarnContext(r.Context(), op+" failed", "err", err)
		writeError(w, r, http.StatusBadGateway, "suggestion service returned malformed data")
	default:
		log.ErrorContext(r.Context(), op+" failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// isPlannerError reports whether err is one of the client-facing planner errors.
func isPlannerError(err error) bool {
	for _, target := range []error{
		ports.ErrNotFound,
		domain.ErrStopNotFound,
		domain.ErrInvalidClockTime,
		domain.ErrInvalidDirection,
		services.ErrEmptyStopName,
		services.ErrInvalidDuration,
		services.ErrTooFewStops,
		services.ErrMalformedSuggestion,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}
