package api

import (
	"itinerary-planner-service/internal/api/handlers"
	"itinerary-planner-service/internal/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
)

type RouterOptions struct {
	// Bearer token for /api/v1; empty leaves the API open.
	Token          string
	AllowedOrigins []string
	// Requests per minute per client IP; 0 disables rate limiting.
	RateLimit int
	// Optional; when set /health also pings the database.
	DB handlers.Pinger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// advisor may be nil, in which case suggestion routes answer 503.
func NewRouter(planner *services.Planner, advisor *services.Advisor, opts RouterOptions, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	dayHandler := &handlers.DayHandler{Planner: planner, Log: log}
	suggestionHandler := &handlers.SuggestionHandler{Advisor: advisor, Log: log}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(log))
	r.Use(corsHandler.Handler)
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	r.Get("/health", handlers.Health(opts.DB, log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(opts.Token))

		r.Get("/locations", dayHandler.SearchLocations)

		r.Get("/days", dayHandler.List)
		r.Post("/days", dayHandler.Create)

		r.Route("/days/{dayID}", func(r chi.Router) {
			r.Get("/", dayHandler.Get)
			r.Delete("/", dayHandler.Delete)
			r.Put("/start-time", dayHandler.SetStartTime)
			r.Get("/timeline", dayHandler.Timeline)
			r.Post("/optimize", dayHandler.Optimize)
			r.Get("/suggestions", suggestionHandler.NextStops)

			// {stop} is a stop id, except for move where it is the stop's index.
			r.Post("/stops", dayHandler.AddStop)
			r.Delete("/stops/{stop}", dayHandler.RemoveStop)
			r.Put("/stops/{stop}/duration", dayHandler.SetStopDuration)
			r.Post("/stops/{stop}/move", dayHandler.MoveStop)
		})

		r.Route("/spots/{name}", func(r chi.Router) {
			r.Get("/info", suggestionHandler.SpotInfo)
			r.Get("/food", suggestionHandler.NearbyFood)
			r.Get("/guide", suggestionHandler.Guide)
		})
	})

	return r
}
