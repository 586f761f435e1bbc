package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness and, when db is set, database reachability.
func Health(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := map[string]string{"status": "ok"}
		if db == nil {
			writeJSON(w, r, http.StatusOK, res)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.WarnContext(r.Context(), "health: database ping failed", "err", err)
			res["status"] = "degraded"
			res["database"] = "unreachable"
			writeJSON(w, r, http.StatusServiceUnavailable, res)
			return
		}

		res["database"] = "ok"
		writeJSON(w, r, http.StatusOK, res)
	}
}
