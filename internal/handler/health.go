package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger проверяет доступность зависимостей (БД)
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health — GET /healthz, 503 если БД недоступна.
func Health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
