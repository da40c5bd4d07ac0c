package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultHealthCheckTimeout = 5 * time.Second

// Pinger verifies a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readiness reports whether the chat gateway session is up.
type Readiness interface {
	Ready() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db       Pinger
	gateway  Readiness
	sessions func() int
	timeout  time.Duration
}

// NewHealthHandler creates a health handler. sessions may be nil.
func NewHealthHandler(db Pinger, gateway Readiness, sessions func() int) *HealthHandler {
	return &HealthHandler{
		db:       db,
		gateway:  gateway,
		sessions: sessions,
		timeout:  defaultHealthCheckTimeout,
	}
}

// Check probes every dependency and reports overall health.
func (h *HealthHandler) Check(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{"api": "ok"}
	healthy := true

	if h.db != nil {
		ctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			slog.Error("Health check failed", "check", "database", "error", err)
			checks["database"] = "unreachable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	// A gateway reconnect is reported but does not fail the check.
	if h.gateway != nil {
		if h.gateway.Ready() {
			checks["gateway"] = "ok"
		} else {
			checks["gateway"] = "disconnected"
		}
	}

	return checks, healthy
}

// Health returns the health status of the bot and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.Check(r.Context())

	status := map[string]any{
		"status": "healthy",
		"checks": checks,
	}
	if h.sessions != nil {
		status["sessions"] = h.sessions()
	}
	statusCode := http.StatusOK
	if !healthy {
		status["status"] = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
