package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"machina/pkg/logger"
)

// Checker reports connectivity of an optional collaborator (Redis,
// ClickHouse). Nil checkers are skipped: with every collaborator disabled
// the service is healthy as soon as its artifacts are loaded, since the
// pipeline itself has no runtime dependencies.
type Checker interface {
	Health(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checkers    map[string]Checker
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. checkers maps component name to
// its connectivity check; entries may be nil and are then ignored.
func New(log *logger.Logger, checkers map[string]Checker, serviceName, version string) *Handler {
	active := make(map[string]Checker)
	for name, c := range checkers {
		if c != nil {
			active[name] = c
		}
	}
	return &Handler{
		log:         log,
		checkers:    active,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic
// Used by Kubernetes readiness probe. Artifacts load before the server
// starts, so a running server with healthy collaborators is ready.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy, total := h.runChecks(ctx)

	status := h.buildStatus(checks)
	statusCode := http.StatusOK
	if healthy < total {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// HandleHealth returns detailed health status (includes all checks)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks, healthy, total := h.runChecks(ctx)

	status := h.buildStatus(checks)
	statusCode := http.StatusOK

	if total > 0 && healthy == 0 {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if healthy < total {
		status.Status = "degraded" // still return 200 for degraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

func (h *Handler) runChecks(ctx context.Context) (map[string]ComponentHealth, int, int) {
	checks := make(map[string]ComponentHealth, len(h.checkers))
	healthy := 0

	for name, checker := range h.checkers {
		start := time.Now()
		err := checker.Health(ctx)
		elapsed := time.Since(start)

		if err != nil {
			h.log.Errorf("%s health check failed: %v (elapsed %v)", name, err, elapsed)
			checks[name] = ComponentHealth{
				Status:       "unhealthy",
				ResponseTime: elapsed.String(),
				Error:        err.Error(),
			}
			continue
		}

		checks[name] = ComponentHealth{
			Status:       "healthy",
			ResponseTime: elapsed.String(),
		}
		healthy++
	}

	return checks, healthy, len(h.checkers)
}

func (h *Handler) buildStatus(checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
}
