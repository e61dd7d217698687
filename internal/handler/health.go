package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/nakirhussain8918-star/Cool-boy-chat/internal/events"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	dataDir string
	nats    *events.NATSPublisher // nil when no broker is configured
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(dataDir string, nats *events.NATSPublisher) *HealthHandler {
	return &HealthHandler{dataDir: dataDir, nats: nats}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready handles GET /ready.
// Readiness requires only a writable data directory. The event broker is
// best-effort and its absence never fails the probe.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	probe := filepath.Join(h.dataDir, ".ready")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not ready",
			"error":  "data directory not writable",
		})
		return
	}
	os.Remove(probe)

	resp := map[string]interface{}{"status": "ready"}
	if h.nats != nil {
		resp["events_connected"] = h.nats.IsConnected()
	}
	writeJSON(w, http.StatusOK, resp)
}
