package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker provides liveness and readiness probes. Liveness is
// unconditional; readiness flips once the pipeline finished starting.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// ProbeResponse is the body of both probe endpoints.
type ProbeResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Reason        string  `json:"reason,omitempty"`
}

// Health returns the liveness handler. It answers 200 whenever the process
// is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.write(w, http.StatusOK, ProbeResponse{
			Status:        "healthy",
			UptimeSeconds: time.Since(h.startTime).Seconds(),
		})
	}
}

// Ready returns the readiness handler: 200 once ready, 503 while starting.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			h.write(w, http.StatusServiceUnavailable, ProbeResponse{
				Status: "not_ready",
				Reason: "application is starting",
			})
			return
		}

		h.write(w, http.StatusOK, ProbeResponse{
			Status:        "ready",
			UptimeSeconds: time.Since(h.startTime).Seconds(),
		})
	}
}

func (h *HealthChecker) write(w http.ResponseWriter, status int, resp ProbeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
