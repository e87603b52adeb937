package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	hc := New()

	if hc == nil {
		t.Fatal("New() returned nil")
	}

	if time.Since(hc.startTime) > 1*time.Second {
		t.Errorf("Start time is too old: %v", hc.startTime)
	}

	if hc.ready.Load() {
		t.Error("HealthChecker should not be ready by default")
	}
}

func TestHealthAlwaysOK(t *testing.T) {
	hc := New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	hc.Health()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp ProbeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.UptimeSeconds < 0 {
		t.Errorf("uptime must be non-negative, got %f", resp.UptimeSeconds)
	}
}

func TestReadyBeforeAndAfter(t *testing.T) {
	hc := New()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	hc.Ready()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before SetReady, got %d", rec.Code)
	}

	var notReady ProbeResponse
	if err := json.NewDecoder(rec.Body).Decode(&notReady); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if notReady.Status != "not_ready" {
		t.Errorf("expected not_ready, got %q", notReady.Status)
	}
	if notReady.Reason == "" {
		t.Error("expected a reason while not ready")
	}

	hc.SetReady(true)

	rec = httptest.NewRecorder()
	hc.Ready()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after SetReady, got %d", rec.Code)
	}
}

func TestReadyTogglesBack(t *testing.T) {
	hc := New()
	hc.SetReady(true)
	hc.SetReady(false)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	hc.Ready()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after toggling back, got %d", rec.Code)
	}
}
