package api

import (
	"net/http"
	"os"
	"time"

	"github.com/veldt-labs/tubescribe/internal/artifact"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	artifacts *artifact.Store
	version   string
	startTime time.Time
}

func NewHealthHandler(artifacts *artifact.Store, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		artifacts: artifacts,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"scratch_dir": "ok",
	}
	status := "ok"
	httpStatus := http.StatusOK

	// The scratch directory is the only local dependency worth probing;
	// both providers are per-request collaborators with caller credentials.
	if f, err := os.CreateTemp(h.artifacts.Dir(), ".healthz-*"); err != nil {
		checks["scratch_dir"] = "not writable: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		f.Close()
		os.Remove(f.Name())
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
