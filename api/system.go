package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is the part of the service the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	store Pinger
}

func NewSystemHandler(store Pinger) *SystemHandler {
	return &SystemHandler{store: store}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// HealthHandler answers 200 while the store responds and 503 otherwise.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("health check failed", slog.Any("err", err))
		writeJSON(w, healthResponse{Status: "degraded", Service: "talentflow", Database: "unavailable"}, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, healthResponse{Status: "ok", Service: "talentflow", Database: "ok"}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}
