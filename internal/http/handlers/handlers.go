package handlers

import (
	"net/http"

	"bookbridge-delivery/internal/logx"
)

// Handlers carries the service-level endpoints that need no usecase.
type Handlers struct {
	Logger logx.Logger
}

// New returns base Handlers bound to logger.
func New(logger logx.Logger) *Handlers {
	return &Handlers{Logger: logger}
}

// Ping answers liveness probes.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"message": "pong"})
}

// HealthcheckHead answers HEAD health probes with 204.
func (h *Handlers) HealthcheckHead(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// NotFound is the router fallback for unknown paths.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.Logger, w, r, http.StatusNotFound, "route not found")
}
