package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/draftmill/draftmill/internal/errors"
	"github.com/draftmill/draftmill/internal/throttle"
)

// Scheduler is the read/admin surface the throttle endpoints need.
type Scheduler interface {
	Stats(service string) throttle.Stats
	Services() []string
	ClearQueue(service string) int
}

// Throttle serves the /api/v1/throttle endpoints.
type Throttle struct {
	scheduler Scheduler
}

// NewThrottle creates the throttle endpoint handler.
func NewThrottle(scheduler Scheduler) *Throttle {
	return &Throttle{scheduler: scheduler}
}

// ThrottleListResponse wraps per-service scheduler stats.
type ThrottleListResponse struct {
	Services []throttle.Stats `json:"services"`
}

// ClearQueueResponse reports the result of a queue clear.
type ClearQueueResponse struct {
	Service string `json:"service"`
	Cleared int    `json:"cleared"`
}

// List handles GET /api/v1/throttle.
func (h *Throttle) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.scheduler == nil {
		respondWithError(w, r, apperrors.NewInternalError("throttle is not configured"))
		return
	}

	names := h.scheduler.Services()
	sort.Strings(names)

	stats := make([]throttle.Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, h.scheduler.Stats(name))
	}

	writeJSON(w, http.StatusOK, ThrottleListResponse{Services: stats})
}

// Get handles GET /api/v1/throttle/{service}.
func (h *Throttle) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.scheduler == nil {
		respondWithError(w, r, apperrors.NewInternalError("throttle is not configured"))
		return
	}

	service := strings.TrimSpace(chi.URLParam(r, "service"))
	if service == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("service is required"))
		return
	}

	writeJSON(w, http.StatusOK, h.scheduler.Stats(service))
}

// ClearQueue handles DELETE /api/v1/throttle/{service}/queue. Pending units
// settle with a cancellation error; the in-flight unit is unaffected.
func (h *Throttle) ClearQueue(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.scheduler == nil {
		respondWithError(w, r, apperrors.NewInternalError("throttle is not configured"))
		return
	}

	service := strings.TrimSpace(chi.URLParam(r, "service"))
	if service == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("service is required"))
		return
	}

	cleared := h.scheduler.ClearQueue(service)
	writeJSON(w, http.StatusOK, ClearQueueResponse{Service: service, Cleared: cleared})
}
