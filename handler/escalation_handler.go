package handler

import (
	"errors"
	"net/http"
	"time"

	"cmfs/service"

	"github.com/gorilla/mux"
)

// EscalationHandler handles HTTP requests for escalation operations
type EscalationHandler struct {
	escalationService *service.EscalationService
}

// NewEscalationHandler creates a new escalation handler
func NewEscalationHandler(escalationService *service.EscalationService) *EscalationHandler {
	return &EscalationHandler{escalationService: escalationService}
}

// EscalateComplaint handles POST /api/v1/complaints/{id}/escalate
// Manually moves one complaint to the next resolver level.
func (h *EscalationHandler) EscalateComplaint(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	outcome, err := h.escalationService.Escalate(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMaxLevelReached),
			errors.Is(err, service.ErrNoResolverAtLevel),
			errors.Is(err, service.ErrNoCurrentLevel),
			errors.Is(err, service.ErrNoCategory),
			errors.Is(err, service.ErrNoInstitution),
			errors.Is(err, service.ErrComplaintNotEligible):
			respondWithError(w, http.StatusBadRequest, "Cannot escalate", err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		}
		return
	}
	respondWithJSON(w, http.StatusOK, outcome)
}

// ProcessEscalations handles POST /api/v1/escalations/process
// Manually triggers one sweep (useful for testing or catch-up runs).
func (h *EscalationHandler) ProcessEscalations(w http.ResponseWriter, r *http.Request) {
	result, err := h.escalationService.Sweep(time.Now().UTC())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetStats handles GET /api/v1/escalations/stats
func (h *EscalationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.escalationService.Stats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// SetDeadline handles POST /api/v1/complaints/{id}/set-deadline
// Repair endpoint: computes a deadline for an assigned complaint missing one.
func (h *EscalationHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	set, err := h.escalationService.SetEscalationDeadline(id)
	if err != nil {
		if errors.Is(err, service.ErrNoCurrentLevel) {
			respondWithError(w, http.StatusBadRequest, "Cannot set deadline", err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deadline_set": set})
}
