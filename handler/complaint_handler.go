package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cmfs/models"
	"cmfs/service"

	"github.com/gorilla/mux"
)

// ComplaintHandler handles HTTP requests for complaints
type ComplaintHandler struct {
	service *service.ComplaintService
	ai      *service.AIService
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(svc *service.ComplaintService, ai *service.AIService) *ComplaintHandler {
	return &ComplaintHandler{service: svc, ai: ai}
}

// CreateComplaint handles POST /api/v1/complaints
func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "User ID not found in context")
		return
	}

	var req models.CreateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	if req.InstitutionID == nil {
		if instID, ok := getInstitutionIDFromContext(r); ok {
			req.InstitutionID = &instID
		}
	}

	complaint, result, err := h.service.Create(r.Context(), &req, userID)
	if err != nil {
		status := http.StatusBadRequest
		if !isValidationError(err) {
			status = http.StatusInternalServerError
		}
		respondWithError(w, status, "Failed to create complaint", err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"complaint": complaint,
		"triage":    result,
	})
}

// GetComplaintByID handles GET /api/v1/complaints/{id}
func (h *ComplaintHandler) GetComplaintByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	complaint, err := h.service.GetByID(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Not found", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// GetUserComplaints handles GET /api/v1/complaints
func (h *ComplaintHandler) GetUserComplaints(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "User ID not found in context")
		return
	}
	complaints, err := h.service.ListByUser(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"count":      len(complaints),
	})
}

// ChangeStatus handles POST /api/v1/complaints/{id}/change-status
func (h *ComplaintHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req models.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	if err := h.service.ChangeStatus(id, models.ComplaintStatus(req.Status)); err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			respondWithError(w, http.StatusBadRequest, "Bad request", err.Error())
			return
		}
		respondWithError(w, http.StatusNotFound, "Not found", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// AssignComplaint handles POST /api/v1/complaints/{id}/assign
func (h *ComplaintHandler) AssignComplaint(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req models.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	if req.OfficerID == 0 {
		respondWithError(w, http.StatusBadRequest, "Bad request", "officer_id is required")
		return
	}
	complaint, err := h.service.Reassign(id, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to assign complaint", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// CategorizeComplaint handles POST /api/v1/complaints/{id}/ai-categorize
// Re-runs the triage pipeline on an existing complaint.
func (h *ComplaintHandler) CategorizeComplaint(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := h.service.Categorize(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Not found", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SuggestCategory handles POST /api/v1/complaints/suggest-category
// Returns classification candidates for free text without creating anything.
func (h *ComplaintHandler) SuggestCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text          string `json:"text"`
		InstitutionID *int64 `json:"institution_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "Bad request", "text is required")
		return
	}
	if req.InstitutionID == nil {
		if instID, ok := getInstitutionIDFromContext(r); ok {
			req.InstitutionID = &instID
		}
	}
	scores := h.ai.SuggestCategories(r.Context(), req.Text, req.InstitutionID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"suggestions": scores})
}

// AddComment handles POST /api/v1/complaints/{id}/comments
func (h *ComplaintHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "User ID not found in context")
		return
	}
	id := mux.Vars(r)["id"]
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	comment, err := h.service.AddComment(id, userID, req.Message)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to add comment", err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

// ListComments handles GET /api/v1/complaints/{id}/comments
func (h *ComplaintHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	comments, err := h.service.ListComments(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// GetAssignmentHistory handles GET /api/v1/complaints/{id}/assignments
func (h *ComplaintHandler) GetAssignmentHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	assignments, err := h.service.AssignmentHistory(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"assignments": assignments})
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrTitleRequired) ||
		errors.Is(err, service.ErrDescriptionRequired) ||
		errors.Is(err, service.ErrUnknownCategory)
}

func getUserIDFromContext(r *http.Request) (int64, error) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		return 0, fmt.Errorf("user_id not found in context")
	}
	return userID, nil
}

func getInstitutionIDFromContext(r *http.Request) (int64, bool) {
	instID, ok := r.Context().Value("institution_id").(int64)
	return instID, ok
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	response := models.ErrorResponse{
		Error:   errorType,
		Message: message,
		Code:    statusCode,
	}
	respondWithJSON(w, statusCode, response)
}
