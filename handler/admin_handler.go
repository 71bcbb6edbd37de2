package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cmfs/models"
	"cmfs/repository"
	"cmfs/service"

	"github.com/gorilla/mux"
)

// AdminHandler handles configuration endpoints: institutions, categories,
// resolver levels and the category-resolver routing table.
type AdminHandler struct {
	categoryService *service.CategoryService
	institutionRepo *repository.InstitutionRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(categoryService *service.CategoryService, institutionRepo *repository.InstitutionRepository) *AdminHandler {
	return &AdminHandler{
		categoryService: categoryService,
		institutionRepo: institutionRepo,
	}
}

// CreateInstitution handles POST /api/v1/admin/institutions
func (h *AdminHandler) CreateInstitution(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Bad request", "name is required")
		return
	}
	inst := &models.Institution{Name: req.Name, Domain: req.Domain}
	if err := h.institutionRepo.CreateInstitution(inst); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, inst)
}

// ListInstitutions handles GET /api/v1/admin/institutions
func (h *AdminHandler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.institutionRepo.ListInstitutions()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"institutions": institutions})
}

type categoryRequest struct {
	InstitutionID *int64  `json:"institution_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ParentID      *string `json:"parent_id"`
	IsActive      *bool   `json:"is_active"`
}

func (req *categoryRequest) toModel(categoryID string) *models.Category {
	cat := &models.Category{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.InstitutionID != nil {
		cat.InstitutionID = sql.NullInt64{Int64: *req.InstitutionID, Valid: true}
	}
	if req.ParentID != nil && *req.ParentID != "" {
		cat.ParentID = sql.NullString{String: *req.ParentID, Valid: true}
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	return cat
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	cat := req.toModel("")
	if err := h.categoryService.CreateCategory(cat); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to create category", err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, cat)
}

// UpdateCategory handles PUT /api/v1/admin/categories/{id}
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	cat := req.toModel(id)
	if err := h.categoryService.UpdateCategory(cat); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to update category", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, cat)
}

// ListCategories handles GET /api/v1/admin/categories
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListAllCategories()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateLevel handles POST /api/v1/admin/levels
func (h *AdminHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstitutionID         int64  `json:"institution_id"`
		Name                  string `json:"name"`
		LevelOrder            int    `json:"level_order"`
		EscalationTimeSeconds int64  `json:"escalation_time_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	level := &models.ResolverLevel{
		InstitutionID:  req.InstitutionID,
		Name:           req.Name,
		LevelOrder:     req.LevelOrder,
		EscalationTime: time.Duration(req.EscalationTimeSeconds) * time.Second,
	}
	if err := h.categoryService.CreateLevel(level); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to create level", err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, level)
}

// ListLevels handles GET /api/v1/admin/institutions/{id}/levels
func (h *AdminHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	institutionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid institution id")
		return
	}
	levels, err := h.categoryService.ListLevels(institutionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"levels": levels})
}

// CreateResolver handles POST /api/v1/admin/resolvers
func (h *AdminHandler) CreateResolver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID string `json:"category_id"`
		LevelID    int64  `json:"level_id"`
		OfficerID  int64  `json:"officer_id"`
		Active     *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	resolver := &models.CategoryResolver{
		CategoryID: req.CategoryID,
		LevelID:    req.LevelID,
		OfficerID:  req.OfficerID,
		Active:     true,
	}
	if req.Active != nil {
		resolver.Active = *req.Active
	}
	if err := h.categoryService.CreateResolver(resolver); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to create resolver", err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, resolver)
}

// SetResolverActive handles POST /api/v1/admin/resolvers/{id}/active
func (h *AdminHandler) SetResolverActive(w http.ResponseWriter, r *http.Request) {
	resolverID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid resolver id")
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid JSON body")
		return
	}
	if err := h.categoryService.SetResolverActive(resolverID, req.Active); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// ListResolvers handles GET /api/v1/admin/categories/{id}/resolvers
func (h *AdminHandler) ListResolvers(w http.ResponseWriter, r *http.Request) {
	categoryID := mux.Vars(r)["id"]
	resolvers, err := h.categoryService.ListResolvers(categoryID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"resolvers": resolvers})
}
