package handler

import (
	"net/http"
	"strconv"

	"cmfs/service"

	"github.com/gorilla/mux"
)

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "User ID not found in context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := h.service.ListForUser(userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "User ID not found in context")
		return
	}
	notificationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Bad request", "Invalid notification id")
		return
	}
	if err := h.service.MarkRead(notificationID, userID); err != nil {
		respondWithError(w, http.StatusNotFound, "Not found", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"read": true})
}
