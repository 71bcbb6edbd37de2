package routes

import (
	"net/http"

	"cmfs/handler"
	"cmfs/middleware"
	"cmfs/models"
	"cmfs/repository"
	"cmfs/service"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	complaintService *service.ComplaintService,
	escalationService *service.EscalationService,
	categoryService *service.CategoryService,
	notificationService *service.NotificationService,
	aiService *service.AIService,
	institutionRepo *repository.InstitutionRepository,
	jwtSecret string,
) *mux.Router {
	router := mux.NewRouter()

	complaintHandler := handler.NewComplaintHandler(complaintService, aiService)
	escalationHandler := handler.NewEscalationHandler(escalationService)
	adminHandler := handler.NewAdminHandler(categoryService, institutionRepo)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	auth := middleware.NewAuthMiddleware(jwtSecret)
	staffOnly := auth.RequireRole(models.RoleOfficer, models.RoleAdmin)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// Complaint routes (authenticated)
	complaints := apiV1.PathPrefix("/complaints").Subrouter()
	complaints.Handle("", auth.RequireAuth(http.HandlerFunc(complaintHandler.GetUserComplaints))).Methods("GET")
	complaints.Handle("", auth.RequireAuth(http.HandlerFunc(complaintHandler.CreateComplaint))).Methods("POST")
	complaints.Handle("/suggest-category", auth.RequireAuth(http.HandlerFunc(complaintHandler.SuggestCategory))).Methods("POST")
	complaints.Handle("/{id}", auth.RequireAuth(http.HandlerFunc(complaintHandler.GetComplaintByID))).Methods("GET")
	complaints.Handle("/{id}/comments", auth.RequireAuth(http.HandlerFunc(complaintHandler.AddComment))).Methods("POST")
	complaints.Handle("/{id}/comments", auth.RequireAuth(http.HandlerFunc(complaintHandler.ListComments))).Methods("GET")

	// Staff-only complaint operations
	complaints.Handle("/{id}/change-status", staffOnly(http.HandlerFunc(complaintHandler.ChangeStatus))).Methods("POST")
	complaints.Handle("/{id}/assign", staffOnly(http.HandlerFunc(complaintHandler.AssignComplaint))).Methods("POST")
	complaints.Handle("/{id}/escalate", staffOnly(http.HandlerFunc(escalationHandler.EscalateComplaint))).Methods("POST")
	complaints.Handle("/{id}/ai-categorize", staffOnly(http.HandlerFunc(complaintHandler.CategorizeComplaint))).Methods("POST")
	complaints.Handle("/{id}/set-deadline", staffOnly(http.HandlerFunc(escalationHandler.SetDeadline))).Methods("POST")
	complaints.Handle("/{id}/assignments", staffOnly(http.HandlerFunc(complaintHandler.GetAssignmentHistory))).Methods("GET")

	// Escalation routes (admin only; workers run internally, these are manual triggers)
	escalations := apiV1.PathPrefix("/escalations").Subrouter()
	escalations.Handle("/process", adminOnly(http.HandlerFunc(escalationHandler.ProcessEscalations))).Methods("POST")
	escalations.Handle("/stats", staffOnly(http.HandlerFunc(escalationHandler.GetStats))).Methods("GET")

	// Notification routes
	notifications := apiV1.PathPrefix("/notifications").Subrouter()
	notifications.Handle("", auth.RequireAuth(http.HandlerFunc(notificationHandler.ListNotifications))).Methods("GET")
	notifications.Handle("/{id}/read", auth.RequireAuth(http.HandlerFunc(notificationHandler.MarkRead))).Methods("POST")

	// Admin configuration routes
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly)
	admin.HandleFunc("/institutions", adminHandler.ListInstitutions).Methods("GET")
	admin.HandleFunc("/institutions", adminHandler.CreateInstitution).Methods("POST")
	admin.HandleFunc("/institutions/{id}/levels", adminHandler.ListLevels).Methods("GET")
	admin.HandleFunc("/categories", adminHandler.ListCategories).Methods("GET")
	admin.HandleFunc("/categories", adminHandler.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories/{id}", adminHandler.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/categories/{id}/resolvers", adminHandler.ListResolvers).Methods("GET")
	admin.HandleFunc("/levels", adminHandler.CreateLevel).Methods("POST")
	admin.HandleFunc("/resolvers", adminHandler.CreateResolver).Methods("POST")
	admin.HandleFunc("/resolvers/{id}/active", adminHandler.SetResolverActive).Methods("POST")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
