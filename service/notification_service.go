package service

import (
	"context"
	"database/sql"
	"log"

	"cmfs/models"
	"cmfs/notification"
	"cmfs/repository"
)

// NotificationService creates notification records and delivers best-effort
// emails. Delivery failures are logged and never propagate to the operation
// that triggered them.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	sender   notification.Sender
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	repo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	sender notification.Sender,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		sender:   sender,
	}
}

// Notify records a notification for one user and emails them best-effort.
// complaintID may be empty for notifications not tied to a complaint.
func (s *NotificationService) Notify(
	userID int64,
	complaintID string,
	notifType models.NotificationType,
	title, message string,
) {
	n := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if complaintID != "" {
		n.ComplaintID = sql.NullString{String: complaintID, Valid: true}
	}
	if err := s.repo.CreateNotification(n); err != nil {
		log.Printf("[NOTIFY] Failed to record notification for user %d: %v", userID, err)
		return
	}

	if s.sender == nil {
		return
	}
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		log.Printf("[NOTIFY] Failed to resolve recipient %d: %v", userID, err)
		return
	}
	email := &notification.Email{To: user.Email, Subject: title, Body: message}
	if err := s.sender.Send(context.Background(), email); err != nil {
		log.Printf("[NOTIFY] Email delivery failed for user %d: %v", userID, err)
	}
}

// NotifyAdmins records a notification for every active admin visible to the
// institution scope.
func (s *NotificationService) NotifyAdmins(
	institutionID *int64,
	complaintID string,
	notifType models.NotificationType,
	title, message string,
) {
	admins, err := s.userRepo.ListActiveAdmins(institutionID)
	if err != nil {
		log.Printf("[NOTIFY] Failed to list admins: %v", err)
		return
	}
	for _, admin := range admins {
		s.Notify(admin.UserID, complaintID, notifType, title, message)
	}
}

// ListForUser retrieves a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListNotificationsByUser(userID, limit)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(notificationID, userID int64) error {
	return s.repo.MarkNotificationRead(notificationID, userID)
}
