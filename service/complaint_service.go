package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cmfs/models"
	"cmfs/repository"
)

// Validation errors surfaced to the API layer as 400s.
var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrUnknownCategory     = errors.New("unknown category")
)

const defaultLevelEscalationTime = 72 * time.Hour

// ComplaintService owns the complaint lifecycle: intake, status changes and
// manual routing. Automatic triage is delegated to AIService and never blocks
// intake.
type ComplaintService struct {
	complaintRepo  *repository.ComplaintRepository
	categoryRepo   *repository.CategoryRepository
	levelRepo      *repository.ResolverLevelRepository
	assignmentRepo *repository.AssignmentRepository
	commentRepo    *repository.CommentRepository
	ai             *AIService
	notifications  *NotificationService
	now            func() time.Time
}

// NewComplaintService creates a new complaint service
func NewComplaintService(
	complaintRepo *repository.ComplaintRepository,
	categoryRepo *repository.CategoryRepository,
	levelRepo *repository.ResolverLevelRepository,
	assignmentRepo *repository.AssignmentRepository,
	commentRepo *repository.CommentRepository,
	ai *AIService,
	notifications *NotificationService,
) *ComplaintService {
	return &ComplaintService{
		complaintRepo:  complaintRepo,
		categoryRepo:   categoryRepo,
		levelRepo:      levelRepo,
		assignmentRepo: assignmentRepo,
		commentRepo:    commentRepo,
		ai:             ai,
		notifications:  notifications,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new complaint, then runs the triage pipeline
// on it. Triage is best-effort: a classifier or routing failure leaves the
// complaint pending and uncategorized, it never fails the creation.
func (s *ComplaintService) Create(ctx context.Context, req *models.CreateComplaintRequest, submittedBy int64) (*models.Complaint, *models.ProcessResult, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, nil, ErrTitleRequired
	}
	if description == "" {
		return nil, nil, ErrDescriptionRequired
	}

	complaint := &models.Complaint{
		SubmittedBy: submittedBy,
		Title:       title,
		Description: description,
	}
	if req.InstitutionID != nil {
		complaint.InstitutionID = sql.NullInt64{Int64: *req.InstitutionID, Valid: true}
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.categoryRepo.GetCategoryByID(*req.CategoryID); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCategory, *req.CategoryID)
		}
		complaint.CategoryID = sql.NullString{String: *req.CategoryID, Valid: true}
	}

	if err := s.complaintRepo.CreateComplaint(complaint); err != nil {
		return nil, nil, err
	}

	result := s.ai.ProcessComplaint(ctx, complaint)
	return complaint, result, nil
}

// GetByID retrieves one complaint.
func (s *ComplaintService) GetByID(id string) (*models.Complaint, error) {
	return s.complaintRepo.GetComplaintByID(id)
}

// ListByUser retrieves a user's complaints, newest first.
func (s *ComplaintService) ListByUser(userID int64) ([]models.Complaint, error) {
	return s.complaintRepo.ListComplaintsByUser(userID)
}

// ChangeStatus sets the complaint status after enum validation. Any member
// of the enum is reachable from any other.
func (s *ComplaintService) ChangeStatus(id string, status models.ComplaintStatus) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if _, err := s.complaintRepo.GetComplaintByID(id); err != nil {
		return err
	}
	return s.complaintRepo.UpdateStatus(id, status)
}

// Reassign routes a complaint to an explicit officer, bypassing the
// category-resolver lookup. Manual reassignment is always permitted
// regardless of status. When no level is supplied the institution's lowest
// level is used; an institution with no ladder at all gets a default
// first level created on the fly so the deadline machinery keeps working.
func (s *ComplaintService) Reassign(id string, req *models.AssignRequest) (*models.Complaint, error) {
	complaint, err := s.complaintRepo.GetComplaintByID(id)
	if err != nil {
		return nil, err
	}

	var level *models.ResolverLevel
	if req.LevelID != nil {
		level, err = s.levelRepo.GetLevelByID(*req.LevelID)
		if err != nil {
			return nil, err
		}
	} else {
		level, err = s.resolveDefaultLevel(complaint)
		if err != nil {
			return nil, err
		}
	}

	if err := s.complaintRepo.UpdateAssignment(id, req.OfficerID, level.LevelID); err != nil {
		return nil, err
	}
	deadlineSet, err := s.complaintRepo.SetEscalationDeadlineIfAbsent(id, s.now().Add(level.EscalationTime))
	if err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.CreateAssignment(&models.Assignment{
		ComplaintID: id,
		OfficerID:   req.OfficerID,
		LevelID:     level.LevelID,
		Reason:      models.ReasonManual,
	}); err != nil {
		return nil, err
	}
	log.Printf("[COMPLAINT] Complaint %s manually assigned to officer %d at level %s (deadline set: %t)",
		id, req.OfficerID, level.Name, deadlineSet)

	if s.notifications != nil {
		s.notifications.Notify(
			req.OfficerID, id, models.NotifyAssignment,
			"Complaint assigned to you",
			fmt.Sprintf("Complaint %q has been assigned to you at level %s.", complaint.Title, level.Name),
		)
	}
	return s.complaintRepo.GetComplaintByID(id)
}

// resolveDefaultLevel picks the institution's lowest level, creating a
// "Default Level" with order 1 when the institution has none.
func (s *ComplaintService) resolveDefaultLevel(complaint *models.Complaint) (*models.ResolverLevel, error) {
	if !complaint.InstitutionID.Valid {
		level, err := s.levelRepo.GetAnyFirstLevel()
		if err != nil {
			return nil, err
		}
		if level == nil {
			return nil, errors.New("no resolver levels configured")
		}
		return level, nil
	}

	level, err := s.levelRepo.GetLowestLevel(complaint.InstitutionID.Int64)
	if err != nil {
		return nil, err
	}
	if level != nil {
		return level, nil
	}

	level = &models.ResolverLevel{
		InstitutionID:  complaint.InstitutionID.Int64,
		Name:           "Default Level",
		LevelOrder:     1,
		EscalationTime: defaultLevelEscalationTime,
	}
	if err := s.levelRepo.CreateLevel(level); err != nil {
		return nil, err
	}
	log.Printf("[COMPLAINT] Created default resolver level for institution %d", complaint.InstitutionID.Int64)
	return level, nil
}

// Categorize re-runs the triage pipeline on an existing complaint. Useful
// after categories change or when intake-time classification was skipped.
func (s *ComplaintService) Categorize(ctx context.Context, id string) (*models.ProcessResult, error) {
	complaint, err := s.complaintRepo.GetComplaintByID(id)
	if err != nil {
		return nil, err
	}
	return s.ai.ProcessComplaint(ctx, complaint), nil
}

// AddComment appends a discussion entry to a complaint.
func (s *ComplaintService) AddComment(complaintID string, authorID int64, message string) (*models.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message is required")
	}
	if _, err := s.complaintRepo.GetComplaintByID(complaintID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		ComplaintID: complaintID,
		AuthorID:    authorID,
		Message:     message,
	}
	if err := s.commentRepo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments retrieves a complaint's discussion, oldest first.
func (s *ComplaintService) ListComments(complaintID string) ([]models.Comment, error) {
	return s.commentRepo.ListCommentsByComplaint(complaintID)
}

// AssignmentHistory retrieves the complaint's routing audit trail.
func (s *ComplaintService) AssignmentHistory(complaintID string) ([]models.Assignment, error) {
	return s.assignmentRepo.ListAssignmentsByComplaint(complaintID)
}
