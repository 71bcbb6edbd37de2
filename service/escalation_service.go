package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"cmfs/models"
	"cmfs/repository"
)

// Escalation outcomes the sweep distinguishes from hard errors. Ceiling and
// missing-resolver conditions count toward Failed, not Errors.
var (
	ErrNoCurrentLevel       = errors.New("complaint has no current level")
	ErrNoCategory           = errors.New("complaint has no category")
	ErrNoInstitution        = errors.New("complaint has no institution")
	ErrMaxLevelReached      = errors.New("complaint is already at the highest level")
	ErrNoResolverAtLevel    = errors.New("no active resolver at the next level")
	ErrComplaintNotEligible = errors.New("complaint status does not allow escalation")
)

// EscalationService walks complaints up the resolver ladder. Escalate moves
// one complaint a single rung; Sweep applies it to everything overdue.
type EscalationService struct {
	complaintRepo  *repository.ComplaintRepository
	levelRepo      *repository.ResolverLevelRepository
	resolverRepo   *repository.CategoryResolverRepository
	assignmentRepo *repository.AssignmentRepository
	notifications  *NotificationService
	now            func() time.Time
}

// NewEscalationService creates a new escalation service
func NewEscalationService(
	complaintRepo *repository.ComplaintRepository,
	levelRepo *repository.ResolverLevelRepository,
	resolverRepo *repository.CategoryResolverRepository,
	assignmentRepo *repository.AssignmentRepository,
	notifications *NotificationService,
) *EscalationService {
	return &EscalationService{
		complaintRepo:  complaintRepo,
		levelRepo:      levelRepo,
		resolverRepo:   resolverRepo,
		assignmentRepo: assignmentRepo,
		notifications:  notifications,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Escalate moves one complaint to the next resolver level: next rung by
// level_order, active resolver for the complaint's category at that rung,
// assignment audit row, escalated status and a fresh deadline. The whole
// transition runs in one transaction with the complaint row locked, so a
// concurrent sweep and a manual trigger cannot double-escalate.
func (s *EscalationService) Escalate(complaintID string) (*models.EscalationOutcome, error) {
	tx, err := s.complaintRepo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	complaint, err := s.complaintRepo.GetComplaintForUpdate(tx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.StatusResolved || complaint.Status == models.StatusClosed {
		return nil, ErrComplaintNotEligible
	}
	if !complaint.CategoryID.Valid {
		return nil, ErrNoCategory
	}
	if !complaint.CurrentLevelID.Valid {
		return nil, ErrNoCurrentLevel
	}
	if !complaint.InstitutionID.Valid {
		return nil, ErrNoInstitution
	}

	currentLevel, err := s.levelRepo.GetLevelByID(complaint.CurrentLevelID.Int64)
	if err != nil {
		return nil, err
	}
	nextLevel, err := s.levelRepo.GetNextLevel(complaint.InstitutionID.Int64, currentLevel.LevelOrder)
	if err != nil {
		return nil, err
	}
	if nextLevel == nil {
		return nil, ErrMaxLevelReached
	}

	resolver, err := s.resolverRepo.FindActiveResolver(complaint.CategoryID.String, nextLevel.LevelID)
	if err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, fmt.Errorf("%w: level %q", ErrNoResolverAtLevel, nextLevel.Name)
	}

	deadline := s.now().Add(nextLevel.EscalationTime)
	if err := s.assignmentRepo.CreateAssignmentTx(tx, &models.Assignment{
		ComplaintID: complaintID,
		OfficerID:   resolver.OfficerID,
		LevelID:     nextLevel.LevelID,
		Reason:      models.ReasonEscalation,
	}); err != nil {
		return nil, err
	}
	if err := s.complaintRepo.ApplyEscalation(tx, complaintID, nextLevel.LevelID, resolver.OfficerID, deadline); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit escalation: %w", err)
	}

	log.Printf("[ESCALATION] Complaint %s escalated to %s (order %d), officer %d",
		complaintID, nextLevel.Name, nextLevel.LevelOrder, resolver.OfficerID)

	outcome := &models.EscalationOutcome{
		ComplaintID: complaintID,
		LevelID:     nextLevel.LevelID,
		LevelName:   nextLevel.Name,
		LevelOrder:  nextLevel.LevelOrder,
		OfficerID:   resolver.OfficerID,
		NewDeadline: deadline,
	}
	s.notifyEscalated(complaint, outcome)
	return outcome, nil
}

// notifyEscalated fans out notifications after a committed escalation: the
// newly assigned officer, the submitter and the admins.
func (s *EscalationService) notifyEscalated(complaint *models.Complaint, outcome *models.EscalationOutcome) {
	if s.notifications == nil {
		return
	}
	title := fmt.Sprintf("Complaint escalated to %s", outcome.LevelName)
	s.notifications.Notify(
		outcome.OfficerID, complaint.ComplaintID, models.NotifyEscalationAssigned,
		"Escalated complaint assigned to you",
		fmt.Sprintf("Complaint %q has been escalated to your level (%s). New deadline: %s.",
			complaint.Title, outcome.LevelName, outcome.NewDeadline.Format(time.RFC3339)),
	)
	s.notifications.Notify(
		complaint.SubmittedBy, complaint.ComplaintID, models.NotifyEscalationUpdate,
		title,
		fmt.Sprintf("Your complaint %q was escalated to %s for faster resolution.",
			complaint.Title, outcome.LevelName),
	)

	var institutionID *int64
	if complaint.InstitutionID.Valid {
		institutionID = &complaint.InstitutionID.Int64
	}
	s.notifications.NotifyAdmins(
		institutionID, complaint.ComplaintID, models.NotifyEscalationUpdate,
		title,
		fmt.Sprintf("Complaint %q escalated to %s, officer %d.",
			complaint.Title, outcome.LevelName, outcome.OfficerID),
	)
}

// Sweep escalates every overdue complaint. One complaint's failure never
// aborts the batch: ceiling and no-resolver outcomes are counted as failed
// and alert the admins once (the complaint is then flagged out of future
// sweeps until reassigned); unexpected errors are collected in the result.
func (s *EscalationService) Sweep(now time.Time) (*models.SweepResult, error) {
	overdue, err := s.complaintRepo.ListOverdueComplaints(now)
	if err != nil {
		return nil, err
	}

	result := &models.SweepResult{TotalChecked: len(overdue)}
	for _, complaint := range overdue {
		_, err := s.Escalate(complaint.ComplaintID)
		switch {
		case err == nil:
			result.Escalated++
		case errors.Is(err, ErrMaxLevelReached), errors.Is(err, ErrNoResolverAtLevel):
			result.Failed++
			s.alertStuck(&complaint, err)
		case errors.Is(err, ErrNoCurrentLevel), errors.Is(err, ErrNoCategory),
			errors.Is(err, ErrNoInstitution), errors.Is(err, ErrComplaintNotEligible):
			// Not actionable by escalation; skip quietly.
			result.Failed++
		default:
			result.Failed++
			result.Errors = append(result.Errors, models.SweepError{
				ComplaintID: complaint.ComplaintID,
				Error:       err.Error(),
			})
			log.Printf("[ESCALATION] Sweep failed for complaint %s: %v", complaint.ComplaintID, err)
		}
	}
	return result, nil
}

// alertStuck notifies admins once about a complaint that cannot move up the
// ladder, then flags it so the next sweep skips it.
func (s *EscalationService) alertStuck(complaint *models.Complaint, cause error) {
	if err := s.complaintRepo.MarkMaxLevelNotified(complaint.ComplaintID); err != nil {
		log.Printf("[ESCALATION] Failed to flag stuck complaint %s: %v", complaint.ComplaintID, err)
		return
	}
	if s.notifications == nil {
		return
	}
	var institutionID *int64
	if complaint.InstitutionID.Valid {
		institutionID = &complaint.InstitutionID.Int64
	}
	s.notifications.NotifyAdmins(
		institutionID, complaint.ComplaintID, models.NotifyMaxEscalation,
		"Complaint requires manual intervention",
		fmt.Sprintf("Complaint %q is overdue and cannot be escalated further: %v.", complaint.Title, cause),
	)
}

// SendReminders notifies assigned officers of complaints whose deadline
// falls within the reminder window. Returns the number of reminders sent.
func (s *EscalationService) SendReminders(now time.Time, window time.Duration) (int, error) {
	upcoming, err := s.complaintRepo.ListComplaintsDueWithin(now, window)
	if err != nil {
		return 0, err
	}
	if s.notifications == nil {
		return 0, nil
	}
	sent := 0
	for _, complaint := range upcoming {
		s.notifications.Notify(
			complaint.AssignedOfficerID.Int64, complaint.ComplaintID, models.NotifyResolutionReminder,
			"Resolution deadline approaching",
			fmt.Sprintf("Complaint %q escalates at %s unless resolved.",
				complaint.Title, complaint.EscalationDeadline.Time.Format(time.RFC3339)),
		)
		sent++
	}
	return sent, nil
}

// SetEscalationDeadline is a repair operation for assigned complaints that
// somehow have no deadline. It recomputes from the current level's window
// and reports whether a deadline was written.
func (s *EscalationService) SetEscalationDeadline(complaintID string) (bool, error) {
	complaint, err := s.complaintRepo.GetComplaintByID(complaintID)
	if err != nil {
		return false, err
	}
	if !complaint.CurrentLevelID.Valid {
		return false, ErrNoCurrentLevel
	}
	level, err := s.levelRepo.GetLevelByID(complaint.CurrentLevelID.Int64)
	if err != nil {
		return false, err
	}
	return s.complaintRepo.SetEscalationDeadlineIfAbsent(complaintID, s.now().Add(level.EscalationTime))
}

// Stats returns the escalation monitoring snapshot.
func (s *EscalationService) Stats() (*models.EscalationStats, error) {
	return s.complaintRepo.GetEscalationStats(s.now())
}
