package repository

import (
	"database/sql"
	"fmt"
	"time"

	"cmfs/models"

	"github.com/google/uuid"
)

// ComplaintRepository handles database operations for complaints
type ComplaintRepository struct {
	db *sql.DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *sql.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	complaint_id, institution_id, submitted_by, category_id, title, description,
	status, priority, current_level_id, assigned_officer_id, escalation_deadline,
	max_level_notified, created_at, updated_at`

func scanComplaint(row interface{ Scan(...interface{}) error }) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(
		&c.ComplaintID, &c.InstitutionID, &c.SubmittedBy, &c.CategoryID,
		&c.Title, &c.Description, &c.Status, &c.Priority,
		&c.CurrentLevelID, &c.AssignedOfficerID, &c.EscalationDeadline,
		&c.MaxLevelNotified, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Begin starts a transaction for multi-step complaint mutations.
func (r *ComplaintRepository) Begin() (*sql.Tx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateComplaint inserts a new complaint. A missing id is generated
// (UUID, immutable afterwards); status defaults to pending and priority to
// medium when unset.
func (r *ComplaintRepository) CreateComplaint(c *models.Complaint) error {
	if c.ComplaintID == "" {
		c.ComplaintID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	query := `
		INSERT INTO complaints (
			complaint_id, institution_id, submitted_by, category_id, title,
			description, status, priority
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(
		query,
		c.ComplaintID, c.InstitutionID, c.SubmittedBy, c.CategoryID,
		c.Title, c.Description, c.Status, c.Priority,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetComplaintByID retrieves one complaint.
func (r *ComplaintRepository) GetComplaintByID(id string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE complaint_id = ?`
	c, err := scanComplaint(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("complaint not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query complaint: %w", err)
	}
	return c, nil
}

// GetComplaintForUpdate retrieves one complaint inside tx with a row lock,
// guarding escalation against a concurrent sweep/manual race.
func (r *ComplaintRepository) GetComplaintForUpdate(tx *sql.Tx, id string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE complaint_id = ? FOR UPDATE`
	c, err := scanComplaint(tx.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("complaint not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock complaint: %w", err)
	}
	return c, nil
}

// UpdateTriage persists the classifier/scorer outcome.
func (r *ComplaintRepository) UpdateTriage(id string, categoryID sql.NullString, priority models.Priority) error {
	query := `UPDATE complaints SET category_id = ?, priority = ? WHERE complaint_id = ?`
	_, err := r.db.Exec(query, categoryID, priority, id)
	if err != nil {
		return fmt.Errorf("failed to update complaint triage: %w", err)
	}
	return nil
}

// UpdateAssignment sets the denormalized current assignment. The deadline is
// untouched; callers use SetEscalationDeadlineIfAbsent afterwards.
func (r *ComplaintRepository) UpdateAssignment(id string, officerID, levelID int64) error {
	query := `
		UPDATE complaints
		SET assigned_officer_id = ?, current_level_id = ?, max_level_notified = FALSE
		WHERE complaint_id = ?
	`
	_, err := r.db.Exec(query, officerID, levelID, id)
	if err != nil {
		return fmt.Errorf("failed to update complaint assignment: %w", err)
	}
	return nil
}

// SetEscalationDeadlineIfAbsent writes the deadline only when a current
// level is set and no deadline exists yet. Calling it again is a no-op, so
// deadline computation is idempotent outside of escalation.
func (r *ComplaintRepository) SetEscalationDeadlineIfAbsent(id string, deadline time.Time) (bool, error) {
	query := `
		UPDATE complaints SET escalation_deadline = ?
		WHERE complaint_id = ? AND current_level_id IS NOT NULL AND escalation_deadline IS NULL
	`
	result, err := r.db.Exec(query, deadline, id)
	if err != nil {
		return false, fmt.Errorf("failed to set escalation deadline: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ApplyEscalation persists one successful escalate() transition inside tx:
// new level, new officer, escalated status and an overwritten deadline.
func (r *ComplaintRepository) ApplyEscalation(tx *sql.Tx, id string, levelID, officerID int64, deadline time.Time) error {
	query := `
		UPDATE complaints
		SET current_level_id = ?, assigned_officer_id = ?, status = ?,
		    escalation_deadline = ?, max_level_notified = FALSE
		WHERE complaint_id = ?
	`
	_, err := tx.Exec(query, levelID, officerID, models.StatusEscalated, deadline, id)
	if err != nil {
		return fmt.Errorf("failed to apply escalation: %w", err)
	}
	return nil
}

// UpdateStatus sets the complaint status. Enum membership is validated by
// the caller; no transition graph is enforced here.
func (r *ComplaintRepository) UpdateStatus(id string, status models.ComplaintStatus) error {
	query := `UPDATE complaints SET status = ? WHERE complaint_id = ?`
	_, err := r.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	return nil
}

// MarkMaxLevelNotified flags a complaint whose escalation failed at the
// ceiling so the sweep stops re-alerting it every cycle.
func (r *ComplaintRepository) MarkMaxLevelNotified(id string) error {
	query := `UPDATE complaints SET max_level_notified = TRUE WHERE complaint_id = ?`
	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to mark max level notified: %w", err)
	}
	return nil
}

// ListOverdueComplaints retrieves complaints eligible for the sweep:
// pending/in_progress, deadline set and at-or-before now (inclusive
// boundary), ceiling alert not yet sent.
func (r *ComplaintRepository) ListOverdueComplaints(now time.Time) ([]models.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + ` FROM complaints
		WHERE status IN (?, ?)
		  AND escalation_deadline IS NOT NULL
		  AND escalation_deadline <= ?
		  AND max_level_notified = FALSE
		ORDER BY escalation_deadline ASC
	`
	rows, err := r.db.Query(query, models.StatusPending, models.StatusInProgress, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue complaints: %w", err)
	}
	defer rows.Close()

	return collectComplaints(rows)
}

// ListComplaintsDueWithin retrieves assigned pending/in_progress complaints
// whose deadline falls in (now, now+window] for the reminder pass.
func (r *ComplaintRepository) ListComplaintsDueWithin(now time.Time, window time.Duration) ([]models.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + ` FROM complaints
		WHERE status IN (?, ?)
		  AND assigned_officer_id IS NOT NULL
		  AND escalation_deadline > ?
		  AND escalation_deadline <= ?
		ORDER BY escalation_deadline ASC
	`
	rows, err := r.db.Query(query, models.StatusPending, models.StatusInProgress, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming deadlines: %w", err)
	}
	defer rows.Close()

	return collectComplaints(rows)
}

// ListComplaintsByUser retrieves a user's complaints, newest first.
func (r *ComplaintRepository) ListComplaintsByUser(userID int64) ([]models.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + ` FROM complaints
		WHERE submitted_by = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	return collectComplaints(rows)
}

// RecentTextsByCategory retrieves "title description" strings of the most
// recent resolved/in_progress complaints in a category. The classifier mines
// these for per-category keywords.
func (r *ComplaintRepository) RecentTextsByCategory(categoryID string, limit int) ([]string, error) {
	query := `
		SELECT CONCAT(title, ' ', description) FROM complaints
		WHERE category_id = ? AND status IN (?, ?)
		ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, categoryID, models.StatusResolved, models.StatusInProgress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query category texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan category text: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// GetEscalationStats aggregates a monitoring snapshot: totals of escalated
// complaints, the overdue backlog and the escalated-by-priority breakdown.
func (r *ComplaintRepository) GetEscalationStats(now time.Time) (*models.EscalationStats, error) {
	stats := &models.EscalationStats{
		EscalatedByPriority: make(map[models.Priority]int),
	}

	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM complaints WHERE status = ?`,
		models.StatusEscalated,
	).Scan(&stats.TotalEscalated)
	if err != nil {
		return nil, fmt.Errorf("failed to count escalated complaints: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM complaints
		 WHERE status IN (?, ?) AND escalation_deadline IS NOT NULL AND escalation_deadline <= ?`,
		models.StatusPending, models.StatusInProgress, now,
	).Scan(&stats.PendingEscalation)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending escalations: %w", err)
	}

	rows, err := r.db.Query(
		`SELECT priority, COUNT(*) FROM complaints WHERE status = ? GROUP BY priority`,
		models.StatusEscalated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count escalated by priority: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var priority models.Priority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("failed to scan priority count: %w", err)
		}
		stats.EscalatedByPriority[priority] = count
	}
	return stats, rows.Err()
}

func collectComplaints(rows *sql.Rows) ([]models.Complaint, error) {
	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}
