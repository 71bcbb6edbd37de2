package repository

import (
	"database/sql"
	"fmt"

	"cmfs/models"
)

// AssignmentRepository handles the immutable assignment audit trail
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const insertAssignment = `
	INSERT INTO assignments (complaint_id, officer_id, level_id, reason)
	VALUES (?, ?, ?, ?)
`

// CreateAssignment records one routing decision.
func (r *AssignmentRepository) CreateAssignment(a *models.Assignment) error {
	result, err := r.db.Exec(insertAssignment, a.ComplaintID, a.OfficerID, a.LevelID, a.Reason)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get assignment ID: %w", err)
	}
	a.AssignmentID = id
	return nil
}

// CreateAssignmentTx records one routing decision inside an escalation
// transaction.
func (r *AssignmentRepository) CreateAssignmentTx(tx *sql.Tx, a *models.Assignment) error {
	result, err := tx.Exec(insertAssignment, a.ComplaintID, a.OfficerID, a.LevelID, a.Reason)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get assignment ID: %w", err)
	}
	a.AssignmentID = id
	return nil
}

// ListAssignmentsByComplaint retrieves the routing history, newest first.
func (r *AssignmentRepository) ListAssignmentsByComplaint(complaintID string) ([]models.Assignment, error) {
	query := `
		SELECT assignment_id, complaint_id, officer_id, level_id, reason, assigned_at, ended_at
		FROM assignments WHERE complaint_id = ?
		ORDER BY assigned_at DESC
	`
	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(
			&a.AssignmentID, &a.ComplaintID, &a.OfficerID, &a.LevelID,
			&a.Reason, &a.AssignedAt, &a.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
