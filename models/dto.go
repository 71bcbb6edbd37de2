package models

import "time"

// CreateComplaintRequest is the payload for POST /complaints.
// CategoryID is optional; when absent the classifier runs after creation.
type CreateComplaintRequest struct {
	InstitutionID *int64  `json:"institution_id"`
	CategoryID    *string `json:"category_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
}

// AssignRequest is the payload for the manual assignment path.
type AssignRequest struct {
	OfficerID int64  `json:"officer_id"`
	LevelID   *int64 `json:"level_id"`
}

// ChangeStatusRequest carries the new status literal.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// CategoryScore is the per-category classification detail returned alongside
// a prediction. Confidence blends similarity with distributional separation
// and is used only for threshold tuning, never stored.
type CategoryScore struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Similarity   float64 `json:"similarity"`
	Probability  float64 `json:"probability"`
	Confidence   float64 `json:"confidence"`
}

// ProcessResult is the outcome of the full triage pipeline
// (classify -> prioritize -> assign first level).
type ProcessResult struct {
	CategoryID        *string         `json:"category_id"`
	CategoryName      *string         `json:"category_name"`
	Priority          Priority        `json:"priority"`
	AssignedOfficerID *int64          `json:"assigned_officer_id"`
	Scores            []CategoryScore `json:"scores,omitempty"`
}

// EscalationOutcome describes a successful escalate() transition.
type EscalationOutcome struct {
	ComplaintID string    `json:"complaint_id"`
	LevelID     int64     `json:"level_id"`
	LevelName   string    `json:"level_name"`
	LevelOrder  int       `json:"level_order"`
	OfficerID   int64     `json:"officer_id"`
	NewDeadline time.Time `json:"new_deadline"`
}

// SweepError records one complaint whose sweep processing raised an error.
type SweepError struct {
	ComplaintID string `json:"complaint_id"`
	Error       string `json:"error"`
}

// SweepResult aggregates one execution of the periodic scan-and-escalate
// batch. Failed counts ceiling-reached and no-resolver outcomes; Errors
// holds unexpected per-complaint failures that did not abort the sweep.
type SweepResult struct {
	TotalChecked int          `json:"total_checked"`
	Escalated    int          `json:"escalated"`
	Failed       int          `json:"failed"`
	Errors       []SweepError `json:"errors"`
}

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// EscalationStats is a monitoring snapshot of escalation activity.
type EscalationStats struct {
	TotalEscalated      int              `json:"total_escalated"`
	PendingEscalation   int              `json:"pending_escalation"`
	EscalatedByPriority map[Priority]int `json:"escalated_by_priority"`
}
