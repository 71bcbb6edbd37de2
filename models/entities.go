package models

import (
	"database/sql"
	"time"
)

// ComplaintStatus represents the possible statuses of a complaint
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusEscalated  ComplaintStatus = "escalated"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

// ValidStatus reports whether s is a member of the closed status enum.
// Any member is reachable from any other; there is no transition graph.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusEscalated, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Priority represents complaint priority levels
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AssignmentReason records why a routing decision was made
type AssignmentReason string

const (
	ReasonInitial    AssignmentReason = "initial"
	ReasonEscalation AssignmentReason = "escalation"
	ReasonManual     AssignmentReason = "manual"
)

// Role is the role of a directory user (supplied by the identity provider)
type Role string

const (
	RoleUser    Role = "user"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// NotificationType classifies notification records
type NotificationType string

const (
	NotifyEscalationAssigned NotificationType = "escalation_assigned"
	NotifyEscalationUpdate   NotificationType = "escalation_update"
	NotifyMaxEscalation      NotificationType = "max_escalation"
	NotifyResolutionReminder NotificationType = "resolution_reminder"
	NotifyAssignment         NotificationType = "assignment"
)

// Institution is the tenant boundary. It owns categories, resolver levels
// and complaints.
type Institution struct {
	InstitutionID int64     `db:"institution_id" json:"institution_id"`
	Name          string    `db:"name" json:"name"`
	Domain        string    `db:"domain" json:"domain"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Category is a classification bucket. InstitutionID NULL means the category
// is global and visible to every institution. Parent forms a tree; writes
// that would create a cycle are rejected by the category service.
type Category struct {
	CategoryID    string         `db:"category_id" json:"category_id"`
	InstitutionID sql.NullInt64  `db:"institution_id" json:"institution_id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	ParentID      sql.NullString `db:"parent_id" json:"parent_id"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// ResolverLevel is one rung of an institution's escalation ladder.
// LevelOrder values form a strictly increasing ladder starting at 1;
// "next level" is the smallest level_order greater than the current one.
// EscalationTime is how long a complaint may sit at this level before it
// becomes eligible for automatic escalation.
type ResolverLevel struct {
	LevelID        int64         `db:"level_id" json:"level_id"`
	InstitutionID  int64         `db:"institution_id" json:"institution_id"`
	Name           string        `db:"name" json:"name"`
	LevelOrder     int           `db:"level_order" json:"level_order"`
	EscalationTime time.Duration `db:"escalation_time" json:"escalation_time"`
}

// CategoryResolver maps (category, level) to an officer eligible to handle
// complaints of that category at that level. Multiple officers may be
// eligible; selection always picks the active row with the lowest officer id
// so routing stays deterministic.
type CategoryResolver struct {
	ResolverID int64  `db:"resolver_id" json:"resolver_id"`
	CategoryID string `db:"category_id" json:"category_id"`
	LevelID    int64  `db:"level_id" json:"level_id"`
	OfficerID  int64  `db:"officer_id" json:"officer_id"`
	Active     bool   `db:"active" json:"active"`
}

// Complaint is the central mutable entity. The current assignment is
// denormalized onto CurrentLevelID/AssignedOfficerID for fast reads; the
// authoritative history lives in assignments.
//
// MaxLevelNotified marks a complaint whose sweep-time escalation failed
// (ceiling reached or no resolver configured) and whose admin alert has
// already been sent. The sweep skips flagged complaints so the alert fires
// once instead of every cycle. The flag is cleared whenever a new deadline
// is computed (assignment, reassignment, escalation).
type Complaint struct {
	ComplaintID        string          `db:"complaint_id" json:"complaint_id"`
	InstitutionID      sql.NullInt64   `db:"institution_id" json:"institution_id"`
	SubmittedBy        int64           `db:"submitted_by" json:"submitted_by"`
	CategoryID         sql.NullString  `db:"category_id" json:"category_id"`
	Title              string          `db:"title" json:"title"`
	Description        string          `db:"description" json:"description"`
	Status             ComplaintStatus `db:"status" json:"status"`
	Priority           Priority        `db:"priority" json:"priority"`
	CurrentLevelID     sql.NullInt64   `db:"current_level_id" json:"current_level_id"`
	AssignedOfficerID  sql.NullInt64   `db:"assigned_officer_id" json:"assigned_officer_id"`
	EscalationDeadline sql.NullTime    `db:"escalation_deadline" json:"escalation_deadline"`
	MaxLevelNotified   bool            `db:"max_level_notified" json:"max_level_notified"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// Assignment is an immutable audit record of one routing decision.
type Assignment struct {
	AssignmentID int64            `db:"assignment_id" json:"assignment_id"`
	ComplaintID  string           `db:"complaint_id" json:"complaint_id"`
	OfficerID    int64            `db:"officer_id" json:"officer_id"`
	LevelID      int64            `db:"level_id" json:"level_id"`
	Reason       AssignmentReason `db:"reason" json:"reason"`
	AssignedAt   time.Time        `db:"assigned_at" json:"assigned_at"`
	EndedAt      sql.NullTime     `db:"ended_at" json:"ended_at"`
}

// Notification is an observable side effect of escalation activity. It is
// never authoritative for escalation logic.
type Notification struct {
	NotificationID int64            `db:"notification_id" json:"notification_id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	ComplaintID    sql.NullString   `db:"complaint_id" json:"complaint_id"`
	Type           NotificationType `db:"type" json:"type"`
	Title          string           `db:"title" json:"title"`
	Message        string           `db:"message" json:"message"`
	IsRead         bool             `db:"is_read" json:"is_read"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// User is a read-only view of the external identity provider's directory.
// The engine only needs ids, emails, roles and the institution scope; it
// never creates or authenticates users.
type User struct {
	UserID        int64         `db:"user_id" json:"user_id"`
	Email         string        `db:"email" json:"email"`
	FullName      string        `db:"full_name" json:"full_name"`
	Role          Role          `db:"role" json:"role"`
	InstitutionID sql.NullInt64 `db:"institution_id" json:"institution_id"`
	IsActive      bool          `db:"is_active" json:"is_active"`
}

// Comment is a discussion entry on a complaint.
type Comment struct {
	CommentID   int64     `db:"comment_id" json:"comment_id"`
	ComplaintID string    `db:"complaint_id" json:"complaint_id"`
	AuthorID    int64     `db:"author_id" json:"author_id"`
	Message     string    `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
