package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmfs/models"
)

var complaintCols = []string{
	"complaint_id", "institution_id", "submitted_by", "category_id", "title", "description",
	"status", "priority", "current_level_id", "assigned_officer_id", "escalation_deadline",
	"max_level_notified", "created_at", "updated_at",
}

func setupComplaintRepo(t *testing.T) (sqlmock.Sqlmock, *ComplaintRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewComplaintRepository(db)
}

func TestCreateComplaint_Defaults(t *testing.T) {
	mock, repo := setupComplaintRepo(t)

	mock.ExpectExec("INSERT INTO complaints").WillReturnResult(sqlmock.NewResult(0, 1))

	c := &models.Complaint{SubmittedBy: 42, Title: "t", Description: "d"}
	require.NoError(t, repo.CreateComplaint(c))
	assert.NotEmpty(t, c.ComplaintID)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.PriorityMedium, c.Priority)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComplaint_KeepsProvidedID(t *testing.T) {
	mock, repo := setupComplaintRepo(t)

	mock.ExpectExec("INSERT INTO complaints").WillReturnResult(sqlmock.NewResult(0, 1))

	c := &models.Complaint{ComplaintID: "fixed-id", SubmittedBy: 42, Title: "t", Description: "d"}
	require.NoError(t, repo.CreateComplaint(c))
	assert.Equal(t, "fixed-id", c.ComplaintID)
}

func TestListOverdueComplaints_InclusiveBoundary(t *testing.T) {
	mock, repo := setupComplaintRepo(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(complaintCols).AddRow(
		"c-1", int64(1), int64(42), "CAT-AAAA000001", "t", "d",
		"pending", "high", int64(10), int64(7), now,
		false, now, now,
	)
	// The boundary timestamp is passed as-is; <= is applied in SQL.
	mock.ExpectQuery("escalation_deadline").
		WithArgs(models.StatusPending, models.StatusInProgress, now).
		WillReturnRows(rows)

	overdue, err := repo.ListOverdueComplaints(now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "c-1", overdue[0].ComplaintID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetEscalationDeadlineIfAbsent(t *testing.T) {
	mock, repo := setupComplaintRepo(t)

	deadline := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE complaints SET escalation_deadline").
		WithArgs(deadline, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	set, err := repo.SetEscalationDeadlineIfAbsent("c-1", deadline)
	require.NoError(t, err)
	assert.True(t, set)

	// Second call matches no row: deadline already present.
	mock.ExpectExec("UPDATE complaints SET escalation_deadline").
		WithArgs(deadline, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	set, err = repo.SetEscalationDeadlineIfAbsent("c-1", deadline)
	require.NoError(t, err)
	assert.False(t, set)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetComplaintByID_NotFound(t *testing.T) {
	mock, repo := setupComplaintRepo(t)

	mock.ExpectQuery("FROM complaints").WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetComplaintByID("missing")
	assert.EqualError(t, err, "complaint not found")
}

func TestListComplaintsDueWithin_WindowArgs(t *testing.T) {
	mock, repo := setupComplaintRepo(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 24 * time.Hour
	mock.ExpectQuery("escalation_deadline").
		WithArgs(models.StatusPending, models.StatusInProgress, now, now.Add(window)).
		WillReturnRows(sqlmock.NewRows(complaintCols))

	upcoming, err := repo.ListComplaintsDueWithin(now, window)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
	require.NoError(t, mock.ExpectationsWereMet())
}
