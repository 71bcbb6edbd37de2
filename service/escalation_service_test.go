package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmfs/models"
	"cmfs/repository"
)

var complaintCols = []string{
	"complaint_id", "institution_id", "submitted_by", "category_id", "title", "description",
	"status", "priority", "current_level_id", "assigned_officer_id", "escalation_deadline",
	"max_level_notified", "created_at", "updated_at",
}

var levelCols = []string{"level_id", "institution_id", "name", "level_order", "escalation_time_seconds"}

func setupEscalationService(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *EscalationService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := NewEscalationService(
		repository.NewComplaintRepository(db),
		repository.NewResolverLevelRepository(db),
		repository.NewCategoryResolverRepository(db),
		repository.NewAssignmentRepository(db),
		nil,
	)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return db, mock, svc
}

func pendingComplaintRow(id string) *sqlmock.Rows {
	now := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(complaintCols).AddRow(
		id, int64(1), int64(42), "CAT-AAAA000001", "Leaking pipe", "Water everywhere",
		"pending", "high", int64(10), int64(7), now,
		false, now, now,
	)
}

func TestEscalate_MovesToNextLevel(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-1").WillReturnRows(pendingComplaintRow("c-1"))
	// Current level (order 1), then the next rung (order 2, 48h window).
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Warden", 1, int64(48*3600)))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1), 1).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(20), int64(1), "Dean", 2, int64(48*3600)))
	mock.ExpectQuery("FROM category_resolvers").WithArgs("CAT-AAAA000001", int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"resolver_id", "category_id", "level_id", "officer_id", "active"}).
			AddRow(int64(5), "CAT-AAAA000001", int64(20), int64(99), true))
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs("c-1", int64(99), int64(20), models.ReasonEscalation).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := svc.Escalate("c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), outcome.LevelID)
	assert.Equal(t, "Dean", outcome.LevelName)
	assert.Equal(t, 2, outcome.LevelOrder)
	assert.Equal(t, int64(99), outcome.OfficerID)
	assert.Equal(t, svc.now().Add(48*time.Hour), outcome.NewDeadline)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscalate_AtCeiling(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-1").WillReturnRows(pendingComplaintRow("c-1"))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Chancellor", 3, int64(24*3600)))
	// No level above order 3.
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1), 3).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Escalate("c-1")
	assert.ErrorIs(t, err, ErrMaxLevelReached)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscalate_NoResolverAtNextLevel(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-1").WillReturnRows(pendingComplaintRow("c-1"))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Warden", 1, int64(48*3600)))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1), 1).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(20), int64(1), "Dean", 2, int64(48*3600)))
	mock.ExpectQuery("FROM category_resolvers").WithArgs("CAT-AAAA000001", int64(20)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Escalate("c-1")
	assert.ErrorIs(t, err, ErrNoResolverAtLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscalate_ResolvedNotEligible(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(complaintCols).AddRow(
		"c-1", int64(1), int64(42), "CAT-AAAA000001", "Done", "Already handled",
		"resolved", "medium", int64(10), int64(7), now,
		false, now, now,
	)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-1").WillReturnRows(rows)
	mock.ExpectRollback()

	_, err := svc.Escalate("c-1")
	assert.ErrorIs(t, err, ErrComplaintNotEligible)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep_Empty(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	mock.ExpectQuery("FROM complaints").
		WillReturnRows(sqlmock.NewRows(complaintCols))

	result, err := svc.Sweep(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalChecked)
	assert.Equal(t, 0, result.Escalated)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep_StuckComplaintFlaggedOnce(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	mock.ExpectQuery("FROM complaints").WillReturnRows(pendingComplaintRow("c-1"))

	// Escalation hits the ceiling.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-1").WillReturnRows(pendingComplaintRow("c-1"))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Chancellor", 3, int64(24*3600)))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1), 3).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	// The complaint is flagged so the next sweep skips it.
	mock.ExpectExec("max_level_notified").WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Sweep(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalChecked)
	assert.Equal(t, 0, result.Escalated)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, result.Errors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep_ErrorDoesNotAbortBatch(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	overdue := pendingComplaintRow("c-1")
	now := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	overdue.AddRow(
		"c-2", int64(1), int64(43), "CAT-AAAA000002", "Broken lock", "Hostel door",
		"pending", "medium", int64(10), int64(7), now,
		false, now, now,
	)
	mock.ExpectQuery("FROM complaints").WillReturnRows(overdue)

	// c-1 fails hard at the lock.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-1").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	// c-2 escalates cleanly.
	mock.ExpectBegin()
	row := sqlmock.NewRows(complaintCols).AddRow(
		"c-2", int64(1), int64(43), "CAT-AAAA000002", "Broken lock", "Hostel door",
		"pending", "medium", int64(10), int64(7), now,
		false, now, now,
	)
	mock.ExpectQuery("FOR UPDATE").WithArgs("c-2").WillReturnRows(row)
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Warden", 1, int64(48*3600)))
	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1), 1).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(20), int64(1), "Dean", 2, int64(48*3600)))
	mock.ExpectQuery("FROM category_resolvers").WithArgs("CAT-AAAA000002", int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"resolver_id", "category_id", "level_id", "officer_id", "active"}).
			AddRow(int64(6), "CAT-AAAA000002", int64(20), int64(99), true))
	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE complaints").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Sweep(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalChecked)
	assert.Equal(t, 1, result.Escalated)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "c-1", result.Errors[0].ComplaintID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSendReminders(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	// Notifications are disabled in this fixture, so the pass only counts.
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows(complaintCols))

	sent, err := svc.SendReminders(time.Now().UTC(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetEscalationDeadline_NoCurrentLevel(t *testing.T) {
	db, mock, svc := setupEscalationService(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(complaintCols).AddRow(
		"c-1", int64(1), int64(42), nil, "Unrouted", "No level yet",
		"pending", "medium", nil, nil, nil,
		false, now, now,
	)
	mock.ExpectQuery("FROM complaints").WithArgs("c-1").WillReturnRows(rows)

	_, err := svc.SetEscalationDeadline("c-1")
	assert.ErrorIs(t, err, ErrNoCurrentLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}
