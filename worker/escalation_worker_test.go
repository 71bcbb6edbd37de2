package worker

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmfs/repository"
	"cmfs/service"
)

func setupWorker(t *testing.T) (sqlmock.Sqlmock, *EscalationWorker) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	escalations := service.NewEscalationService(
		repository.NewComplaintRepository(db),
		repository.NewResolverLevelRepository(db),
		repository.NewCategoryResolverRepository(db),
		repository.NewAssignmentRepository(db),
		nil,
	)
	return mock, NewEscalationWorker(escalations, 30*time.Minute)
}

var overdueCols = []string{
	"complaint_id", "institution_id", "submitted_by", "category_id", "title", "description",
	"status", "priority", "current_level_id", "assigned_officer_id", "escalation_deadline",
	"max_level_notified", "created_at", "updated_at",
}

func TestRunOnce_SweepsWhenIdle(t *testing.T) {
	mock, w := setupWorker(t)

	mock.ExpectQuery("FROM complaints").
		WillReturnRows(sqlmock.NewRows(overdueCols))

	assert.True(t, w.RunOnce())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_SweepsImmediately(t *testing.T) {
	mock, w := setupWorker(t)

	mock.ExpectQuery("FROM complaints").
		WillReturnRows(sqlmock.NewRows(overdueCols))

	// The interval is far longer than the test, so only the startup sweep
	// can satisfy the expectation.
	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for mock.ExpectationsWereMet() != nil {
		if time.Now().After(deadline) {
			t.Fatal("startup sweep did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunOnce_SkipsWhileSweepInFlight(t *testing.T) {
	_, w := setupWorker(t)

	w.running.Store(true)
	assert.False(t, w.RunOnce())
	w.running.Store(false)
}

func TestStartStop(t *testing.T) {
	_, w := setupWorker(t)
	w.Start()
	w.Stop()
}
