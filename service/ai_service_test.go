package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmfs/cache"
	"cmfs/models"
	"cmfs/repository"
)

var categoryCols = []string{"category_id", "institution_id", "name", "description", "parent_id", "is_active", "created_at"}

// queueEmbedder returns pre-programmed vectors, one batch per Embed call.
type queueEmbedder struct {
	batches [][][]float64
	err     error
}

func (e *queueEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	if len(e.batches) == 0 {
		return nil, errors.New("no batches queued")
	}
	batch := e.batches[0]
	e.batches = e.batches[1:]
	return batch, nil
}

func setupAIService(t *testing.T, embedder *queueEmbedder) (*sql.DB, sqlmock.Sqlmock, *AIService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := NewAIService(
		embedder,
		cache.NewMemoryStore(),
		30*time.Minute,
		repository.NewCategoryRepository(db),
		repository.NewComplaintRepository(db),
		repository.NewResolverLevelRepository(db),
		repository.NewCategoryResolverRepository(db),
		repository.NewAssignmentRepository(db),
	)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return db, mock, svc
}

func twoCategoryRows() *sqlmock.Rows {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(categoryCols).
		AddRow("CAT-WATER00001", int64(1), "Water Supply", "Pipes, taps, tanks", nil, true, created).
		AddRow("CAT-ELEC000001", int64(1), "Electrical", "Wiring and power", nil, true, created)
}

func TestPredictCategory_AcceptsClearWinner(t *testing.T) {
	embedder := &queueEmbedder{batches: [][][]float64{
		{{1, 0}, {0, 1}},     // category vectors
		{{0.95, 0.05}},       // complaint text vector, close to Water Supply
	}}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	instID := int64(1)

	// Embedding build: visible categories plus keyword mining per category.
	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	// Score naming pass, then the winner fetch.
	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM categories").WithArgs("CAT-WATER00001").
		WillReturnRows(sqlmock.NewRows(categoryCols).
			AddRow("CAT-WATER00001", int64(1), "Water Supply", "Pipes, taps, tanks", nil, true, created))

	category, scores := svc.PredictCategory(context.Background(), "no water in hostel", &instID)

	require.NotNil(t, category)
	assert.Equal(t, "CAT-WATER00001", category.CategoryID)
	require.NotEmpty(t, scores)
	assert.Equal(t, "CAT-WATER00001", scores[0].CategoryID)
	assert.Greater(t, scores[0].Similarity, scores[1].Similarity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictCategory_RejectsBelowThreshold(t *testing.T) {
	embedder := &queueEmbedder{batches: [][][]float64{
		{{1, 0}, {0, 1}},
		{{0, 0}}, // degenerate vector: zero similarity everywhere
	}}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	instID := int64(1)
	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())

	category, scores := svc.PredictCategory(context.Background(), "completely unrelated gibberish", &instID)

	assert.Nil(t, category)
	assert.NotEmpty(t, scores)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictCategory_EmbedderUnavailable(t *testing.T) {
	embedder := &queueEmbedder{err: errors.New("embedding service unavailable")}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	instID := int64(1)
	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))

	category, scores := svc.PredictCategory(context.Background(), "no water", &instID)

	assert.Nil(t, category)
	assert.Nil(t, scores)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictCategory_NoCategories(t *testing.T) {
	embedder := &queueEmbedder{}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	instID := int64(1)
	mock.ExpectQuery("FROM categories").WillReturnRows(sqlmock.NewRows(categoryCols))

	category, scores := svc.PredictCategory(context.Background(), "anything", &instID)
	assert.Nil(t, category)
	assert.Nil(t, scores)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCategoryEmbeddings_CacheHit(t *testing.T) {
	embedder := &queueEmbedder{batches: [][][]float64{{{1, 0}, {0, 1}}}}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	instID := int64(1)
	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))

	ids, vectors, err := svc.GetCategoryEmbeddings(context.Background(), &instID)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Len(t, vectors, 2)

	// Second call is served from the cache: no queries, no embed calls.
	ids2, vectors2, err := svc.GetCategoryEmbeddings(context.Background(), &instID)
	require.NoError(t, err)
	assert.Equal(t, ids, ids2)
	assert.Equal(t, vectors, vectors2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignToFirstLevel_NoCategoryIsNoop(t *testing.T) {
	embedder := &queueEmbedder{}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	complaint := &models.Complaint{ComplaintID: "c-1"}
	officerID, err := svc.AssignToFirstLevel(complaint)
	require.NoError(t, err)
	assert.Nil(t, officerID)
	assert.False(t, complaint.AssignedOfficerID.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignToFirstLevel_RoutesAndSetsDeadline(t *testing.T) {
	embedder := &queueEmbedder{}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	complaint := &models.Complaint{
		ComplaintID:   "c-1",
		InstitutionID: sql.NullInt64{Int64: 1, Valid: true},
		CategoryID:    sql.NullString{String: "CAT-WATER00001", Valid: true},
	}

	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Warden", 1, int64(48*3600)))
	mock.ExpectQuery("FROM category_resolvers").WithArgs("CAT-WATER00001", int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"resolver_id", "category_id", "level_id", "officer_id", "active"}).
			AddRow(int64(5), "CAT-WATER00001", int64(10), int64(7), true))
	mock.ExpectExec("UPDATE complaints").WithArgs(int64(7), int64(10), "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs("c-1", int64(7), int64(10), models.ReasonInitial).
		WillReturnResult(sqlmock.NewResult(1, 1))

	officerID, err := svc.AssignToFirstLevel(complaint)
	require.NoError(t, err)
	require.NotNil(t, officerID)
	assert.Equal(t, int64(7), *officerID)
	assert.Equal(t, int64(10), complaint.CurrentLevelID.Int64)
	assert.True(t, complaint.EscalationDeadline.Valid)
	assert.Equal(t, svc.now().Add(48*time.Hour), complaint.EscalationDeadline.Time)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignToFirstLevel_NoResolverIsNoop(t *testing.T) {
	embedder := &queueEmbedder{}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	complaint := &models.Complaint{
		ComplaintID:   "c-1",
		InstitutionID: sql.NullInt64{Int64: 1, Valid: true},
		CategoryID:    sql.NullString{String: "CAT-WATER00001", Valid: true},
	}

	mock.ExpectQuery("FROM resolver_levels").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(levelCols).AddRow(int64(10), int64(1), "Warden", 1, int64(48*3600)))
	mock.ExpectQuery("FROM category_resolvers").WithArgs("CAT-WATER00001", int64(10)).
		WillReturnError(sql.ErrNoRows)

	officerID, err := svc.AssignToFirstLevel(complaint)
	require.NoError(t, err)
	assert.Nil(t, officerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessComplaint_ScoresPriorityAndPersistsTriage(t *testing.T) {
	// Classification is unavailable; priority and triage still persist.
	embedder := &queueEmbedder{err: errors.New("down")}
	db, mock, svc := setupAIService(t, embedder)
	defer db.Close()

	instID := int64(1)
	complaint := &models.Complaint{
		ComplaintID:   "c-1",
		InstitutionID: sql.NullInt64{Int64: instID, Valid: true},
		Title:         "URGENT broken mains",
		Description:   "sparks from the distribution box",
	}

	mock.ExpectQuery("FROM categories").WillReturnRows(twoCategoryRows())
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectQuery("FROM complaints").WillReturnRows(sqlmock.NewRows([]string{"text"}))
	mock.ExpectExec("UPDATE complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result := svc.ProcessComplaint(context.Background(), complaint)

	assert.Equal(t, models.PriorityUrgent, result.Priority)
	assert.Nil(t, result.CategoryID)
	assert.Nil(t, result.AssignedOfficerID)
	require.NoError(t, mock.ExpectationsWereMet())
}
