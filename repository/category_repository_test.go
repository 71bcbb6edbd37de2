package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryCols = []string{"category_id", "institution_id", "name", "description", "parent_id", "is_active", "created_at"}

func setupCategoryRepo(t *testing.T) (sqlmock.Sqlmock, *CategoryRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewCategoryRepository(db)
}

func TestGenerateCategoryID_Format(t *testing.T) {
	id := GenerateCategoryID()
	assert.Regexp(t, regexp.MustCompile(`^CAT-[0-9A-F]{10}$`), id)
}

func TestListActiveCategories_NilInstitutionReturnsAll(t *testing.T) {
	mock, repo := setupCategoryRepo(t)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(categoryCols).
		AddRow("CAT-GLOBAL0001", nil, "Academics", "", nil, true, created).
		AddRow("CAT-INST100001", int64(1), "Hostel", "", nil, true, created).
		AddRow("CAT-INST200001", int64(2), "Transport", "", nil, true, created)

	// Without an institution the filter is disabled: every active category
	// comes back, scoped ones included.
	mock.ExpectQuery("FROM categories").WithArgs(nil, nil).WillReturnRows(rows)

	cats, err := repo.ListActiveCategories(nil)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveCategories_ScopedToInstitutionAndGlobal(t *testing.T) {
	mock, repo := setupCategoryRepo(t)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(categoryCols).
		AddRow("CAT-GLOBAL0001", nil, "Academics", "", nil, true, created).
		AddRow("CAT-INST100001", int64(1), "Hostel", "", nil, true, created)

	mock.ExpectQuery("institution_id").WithArgs(int64(1), int64(1)).WillReturnRows(rows)

	instID := int64(1)
	cats, err := repo.ListActiveCategories(&instID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "CAT-GLOBAL0001", cats[0].CategoryID)
	assert.Equal(t, "CAT-INST100001", cats[1].CategoryID)
	require.NoError(t, mock.ExpectationsWereMet())
}
