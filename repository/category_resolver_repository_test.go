package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmfs/models"
)

var resolverCols = []string{"resolver_id", "category_id", "level_id", "officer_id", "active"}

func setupResolverRepo(t *testing.T) (sqlmock.Sqlmock, *CategoryResolverRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewCategoryResolverRepository(db)
}

func TestFindActiveResolver_LowestOfficerWins(t *testing.T) {
	mock, repo := setupResolverRepo(t)

	// The query orders by officer_id and takes one row, so when several
	// officers cover the same (category, level) the smallest id is returned.
	mock.ExpectQuery("ORDER BY officer_id ASC LIMIT 1").
		WithArgs("CAT-AAAA000001", int64(20)).
		WillReturnRows(sqlmock.NewRows(resolverCols).
			AddRow(int64(5), "CAT-AAAA000001", int64(20), int64(7), true))

	resolver, err := repo.FindActiveResolver("CAT-AAAA000001", 20)
	require.NoError(t, err)
	require.NotNil(t, resolver)
	assert.Equal(t, int64(7), resolver.OfficerID)
	assert.Equal(t, int64(20), resolver.LevelID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveResolver_NilWhenAbsent(t *testing.T) {
	mock, repo := setupResolverRepo(t)

	mock.ExpectQuery("FROM category_resolvers").
		WithArgs("CAT-AAAA000001", int64(20)).
		WillReturnError(sql.ErrNoRows)

	resolver, err := repo.FindActiveResolver("CAT-AAAA000001", 20)
	require.NoError(t, err)
	assert.Nil(t, resolver)
}

func TestCreateResolver_SetsID(t *testing.T) {
	mock, repo := setupResolverRepo(t)

	mock.ExpectExec("INSERT INTO category_resolvers").
		WithArgs("CAT-AAAA000001", int64(20), int64(7), true).
		WillReturnResult(sqlmock.NewResult(5, 1))

	resolver := &models.CategoryResolver{
		CategoryID: "CAT-AAAA000001",
		LevelID:    20,
		OfficerID:  7,
		Active:     true,
	}
	require.NoError(t, repo.CreateResolver(resolver))
	assert.Equal(t, int64(5), resolver.ResolverID)
	require.NoError(t, mock.ExpectationsWereMet())
}
