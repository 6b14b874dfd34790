package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexampersandria/ephemeride/internal/apperr"
)

func TestCategoryCreateValidatesName(t *testing.T) {
	db, _ := newMock(t)
	repo := NewCategoryRepo(db)

	_, err := repo.Create(context.Background(), "u-1", "")
	assert.ErrorIs(t, err, apperr.BadRequest)
}

func TestCategoryGetScopedToOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = ? AND user_id = ?")).
		WithArgs("c-1", "u-other").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "c-1", "u-other")
	assert.ErrorIs(t, err, apperr.CategoryNotFound)
}

func TestCategoryListWithTagsGroupsByCategory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE user_id = ? ORDER BY name ASC")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at"}).
			AddRow("c-1", "Activities", "u-1", 1).
			AddRow("c-2", "Tags", "u-1", 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tags WHERE user_id = ? ORDER BY name ASC")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "name", "color", "category_id"}).
			AddRow("t-1", "u-1", 1, "Important", "blue", "c-2").
			AddRow("t-2", "u-1", 1, "Work", "base", "c-1"))

	categories, err := repo.ListWithTags(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Len(t, categories[0].Tags, 1)
	assert.Equal(t, "Work", categories[0].Tags[0].Name)
	require.Len(t, categories[1].Tags, 1)
	assert.Equal(t, "Important", categories[1].Tags[0].Name)
}

func TestCategoryDeleteCascadesTagsAndLinks(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE et FROM entry_tags et").
		WithArgs("c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tags WHERE category_id = ? AND user_id = ?")).
		WithArgs("c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = ? AND user_id = ?")).
		WithArgs("c-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), "c-1", "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryDeleteUnknownCategory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE et FROM entry_tags et").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tags WHERE category_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.Delete(context.Background(), "c-nope", "u-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
