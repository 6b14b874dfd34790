package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexampersandria/ephemeride/internal/config"
	"github.com/alexampersandria/ephemeride/internal/repository"
	"github.com/alexampersandria/ephemeride/internal/service"
)

func newUserHandler(db *sql.DB, cfg config.Config) *UserHandler {
	users := repository.NewUserRepo(db, bcrypt.MinCost)
	sessions := repository.NewSessionRepo(db, users, 0)
	categories := repository.NewCategoryRepo(db)
	return NewUserHandler(cfg, users, sessions,
		repository.NewInviteRepo(db), categories,
		repository.NewTagRepo(db, categories), service.NewPublisher(""))
}

func TestRegisterWithoutInviteWhenRequired(t *testing.T) {
	db, _ := newMockDB(t)
	h := newUserHandler(db, config.Config{InviteRequired: true})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/user",
		`{"name":"Alice","email":"alice@example.com","password":"longenough"}`), rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "InviteNotFound")
}

func TestRegisterWithUsedInvite(t *testing.T) {
	db, mock := newMockDB(t)
	h := newUserHandler(db, config.Config{InviteRequired: true})

	mock.ExpectQuery(regexp.QuoteMeta("FROM invites WHERE code = ?")).
		WithArgs("welcome").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "code", "used"}).
			AddRow("i-1", 1, "welcome", true))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/user",
		`{"name":"Alice","email":"alice@example.com","password":"longenough","invite":"welcome"}`), rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "InviteUsed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectedSignupLeavesInviteUsable(t *testing.T) {
	db, mock := newMockDB(t)
	h := newUserHandler(db, config.Config{InviteRequired: true})

	mock.ExpectQuery(regexp.QuoteMeta("FROM invites WHERE code = ?")).
		WithArgs("welcome").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "code", "used"}).
			AddRow("i-1", 1, "welcome", false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-existing"))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/user",
		`{"name":"Alice","email":"taken@example.com","password":"longenough","invite":"welcome"}`), rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EmailAlreadyInUse")
	// no UPDATE invites expectation was queued; the code stays unused
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRedeemsInviteAfterAccountCreation(t *testing.T) {
	db, mock := newMockDB(t)
	h := newUserHandler(db, config.Config{InviteRequired: true})

	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invites WHERE code = ?")).
		WithArgs("welcome").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "code", "used"}).
			AddRow("i-1", 1, "welcome", false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invites SET used = TRUE")).
		WithArgs("welcome").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM invites WHERE code = ?")).
		WithArgs("welcome").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "code", "used"}).
			AddRow("i-1", 1, "welcome", true))

	for _, tagCount := range []int{6, 3} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for i := 0; i < tagCount; i++ {
			mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = ? AND user_id = ?")).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at"}).
					AddRow("c-1", "x", "u-1", 1))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tags")).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT password_hash FROM users WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(string(hash)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/user",
		`{"name":"Alice","email":"alice@example.com","password":"longenough","invite":"welcome"}`), rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderAuthorization))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterSeedsTaxonomyAndOpensSession(t *testing.T) {
	db, mock := newMockDB(t)
	h := newUserHandler(db, config.Config{})

	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// default taxonomy: Activities with 6 tags, Tags with 3
	for _, tagCount := range []int{6, 3} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for i := 0; i < tagCount; i++ {
			mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = ? AND user_id = ?")).
				WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at"}).
					AddRow("c-1", "x", "u-1", 1))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tags")).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT password_hash FROM users WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(string(hash)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/user",
		`{"name":"Alice","email":"alice@example.com","password":"longenough"}`), rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderAuthorization))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserCascades(t *testing.T) {
	db, mock := newMockDB(t)
	h := newUserHandler(db, config.Config{})

	mock.ExpectBegin()
	for i := 0; i < 5; i++ {
		mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/user", nil)
	c := e.NewContext(req, rec)
	c.Set("session", &repository.Session{ID: "tok-1", UserID: "u-1"})

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
