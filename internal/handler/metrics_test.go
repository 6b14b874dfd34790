package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexampersandria/ephemeride/internal/repository"
)

func TestMetricsComputesCounts(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewMetricsHandler(repository.NewUserRepo(db, bcrypt.MinCost), nil)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
	for _, active := range []int64{5, 20, 50, 80} {
		mock.ExpectQuery("SELECT COUNT\\(DISTINCT u.id\\)").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(active))
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), rec)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"total_users":100,"active_users":{"1h":5,"24h":20,"7d":50,"30d":80}}`,
		rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsServedFromCache(t *testing.T) {
	db, mock := newMockDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := NewMetricsHandler(repository.NewUserRepo(db, bcrypt.MinCost), rdb)

	cached := `{"total_users":1,"active_users":{"1h":0,"24h":0,"7d":0,"30d":1}}`
	require.NoError(t, mr.Set("metrics", cached))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), rec)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, cached, rec.Body.String())
	// no database traffic on a cache hit
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsPopulatesCache(t *testing.T) {
	db, mock := newMockDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := NewMetricsHandler(repository.NewUserRepo(db, bcrypt.MinCost), rdb)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	for i := 0; i < 4; i++ {
		mock.ExpectQuery("SELECT COUNT\\(DISTINCT u.id\\)").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/metrics", nil), rec)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mr.Exists("metrics"))
}
