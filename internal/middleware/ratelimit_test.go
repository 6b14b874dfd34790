package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexampersandria/ephemeride/internal/config"
)

func hitOnce(t *testing.T, mw echo.MiddlewareFunc) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/auth")

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec.Code
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mw := RateLimit(rdb, config.RateLimitConfig{
		Enabled: true,
		Limit:   2,
		Window:  time.Minute,
		Prefix:  "rl",
	})

	assert.Equal(t, http.StatusOK, hitOnce(t, mw))
	assert.Equal(t, http.StatusOK, hitOnce(t, mw))
	assert.Equal(t, http.StatusTooManyRequests, hitOnce(t, mw))
}

func TestRateLimitWindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mw := RateLimit(rdb, config.RateLimitConfig{
		Enabled: true,
		Limit:   1,
		Window:  time.Minute,
		Prefix:  "rl",
	})

	assert.Equal(t, http.StatusOK, hitOnce(t, mw))
	assert.Equal(t, http.StatusTooManyRequests, hitOnce(t, mw))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, hitOnce(t, mw))
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	mw := RateLimit(nil, config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute})
	assert.Equal(t, http.StatusOK, hitOnce(t, mw))
	assert.Equal(t, http.StatusOK, hitOnce(t, mw))
}
