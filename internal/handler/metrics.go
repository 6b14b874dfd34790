package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/alexampersandria/ephemeride/internal/repository"
	"github.com/alexampersandria/ephemeride/internal/utils"
)

const (
	metricsCacheKey = "metrics"
	metricsCacheTTL = 60 * time.Second
)

// MetricsHandler serves public usage counts. Results are cached in redis
// for a minute because the active-user counts scan the sessions table.
type MetricsHandler struct {
	Users *repository.UserRepo
	Redis *redis.Client
}

func NewMetricsHandler(users *repository.UserRepo, rdb *redis.Client) *MetricsHandler {
	return &MetricsHandler{Users: users, Redis: rdb}
}

type activeUsers struct {
	Hour  int64 `json:"1h"`
	Day   int64 `json:"24h"`
	Week  int64 `json:"7d"`
	Month int64 `json:"30d"`
}

type metricsResp struct {
	TotalUsers  int64       `json:"total_users"`
	ActiveUsers activeUsers `json:"active_users"`
}

// Get returns total and recently-active user counts. Activity means a
// session touched within the window.
func (h *MetricsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, metricsCacheKey).Bytes(); err == nil {
			return c.JSONBlob(http.StatusOK, cached)
		}
	}

	total, err := h.Users.Count(ctx)
	if err != nil {
		return fail(c, err)
	}

	now := utils.UnixMS()
	resp := metricsResp{TotalUsers: total}
	windows := []struct {
		dur  time.Duration
		dest *int64
	}{
		{time.Hour, &resp.ActiveUsers.Hour},
		{24 * time.Hour, &resp.ActiveUsers.Day},
		{7 * 24 * time.Hour, &resp.ActiveUsers.Week},
		{30 * 24 * time.Hour, &resp.ActiveUsers.Month},
	}
	for _, w := range windows {
		count, err := h.Users.ActiveCount(ctx, now-w.dur.Milliseconds())
		if err != nil {
			return fail(c, err)
		}
		*w.dest = count
	}

	if h.Redis != nil {
		if body, err := json.Marshal(resp); err == nil {
			h.Redis.SetEx(ctx, metricsCacheKey, body, metricsCacheTTL)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
