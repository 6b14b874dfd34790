package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/config"
)

// RateLimit applies a fixed-window per-IP limit backed by redis. The
// window key is INCRed on every request and expired on first touch. With
// no redis client, or the limiter disabled, requests pass through; a
// redis outage also fails open so login never depends on redis being up.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled {
				return next(c)
			}

			ctx := c.Request().Context()
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.Path(), c.RealIP())

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}
			if count > int64(cfg.Limit) {
				return c.JSON(apperr.TooManyRequests.Status, apperr.TooManyRequests)
			}
			return next(c)
		}
	}
}
