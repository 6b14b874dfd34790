// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/alexampersandria/ephemeride/internal/config"
	"github.com/alexampersandria/ephemeride/internal/handler"
	"github.com/alexampersandria/ephemeride/internal/middleware"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Sessions   *handler.SessionHandler
	Categories *handler.CategoryHandler
	Tags       *handler.TagHandler
	Entries    *handler.EntryHandler
	Metrics    *handler.MetricsHandler
}

// Register mounts all routes. Credential endpoints (login and signup) sit
// behind the rate limiter; everything owned by a user sits behind the
// session gate.
func Register(e *echo.Echo, h Handlers, sessions *repository.SessionRepo, rdb *redis.Client, rl config.RateLimitConfig) {
	e.GET("/", h.Health.Root)
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", h.Metrics.Get)
	e.GET("/auth/config", h.Auth.AuthConfig)

	limited := e.Group("", middleware.RateLimit(rdb, rl))
	limited.POST("/auth", h.Auth.Login)
	limited.POST("/user", h.Users.Register)

	auth := e.Group("", middleware.SessionAuth(sessions))
	auth.GET("/user", h.Users.Get)
	auth.PATCH("/user", h.Users.Update)
	auth.PATCH("/user/password", h.Users.UpdatePassword)
	auth.DELETE("/user", h.Users.Delete)

	auth.GET("/sessions", h.Sessions.List)
	auth.DELETE("/session", h.Sessions.Delete)

	auth.POST("/category", h.Categories.Create)
	auth.GET("/user/categories", h.Categories.List)
	auth.PATCH("/category/:id", h.Categories.Update)
	auth.DELETE("/category/:id", h.Categories.Delete)

	auth.POST("/tag", h.Tags.Create)
	auth.PATCH("/tag/:id", h.Tags.Update)
	auth.DELETE("/tag/:id", h.Tags.Delete)

	auth.POST("/entry", h.Entries.Create)
	auth.GET("/entry/:id", h.Entries.Get)
	auth.PATCH("/entry/:id", h.Entries.Update)
	auth.DELETE("/entry/:id", h.Entries.Delete)
	auth.GET("/entries", h.Entries.Query)
	auth.GET("/entries/:from_date/:to_date", h.Entries.Range)
}
