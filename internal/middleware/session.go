// Package middleware holds the echo middleware for session
// authentication and request rate limiting.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

// sessionContextKey is where the gate stores the resolved session for
// downstream handlers.
const sessionContextKey = "session"

// BearerToken pulls the session token out of the Authorization header.
// The "Bearer " prefix is accepted but not required; clients may send the
// raw token.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	return header
}

// SessionFromContext returns the session the gate resolved for this
// request. Only valid inside routes behind SessionAuth.
func SessionFromContext(c echo.Context) *repository.Session {
	s, _ := c.Get(sessionContextKey).(*repository.Session)
	return s
}

// SessionAuth guards a route group with bearer session tokens. Every
// authorized request touches the session's accessed_at via the lookup.
// Missing, unknown, expired, and revoked tokens are indistinguishable to
// the caller.
func SessionAuth(sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(apperr.SessionNotFound.Status, apperr.SessionNotFound)
			}

			session, err := sessions.Lookup(c.Request().Context(), token)
			if err != nil {
				var appErr *apperr.Error
				if e, ok := err.(*apperr.Error); ok {
					appErr = e
				} else {
					appErr = apperr.InternalServerError
				}
				return c.JSON(appErr.Status, appErr)
			}

			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}
