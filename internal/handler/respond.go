// Package handler contains the HTTP endpoints. Handlers bind input,
// delegate to repositories, and translate domain errors to JSON.
package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/alexampersandria/ephemeride/internal/apperr"
)

// fail translates a domain error into its JSON response. Anything that
// is not an apperr collapses to a generic 500 so internals never leak.
func fail(c echo.Context, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, appErr)
	}
	return c.JSON(apperr.InternalServerError.Status, apperr.InternalServerError)
}
