// Package apperr defines the single flat error taxonomy shared by every
// repository and handler. Each kind is a sentinel *Error so callers can
// compare with errors.Is, and each kind carries the HTTP status the
// handler layer should translate it to.
package apperr

import "net/http"

// Error is a typed domain error with a stable code and message. The code
// and message are what clients see; internal detail never rides along.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches two errors by code so errors.Is works on the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	Unauthorized              = &Error{Code: "Unauthorized", Message: "Unauthorized", Status: http.StatusUnauthorized}
	BadRequest                = &Error{Code: "BadRequest", Message: "Bad request", Status: http.StatusBadRequest}
	UserNotFound              = &Error{Code: "UserNotFound", Message: "User not found", Status: http.StatusNotFound}
	EmailAlreadyInUse         = &Error{Code: "EmailAlreadyInUse", Message: "Email already in use", Status: http.StatusConflict}
	InvalidPassword           = &Error{Code: "InvalidPassword", Message: "Invalid password", Status: http.StatusUnauthorized}
	SessionNotFound           = &Error{Code: "SessionNotFound", Message: "Session not found", Status: http.StatusUnauthorized}
	InviteNotFound            = &Error{Code: "InviteNotFound", Message: "Invite not found", Status: http.StatusNotFound}
	InviteUsed                = &Error{Code: "InviteUsed", Message: "Invite already used", Status: http.StatusConflict}
	CategoryNotFound          = &Error{Code: "CategoryNotFound", Message: "Category not found", Status: http.StatusNotFound}
	TagNotFound               = &Error{Code: "TagNotFound", Message: "Tag not found", Status: http.StatusNotFound}
	EntryNotFound             = &Error{Code: "EntryNotFound", Message: "Entry not found", Status: http.StatusNotFound}
	EntryAlreadyExistsForDate = &Error{Code: "EntryAlreadyExistsForDate", Message: "An entry already exists for the given date", Status: http.StatusConflict}
	TooManyRequests           = &Error{Code: "TooManyRequests", Message: "Too many requests", Status: http.StatusTooManyRequests}
	DatabaseError             = &Error{Code: "DatabaseError", Message: "Database error", Status: http.StatusInternalServerError}
	InternalServerError       = &Error{Code: "InternalServerError", Message: "Internal server error", Status: http.StatusInternalServerError}
)
