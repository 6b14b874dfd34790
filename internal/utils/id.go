package utils

import "github.com/google/uuid"

// NewID returns a random uuid v4 string. It is used for every row id,
// including session ids, which double as bearer credentials and therefore
// must be unguessable.
func NewID() string {
	return uuid.NewString()
}
