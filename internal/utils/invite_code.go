package utils

// NewInviteCode returns a fresh random invite code.
//
// TODO: generate shorter human-readable codes that stay unique.
func NewInviteCode() string {
	return NewID()
}
