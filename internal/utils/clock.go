package utils

import "time"

// UnixMS returns the current time as epoch milliseconds. All created_at
// and accessed_at columns store this format.
func UnixMS() int64 {
	return time.Now().UnixMilli()
}
