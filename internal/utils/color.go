package utils

import "strings"

// ColorBase is the default tag color. Unrecognized color input coerces to
// it instead of erroring.
const ColorBase = "base"

var tagColors = map[string]bool{
	ColorBase: true,
	"blue":    true,
	"green":   true,
	"lime":    true,
	"yellow":  true,
	"orange":  true,
	"red":     true,
	"purple":  true,
	"pink":    true,
}

// ParseColor normalizes a color string against the fixed palette. Unknown
// values fall back to ColorBase.
func ParseColor(s string) string {
	c := strings.ToLower(s)
	if tagColors[c] {
		return c
	}
	return ColorBase
}
