package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColorPalette(t *testing.T) {
	for _, c := range []string{"base", "blue", "green", "lime", "yellow", "orange", "red", "purple", "pink"} {
		assert.Equal(t, c, ParseColor(c))
	}
}

func TestParseColorNormalizesCase(t *testing.T) {
	assert.Equal(t, "blue", ParseColor("BLUE"))
	assert.Equal(t, "red", ParseColor("Red"))
}

func TestParseColorUnknownFallsBackToBase(t *testing.T) {
	assert.Equal(t, ColorBase, ParseColor("magenta"))
	assert.Equal(t, ColorBase, ParseColor(""))
	assert.Equal(t, ColorBase, ParseColor("#ff0000"))
}
