package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate_Empty(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
}

func TestEstimate_GrowsWithText(t *testing.T) {
	short := Estimate("Hello world.")
	long := Estimate(strings.Repeat("Hello world. ", 50))

	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
}

func TestEstimate_RoughMagnitude(t *testing.T) {
	// 400 characters of plain English should land in the dozens-to-low-hundreds
	// of tokens under either the real encoding or the fallback.
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 9)
	n := Estimate(text)
	assert.Greater(t, n, 20)
	assert.Less(t, n, 250)
}
