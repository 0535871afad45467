package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentageAndLetter(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		max    float64
		pct    float64
		letter string
	}{
		{"perfect", 50, 50, 100, "A"},
		{"a boundary", 90, 100, 90, "A"},
		{"b", 17, 20, 85, "B"},
		{"c boundary", 70, 100, 70, "C"},
		{"d", 13, 20, 65, "D"},
		{"fail", 59.5, 100, 59.5, "F"},
		{"zero max", 10, 0, 0, "F"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := Grade{Score: tc.score, MaxScore: tc.max}
			assert.InDelta(t, tc.pct, g.Percentage(), 1e-9)
			assert.Equal(t, tc.letter, g.Letter())
		})
	}
}
