package emissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		total    float64
		expected Level
	}{
		{0, LevelLow},
		{49.99, LevelLow},
		{50.00, LevelMedium},
		{99.99, LevelMedium},
		{100.00, LevelHigh},
		{85, LevelMedium},
		{12345, LevelHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, Classify(tc.total), "total=%v", tc.total)
	}
}

func TestClassifyAlwaysReturnsKnownLevel(t *testing.T) {
	for _, total := range []float64{0, 1, 49, 50, 99, 100, 1e6} {
		level := Classify(total)
		assert.True(t, ValidLevel(string(level)))
	}
}
