package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDegreesToMils(t *testing.T) {
	tests := []struct {
		deg  float64
		want float64
	}{
		{0, 0},
		{90, 1600},
		{180, 3200},
		{-45, -800},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, DegreesToMils(tt.deg), 0.001, "deg=%v", tt.deg)
	}
}

func TestMilsToDegrees(t *testing.T) {
	assert.InDelta(t, 90.0, MilsToDegrees(1600), 1e-9)
	assert.InDelta(t, 360.0, MilsToDegrees(6400), 1e-9)
}

func TestRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, DegreesToRadians(180), 1e-12)
	assert.InDelta(t, 57.29577951, RadiansToDegrees(1), 1e-8)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1600.0, Round(DegreesToMils(90), 2))
	assert.Equal(t, 12.35, Round(12.345678, 2))
	assert.Equal(t, -12.35, Round(-12.345678, 2))
	assert.Equal(t, 3.0, Round(3.14159, 0))
}
