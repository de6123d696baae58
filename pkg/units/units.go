// Package units converts between the angular units used by pedestal and
// optical commands.
package units

import "math"

const (
	// MilsPerDegree is the NATO mil (6400 per turn) expressed per degree.
	MilsPerDegree = 17.777778

	// DegreesPerMil is the inverse of MilsPerDegree.
	DegreesPerMil = 0.05625
)

// DegreesToMils converts an angle in degrees to mils.
func DegreesToMils(deg float64) float64 {
	return deg * MilsPerDegree
}

// MilsToDegrees converts an angle in mils to degrees.
func MilsToDegrees(mils float64) float64 {
	return mils * DegreesPerMil
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
