package utils

import "math"

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CentsToAmount converts an integer minor-unit total into major units.
// Round2 kills the binary representation drift of the division.
func CentsToAmount(cents int64) float64 {
	return Round2(float64(cents) / 100)
}
