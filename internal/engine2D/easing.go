package engine2D

import "math"

// EaseOutQuart decelerates towards the end: 1 - (1-t)^4.
func EaseOutQuart(t float64) float64 {
	return 1 - math.Pow(1-t, 4)
}

// Lerp returns a at t=0 and b at t=1.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
