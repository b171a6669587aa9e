package camera

import "math"

// SourcePoint is a position in source pixel space.
type SourcePoint struct {
	X float64
	Y float64
}

// NormPoint is a position in normalized [0,1] space. The two point types are
// kept distinct so pixel and normalized coordinates cannot be mixed up.
type NormPoint struct {
	X float64
	Y float64
}

// Norm converts a pixel position into normalized space.
func (p SourcePoint) Norm(w, h float64) NormPoint {
	if w <= 0 || h <= 0 {
		return NormPoint{X: 0.5, Y: 0.5}
	}
	return NormPoint{X: p.X / w, Y: p.Y / h}
}

// Source converts a normalized position back into pixel space.
func (p NormPoint) Source(w, h float64) SourcePoint {
	return SourcePoint{X: p.X * w, Y: p.Y * h}
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic applies smooth easing function.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

// clampCenter keeps the visible half-window inside content bounds, allowing
// the camera to travel the configured overscan past the edges. When the
// window is wider than the content the axis collapses to 0.5.
func clampCenter(c NormPoint, halfX, halfY, overscan float64) NormPoint {
	loX, hiX := halfX-overscan, 1-halfX+overscan
	loY, hiY := halfY-overscan, 1-halfY+overscan

	if loX > hiX {
		c.X = 0.5
	} else {
		c.X = clamp(c.X, loX, hiX)
	}
	if loY > hiY {
		c.Y = 0.5
	} else {
		c.Y = clamp(c.Y, loY, hiY)
	}
	return c
}

// fillScale is the zoom that guarantees full-frame coverage while the camera
// wanders within the overscan margin.
func fillScale(overscan float64) float64 {
	return 1 + 2*overscan
}
