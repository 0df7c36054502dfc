package geo

import "math"

// NormalizeAngle wraps an angle in degrees into [0, 360).
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(Wrap(angle, 0, 360), 360)
	if a == 0 {
		// Collapse -0.
		return 0
	}
	return a
}

// Wrap shifts value by whole multiples of (hi-lo) until it lies in [lo, hi].
func Wrap(value, lo, hi float64) float64 {
	r := hi - lo
	if r <= 0 {
		return lo
	}
	if value > hi {
		value -= math.Ceil((value-hi)/r) * r
	}
	if value < lo {
		value += math.Ceil((lo-value)/r) * r
	}
	return value
}

// DeltaAngle returns the signed shortest rotation from angle1 to angle2, in (-180, 180].
func DeltaAngle(angle1, angle2 float64) float64 {
	delta := angle2 - angle1
	delta += 180
	delta -= math.Floor(delta/360) * 360
	delta -= 180
	if delta == -180 {
		delta = 180
	}
	return delta
}

func Clamp(value, minimum, maximum float64) float64 {
	return math.Min(maximum, math.Max(minimum, value))
}

func ToRadians(deg float64) float64 { return deg * math.Pi / 180 }

func ToDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func SinDegrees(deg float64) float64 { return math.Sin(ToRadians(deg)) }

func CosDegrees(deg float64) float64 { return math.Cos(ToRadians(deg)) }

func TanDegrees(deg float64) float64 { return math.Tan(ToRadians(deg)) }

// RoundPlaces rounds v to the given number of decimal places (half away from zero).
func RoundPlaces(v float64, places int) float64 {
	if places < 0 {
		places = 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
