package geo

import "math"

// LowPassFilter is an exponential smoothing filter. Alpha in (0, 1]; higher
// values follow the input more closely.
type LowPassFilter struct {
	alpha float64
	value float64
}

func NewLowPassFilter(alpha, initial float64) *LowPassFilter {
	return &LowPassFilter{alpha: Clamp(alpha, 0, 1), value: initial}
}

func (f *LowPassFilter) Filter(measurement float64) float64 {
	f.value = (1-f.alpha)*f.value + f.alpha*measurement
	return f.value
}

func (f *LowPassFilter) Value() float64 { return f.value }

// MovingAverageFilter averages the most recent Window samples.
type MovingAverageFilter struct {
	window int
	buf    []float64
	next   int
	sum    float64
}

func NewMovingAverageFilter(window int) *MovingAverageFilter {
	if window < 1 {
		window = 1
	}
	return &MovingAverageFilter{window: window, buf: make([]float64, 0, window)}
}

func (f *MovingAverageFilter) Filter(measurement float64) float64 {
	if len(f.buf) < f.window {
		f.buf = append(f.buf, measurement)
		f.sum += measurement
		return f.sum / float64(len(f.buf))
	}
	f.sum += measurement - f.buf[f.next]
	f.buf[f.next] = measurement
	f.next = (f.next + 1) % f.window
	return f.sum / float64(f.window)
}

// Smooth runs data through a low pass filter seeded with the first sample.
func Smooth(data []float64, alpha float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	out := make([]float64, len(data))
	out[0] = data[0]
	f := NewLowPassFilter(alpha, data[0])
	for i := 1; i < len(data); i++ {
		out[i] = f.Filter(data[i])
	}
	return out
}

func MovingAverage(data []float64, window int) []float64 {
	f := NewMovingAverageFilter(window)
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = f.Filter(v)
	}
	return out
}

// Slope returns the slope of the least-squares line through (x[i], y[i]).
// Extra samples in the longer slice are ignored. Degenerate input yields 0.
func Slope(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n == 0 {
		return 0
	}

	var xBar, yBar float64
	for i := 0; i < n; i++ {
		xBar += x[i]
		yBar += y[i]
	}
	xBar /= float64(n)
	yBar /= float64(n)

	var ssxx, ssxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - xBar
		ssxx += dx * dx
		ssxy += dx * (y[i] - yBar)
	}
	if ssxx == 0 {
		return 0
	}
	return ssxy / ssxx
}

// AverageBearing is the circular mean of the given bearings. An empty or
// fully cancelling set yields north.
func AverageBearing(bearings []Bearing) Bearing {
	var sx, sy float64
	for _, b := range bearings {
		s, c := math.Sincos(ToRadians(b.Value()))
		sx += s
		sy += c
	}
	if math.Abs(sx) < 1e-12 && math.Abs(sy) < 1e-12 {
		return Bearing{}
	}
	return NewBearing(ToDegrees(math.Atan2(sx, sy)))
}

// BearingFilter low-pass filters a heading on the unit circle so the
// 359°→0° crossing does not drag the result through south.
type BearingFilter struct {
	sin, cos *LowPassFilter
	value    Bearing
}

func NewBearingFilter(alpha float64, initial Bearing) *BearingFilter {
	s, c := math.Sincos(ToRadians(initial.Value()))
	return &BearingFilter{
		sin:   NewLowPassFilter(alpha, s),
		cos:   NewLowPassFilter(alpha, c),
		value: initial,
	}
}

func (f *BearingFilter) Filter(b Bearing) Bearing {
	s, c := math.Sincos(ToRadians(b.Value()))
	fs, fc := f.sin.Filter(s), f.cos.Filter(c)
	if math.Abs(fs) > 1e-12 || math.Abs(fc) > 1e-12 {
		f.value = NewBearing(ToDegrees(math.Atan2(fs, fc)))
	}
	return f.value
}

func (f *BearingFilter) Value() Bearing { return f.value }

// SmoothBearings runs a heading series through a BearingFilter seeded with
// the first sample.
func SmoothBearings(data []Bearing, alpha float64) []Bearing {
	if len(data) == 0 {
		return nil
	}
	out := make([]Bearing, len(data))
	out[0] = data[0]
	f := NewBearingFilter(alpha, data[0])
	for i := 1; i < len(data); i++ {
		out[i] = f.Filter(data[i])
	}
	return out
}
