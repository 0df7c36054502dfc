package geo

// Specification is a predicate over T that can be combined with And, Or and Not.
type Specification[T any] interface {
	IsSatisfiedBy(value T) bool
}

// SpecFunc adapts a plain function to Specification.
type SpecFunc[T any] func(T) bool

func (f SpecFunc[T]) IsSatisfiedBy(value T) bool { return f(value) }

// And is satisfied when every spec is; an empty list is always satisfied.
func And[T any](specs ...Specification[T]) Specification[T] {
	return SpecFunc[T](func(v T) bool {
		for _, s := range specs {
			if !s.IsSatisfiedBy(v) {
				return false
			}
		}
		return true
	})
}

// Or is satisfied when any spec is; an empty list is never satisfied.
func Or[T any](specs ...Specification[T]) Specification[T] {
	return SpecFunc[T](func(v T) bool {
		for _, s := range specs {
			if s.IsSatisfiedBy(v) {
				return true
			}
		}
		return false
	})
}

func Not[T any](spec Specification[T]) Specification[T] {
	return SpecFunc[T](func(v T) bool { return !spec.IsSatisfiedBy(v) })
}

// InGeofence holds for coordinates within Radius of Center.
type InGeofence struct {
	Center Coordinate
	Radius Distance
}

func (g InGeofence) IsSatisfiedBy(c Coordinate) bool {
	return g.Center.DistanceTo(c) <= g.Radius.Meters().Value
}

// LocationChanged holds once a new fix is further than Threshold from Last
// and the move cannot be explained by Last's accuracy.
type LocationChanged struct {
	Last      ApproximateCoordinate
	Threshold Distance
}

func (s LocationChanged) IsSatisfiedBy(c ApproximateCoordinate) bool {
	d := s.Last.Coordinate.DistanceTo(c.Coordinate)
	return d > s.Threshold.Meters().Value && d > s.Last.Accuracy.Meters().Value
}

// AccurateLocationMeters is the accuracy LocationIsAccurate accepts.
const AccurateLocationMeters = 16.0

type LocationIsAccurate struct{}

func (LocationIsAccurate) IsSatisfiedBy(c ApproximateCoordinate) bool {
	return c.Accuracy.Meters().Value <= AccurateLocationMeters
}
