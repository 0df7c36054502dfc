// Package nav computes navigation results between positions and beacons:
// vectors, triangulated fixes, dead reckoning, proximity and ETA.
package nav

import (
	"math"
	"time"

	"trailnav/internal/geo"
)

const (
	// Walking speed bounds used when the reported speed is too low to be
	// a vehicle.
	minWalkingSpeed  = 0.89
	maxWalkingSpeed  = 1.5
	vehicleThreshold = 3.0

	// Naismith: 30 minutes per 300 m of ascent.
	naismithClimbMeters = 300.0
	naismithClimbTime   = 30 * time.Minute

	// Trails wander; a non-linear route is modelled as a half circle over
	// the straight path.
	trailSinuosity = math.Pi / 2

	// Fixes must sit less than a quarter great circle ahead of both
	// observers, and the paths must cross at more than a tenth of a degree.
	maxFixAngle      = math.Pi / 2
	minCrossingAngle = 0.1 * math.Pi / 180
	bearingTolerance = 1e-6
)

// Service is stateless and safe for concurrent use.
type Service struct{}

func NewService() Service { return Service{} }

// Navigate returns the bearing and distance from one point to another.
// When useTrueNorth is false the bearing is converted to magnetic using
// declination (east positive).
func (Service) Navigate(from, to geo.Coordinate, declination float64, useTrueNorth bool) Vector {
	bearing := from.BearingTo(to)
	if !useTrueNorth {
		bearing = bearing.WithDeclination(-declination)
	}
	return Vector{Direction: bearing, Distance: from.DistanceTo(to)}
}

func (s Service) NavigateTo(from Position, to Beacon, declination float64, useTrueNorth bool) Vector {
	return s.Navigate(from.Coordinate, to.Coordinate, declination, useTrueNorth)
}

// Triangulate intersects the great circles leaving a on bearingA and b on
// bearingB. ok is false for coincident observers, for paths that are
// parallel or diverge, and for paths that only meet behind an observer or
// on the far side of the globe.
func (Service) Triangulate(a geo.Coordinate, bearingA geo.Bearing, b geo.Coordinate, bearingB geo.Bearing) (geo.Coordinate, bool) {
	phi1, lambda1 := geo.ToRadians(a.Latitude), geo.ToRadians(a.Longitude)
	phi2, lambda2 := geo.ToRadians(b.Latitude), geo.ToRadians(b.Longitude)
	theta13, theta23 := geo.ToRadians(bearingA.Value()), geo.ToRadians(bearingB.Value())

	dLambda := lambda2 - lambda1
	delta12 := centralAngle(phi1, lambda1, phi2, lambda2)
	if math.Abs(delta12) < 1e-12 {
		return geo.Coordinate{}, false
	}

	cosThetaA := (math.Sin(phi2) - math.Sin(phi1)*math.Cos(delta12)) / (math.Sin(delta12) * math.Cos(phi1))
	cosThetaB := (math.Sin(phi1) - math.Sin(phi2)*math.Cos(delta12)) / (math.Sin(delta12) * math.Cos(phi2))
	thetaA := math.Acos(geo.Clamp(cosThetaA, -1, 1))
	thetaB := math.Acos(geo.Clamp(cosThetaB, -1, 1))

	theta12, theta21 := thetaA, 2*math.Pi-thetaB
	if math.Sin(dLambda) <= 0 {
		theta12, theta21 = 2*math.Pi-thetaA, thetaB
	}

	alpha1 := theta13 - theta12
	alpha2 := theta21 - theta23
	sinA1, sinA2 := math.Sin(alpha1), math.Sin(alpha2)
	if math.Abs(sinA1) < 1e-10 && math.Abs(sinA2) < 1e-10 {
		return geo.Coordinate{}, false
	}
	if sinA1*sinA2 < 0 {
		return geo.Coordinate{}, false
	}

	cosA3 := -math.Cos(alpha1)*math.Cos(alpha2) + sinA1*sinA2*math.Cos(delta12)
	alpha3 := math.Acos(geo.Clamp(cosA3, -1, 1))
	if math.Sin(alpha3) < math.Sin(minCrossingAngle) {
		return geo.Coordinate{}, false
	}
	delta13 := math.Atan2(math.Sin(delta12)*sinA1*sinA2, math.Cos(alpha2)+math.Cos(alpha1)*math.Cos(alpha3))

	phi3 := math.Asin(geo.Clamp(math.Sin(phi1)*math.Cos(delta13)+math.Cos(phi1)*math.Sin(delta13)*math.Cos(theta13), -1, 1))
	dLambda13 := math.Atan2(math.Sin(theta13)*math.Sin(delta13)*math.Cos(phi1), math.Cos(delta13)-math.Sin(phi1)*math.Sin(phi3))

	lambda3 := lambda1 + dLambda13
	if !ahead(phi1, lambda1, theta13, phi3, lambda3) || !ahead(phi2, lambda2, theta23, phi3, lambda3) {
		return geo.Coordinate{}, false
	}

	c := geo.Coordinate{
		Latitude:  geo.ToDegrees(phi3),
		Longitude: math.Mod(geo.ToDegrees(lambda3)+540, 360) - 180,
	}
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) || !c.Valid() {
		return geo.Coordinate{}, false
	}
	return c, true
}

// ahead reports whether the point (phi, lambda) lies along bearing theta
// from the observer, within maxFixAngle of it.
func ahead(phiObs, lambdaObs, theta, phi, lambda float64) bool {
	d := centralAngle(phiObs, lambdaObs, phi, lambda)
	if math.IsNaN(d) || d >= maxFixAngle {
		return false
	}
	if d < 1e-12 {
		return true
	}
	y := math.Sin(lambda-lambdaObs) * math.Cos(phi)
	x := math.Cos(phiObs)*math.Sin(phi) - math.Sin(phiObs)*math.Cos(phi)*math.Cos(lambda-lambdaObs)
	diff := math.Remainder(math.Atan2(y, x)-theta, 2*math.Pi)
	return math.Abs(diff) < bearingTolerance
}

// centralAngle is the haversine angle between two points, in radians.
func centralAngle(phi1, lambda1, phi2, lambda2 float64) float64 {
	dPhi, dLambda := phi2-phi1, lambda2-lambda1
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * math.Asin(math.Sqrt(geo.Clamp(h, 0, 1)))
}

// DeadReckon moves distance meters away from last, heading opposite to
// bearingToLast.
func (s Service) DeadReckon(last geo.Coordinate, distance float64, bearingToLast geo.Bearing) geo.Coordinate {
	return s.Destination(last, distance, bearingToLast.Reciprocal())
}

func (Service) Destination(from geo.Coordinate, distance float64, bearing geo.Bearing) geo.Coordinate {
	return from.Plus(distance, bearing)
}

// Nearby keeps the beacons within maxDistance meters of location, in their
// original order.
func (Service) Nearby(location geo.Coordinate, beacons []Beacon, maxDistance float64) []Beacon {
	out := make([]Beacon, 0, len(beacons))
	for _, b := range beacons {
		if location.DistanceTo(b.Coordinate) <= maxDistance {
			out = append(out, b)
		}
	}
	return out
}

// ETA estimates the travel time from a position to a beacon. The path is
// the straight 3D line (or a meandering trail when nonLinear), walked at
// the position's speed, plus Naismith's allowance for any ascent.
func (Service) ETA(from Position, to Beacon, nonLinear bool) time.Duration {
	speed := from.Speed
	if speed < vehicleThreshold {
		speed = geo.Clamp(speed, minWalkingSpeed, maxWalkingSpeed)
	}

	var climb float64
	if to.Elevation != nil {
		climb = *to.Elevation - from.Altitude
	}

	path := math.Hypot(from.Coordinate.DistanceTo(to.Coordinate), climb)
	if nonLinear {
		path *= trailSinuosity
	}

	seconds := path / speed
	if climb > 0 {
		seconds += climb / naismithClimbMeters * naismithClimbTime.Seconds()
	}
	return time.Duration(seconds * float64(time.Second))
}

// PaceDistance is paces × paceLength, in paceLength's units.
func (Service) PaceDistance(paces int, paceLength geo.Distance) geo.Distance {
	return geo.Distance{Value: float64(paces) * paceLength.Value, Units: paceLength.Units}
}

// Paces counts one pace per two steps.
func (Service) Paces(steps int) int {
	return steps / 2
}

// PaceLength is the distance covered per pace; zero paces yields zero.
func (Service) PaceLength(paces int, travelled geo.Distance) geo.Distance {
	if paces == 0 {
		return geo.Distance{Value: 0, Units: travelled.Units}
	}
	return geo.Distance{Value: travelled.Value / float64(paces), Units: travelled.Units}
}
