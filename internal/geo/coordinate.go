package geo

import "math"

// WGS84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	wgs84B = wgs84A * (1 - wgs84F)
)

// earthRadius is the mean sphere used by destination projection.
const earthRadius = 6371e3

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
// It is a comparable value type and may be used as a map key.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates the range of lat/lon.
func NewCoordinate(latitude, longitude float64) (Coordinate, bool) {
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	return c, c.Valid()
}

// Valid reports whether latitude is in [-90, 90] and longitude in [-180, 180].
func (c Coordinate) Valid() bool {
	return math.Abs(c.Latitude) <= 90 && math.Abs(c.Longitude) <= 180
}

func (c Coordinate) IsNorthernHemisphere() bool { return c.Latitude > 0 }

func (c Coordinate) String() string { return c.DecimalDegrees(6) }

// DistanceTo is the ellipsoidal geodesic distance in meters.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return inverse(c, other).distance
}

// BearingTo is the initial geodesic bearing from c to other, relative to true north.
func (c Coordinate) BearingTo(other Coordinate) Bearing {
	return NewBearing(inverse(c, other).initialBearing)
}

// Plus projects a point meters away along bearing using the spherical
// great-circle direct formula.
func (c Coordinate) Plus(meters float64, bearing Bearing) Coordinate {
	d := meters / earthRadius
	sinD, cosD := math.Sincos(d)
	sinLat, cosLat := math.Sincos(ToRadians(c.Latitude))
	sinB, cosB := math.Sincos(ToRadians(bearing.Value()))

	lat := math.Asin(sinLat*cosD + cosLat*sinD*cosB)
	lon := c.Longitude + ToDegrees(math.Atan2(sinB*sinD*cosLat, cosD-sinLat*math.Sin(lat)))

	return Coordinate{
		Latitude:  ToDegrees(lat),
		Longitude: math.Mod(lon+540, 360) - 180,
	}
}

func (c Coordinate) PlusDistance(distance Distance, bearing Bearing) Coordinate {
	return c.Plus(distance.Meters().Value, bearing)
}
