package geo

import "math"

const (
	upsK0           = 0.994
	upsFalseEasting = 2000000.0
	upsFalseNorth   = 2000000.0

	// UPS is defined poleward of these, with half a degree of overlap into UTM.
	upsMinNorthLat = 83.5
	upsMaxSouthLat = -79.5
)

type upsPoint struct {
	North    bool
	Easting  float64
	Northing float64
}

// upsScale is 2·a·k0 / sqrt((1+e)^(1+e)·(1−e)^(1−e)).
func upsScale() float64 {
	e := wgs84E
	return 2 * wgs84A * upsK0 / math.Sqrt(math.Pow(1+e, 1+e)*math.Pow(1-e, 1-e))
}

func toUPS(c Coordinate) (upsPoint, error) {
	if !c.Valid() {
		return upsPoint{}, errOutsideUPS
	}
	north := c.Latitude >= 0
	if north && c.Latitude < upsMinNorthLat {
		return upsPoint{}, errOutsideUPS
	}
	if !north && c.Latitude > upsMaxSouthLat {
		return upsPoint{}, errOutsideUPS
	}

	e := wgs84E
	phi := ToRadians(math.Abs(c.Latitude))
	sinPhi := math.Sin(phi)
	t := math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*sinPhi)/(1+e*sinPhi), e/2)
	rho := upsScale() * t

	sinL, cosL := math.Sincos(ToRadians(c.Longitude))
	p := upsPoint{North: north, Easting: upsFalseEasting + rho*sinL}
	if north {
		p.Northing = upsFalseNorth - rho*cosL
	} else {
		p.Northing = upsFalseNorth + rho*cosL
	}
	return p, nil
}

func fromUPS(p upsPoint) (Coordinate, error) {
	dx := p.Easting - upsFalseEasting
	dy := p.Northing - upsFalseNorth
	rho := math.Hypot(dx, dy)
	t := rho / upsScale()
	chi := math.Pi/2 - 2*math.Atan(t)

	e2 := wgs84E * wgs84E
	e4, e6, e8 := e2*e2, e2*e2*e2, e2*e2*e2*e2
	phi := chi +
		(e2/2+5*e4/24+e6/12+13*e8/360)*math.Sin(2*chi) +
		(7*e4/48+29*e6/240+811*e8/11520)*math.Sin(4*chi) +
		(7*e6/120+81*e8/1120)*math.Sin(6*chi) +
		(4279*e8/161280)*math.Sin(8*chi)

	var lambda float64
	if rho != 0 {
		if p.North {
			lambda = math.Atan2(dx, -dy)
		} else {
			lambda = math.Atan2(dx, dy)
		}
	}

	lat := math.Min(ToDegrees(phi), 90)
	if !p.North {
		lat = -lat
	}
	c := Coordinate{Latitude: lat, Longitude: ToDegrees(lambda)}
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) || !c.Valid() {
		return Coordinate{}, errOutsideUPS
	}
	return c, nil
}

// upsLetter is the polar band letter used by the UPS and MGRS notations.
func upsLetter(c Coordinate) byte {
	if c.IsNorthernHemisphere() {
		if c.Latitude == 90 || c.Longitude >= 0 {
			return 'Z'
		}
		return 'Y'
	}
	if c.Latitude == -90 || c.Longitude >= 0 {
		return 'B'
	}
	return 'A'
}
