package geo

import (
	"errors"
	"math"
)

var (
	errOutsideUTM  = errors.New("geo: latitude outside UTM coverage")
	errOutsideUPS  = errors.New("geo: latitude outside UPS coverage")
	errInvalidZone = errors.New("geo: invalid UTM zone")
	errInvalidBand = errors.New("geo: invalid latitude band")
)

const (
	utmK0            = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0

	utmMinLat = -80.0
	utmMaxLat = 84.0
)

// Latitude bands C..X, 8° each from 80°S; X is stretched to 84°N.
const latBands = "CDEFGHJKLMNPQRSTUVWX"

// utmPoint is a position on the UTM grid. Northing carries the false
// northing in the southern hemisphere.
type utmPoint struct {
	Zone     int
	Band     byte
	North    bool
	Easting  float64
	Northing float64
}

// Krüger series coefficients (6th order in third flattening n).
var (
	krugerA     float64
	krugerAlpha [6]float64
	krugerBeta  [6]float64
	wgs84E      float64
)

func init() {
	n := wgs84F / (2 - wgs84F)
	n2, n3, n4, n5, n6 := n*n, n*n*n, n*n*n*n, n*n*n*n*n, n*n*n*n*n*n
	wgs84E = math.Sqrt(wgs84F * (2 - wgs84F))
	krugerA = wgs84A / (1 + n) * (1 + n2/4 + n4/64 + n6/256)

	krugerAlpha = [6]float64{
		n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
		13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
		61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
		49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
		34729*n5/80640 - 3418889*n6/1995840,
		212378941 * n6 / 319334400,
	}
	krugerBeta = [6]float64{
		n/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
		n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
		17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
		4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
		4583*n5/161280 - 108847*n6/3991680,
		20648693 * n6 / 638668800,
	}
}

// utmZone returns the zone for a position, honouring the Norway and
// Svalbard exceptions.
func utmZone(lat, lon float64) int {
	if lon >= 180 {
		lon -= 360
	}
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone > 60 {
		zone = 60
	}
	if lat >= 56 && lat < 64 && lon >= 3 && lon < 12 {
		zone = 32
	}
	if lat >= 72 && lat < 84 {
		switch {
		case lon >= 0 && lon < 9:
			zone = 31
		case lon >= 9 && lon < 21:
			zone = 33
		case lon >= 21 && lon < 33:
			zone = 35
		case lon >= 33 && lon < 42:
			zone = 37
		}
	}
	return zone
}

func utmCentralMeridian(zone int) float64 {
	return float64(zone-1)*6 - 180 + 3
}

// latBand returns the MGRS/UTM latitude band letter for lat in [-80, 84].
func latBand(lat float64) byte {
	i := int(math.Floor((lat + 80) / 8))
	if i < 0 {
		i = 0
	}
	if i > len(latBands)-1 {
		i = len(latBands) - 1
	}
	return latBands[i]
}

func toUTM(c Coordinate) (utmPoint, error) {
	if !c.Valid() {
		return utmPoint{}, errOutsideUTM
	}
	if c.Latitude < utmMinLat || c.Latitude >= utmMaxLat {
		return utmPoint{}, errOutsideUTM
	}
	zone := utmZone(c.Latitude, c.Longitude)
	p := utmForward(c.Latitude, c.Longitude, zone)
	p.Band = latBand(c.Latitude)
	return p, nil
}

// utmForward projects onto a given zone without range checks.
func utmForward(lat, lon float64, zone int) utmPoint {
	phi := ToRadians(lat)
	lambda := ToRadians(lon - utmCentralMeridian(zone))
	lambda = math.Remainder(lambda, 2*math.Pi)

	e := wgs84E
	tau := math.Tan(phi)
	sigma := math.Sinh(e * math.Atanh(e*tau/math.Sqrt(1+tau*tau)))
	tauP := tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)

	sinL, cosL := math.Sincos(lambda)
	xiP := math.Atan2(tauP, cosL)
	etaP := math.Asinh(sinL / math.Sqrt(tauP*tauP+cosL*cosL))

	xi, eta := xiP, etaP
	for j := 1; j <= 6; j++ {
		a := krugerAlpha[j-1]
		xi += a * math.Sin(2*float64(j)*xiP) * math.Cosh(2*float64(j)*etaP)
		eta += a * math.Cos(2*float64(j)*xiP) * math.Sinh(2*float64(j)*etaP)
	}

	x := utmK0 * krugerA * eta
	y := utmK0 * krugerA * xi

	north := lat >= 0
	if !north {
		y += utmFalseNorthing
	}
	return utmPoint{
		Zone:     zone,
		North:    north,
		Easting:  x + utmFalseEasting,
		Northing: y,
	}
}

// fromUTM inverts a grid position. Hemisphere comes from p.North.
func fromUTM(p utmPoint) (Coordinate, error) {
	if p.Zone < 1 || p.Zone > 60 {
		return Coordinate{}, errInvalidZone
	}
	x := p.Easting - utmFalseEasting
	y := p.Northing
	if !p.North {
		y -= utmFalseNorthing
	}

	eta := x / (utmK0 * krugerA)
	xi := y / (utmK0 * krugerA)

	xiP, etaP := xi, eta
	for j := 1; j <= 6; j++ {
		b := krugerBeta[j-1]
		xiP -= b * math.Sin(2*float64(j)*xi) * math.Cosh(2*float64(j)*eta)
		etaP -= b * math.Cos(2*float64(j)*xi) * math.Sinh(2*float64(j)*eta)
	}

	sinhEtaP := math.Sinh(etaP)
	sinXiP, cosXiP := math.Sincos(xiP)
	tauP := sinXiP / math.Sqrt(sinhEtaP*sinhEtaP+cosXiP*cosXiP)

	e := wgs84E
	e2 := e * e
	tau := tauP
	for i := 0; i < 20; i++ {
		sigma := math.Sinh(e * math.Atanh(e*tau/math.Sqrt(1+tau*tau)))
		tauI := tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)
		delta := (tauP - tauI) / math.Sqrt(1+tauI*tauI) *
			(1 + (1-e2)*tau*tau) / ((1 - e2) * math.Sqrt(1+tau*tau))
		tau += delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}

	lat := ToDegrees(math.Atan(tau))
	lon := utmCentralMeridian(p.Zone) + ToDegrees(math.Atan2(sinhEtaP, cosXiP))
	lon = math.Mod(lon+540, 360) - 180

	c := Coordinate{Latitude: lat, Longitude: lon}
	if math.IsNaN(lat) || math.IsNaN(lon) || !c.Valid() {
		return Coordinate{}, errOutsideUTM
	}
	return c, nil
}
