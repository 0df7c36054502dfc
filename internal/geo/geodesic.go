package geo

import "math"

type geodesic struct {
	distance       float64
	initialBearing float64
}

const (
	vincentyMaxIter = 200
	vincentyEpsilon = 1e-12
)

// inverse solves the geodesic inverse problem on WGS84 with Vincenty's
// iteration. Nearly antipodal pairs where the iteration does not converge
// fall back to the spherical solution.
func inverse(p1, p2 Coordinate) geodesic {
	L := math.Remainder(ToRadians(p2.Longitude-p1.Longitude), 2*math.Pi)
	U1 := math.Atan((1 - wgs84F) * math.Tan(ToRadians(p1.Latitude)))
	U2 := math.Atan((1 - wgs84F) * math.Tan(ToRadians(p2.Latitude)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var (
		sinLambda, cosLambda float64
		sinSigma, cosSigma   float64
		sigma                float64
		cos2Alpha            float64
		cos2SigmaM           float64
		converged            bool
	)
	for i := 0; i < vincentyMaxIter; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		if sinSigma == 0 {
			// Coincident points.
			return geodesic{}
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		cos2SigmaM = 0
		if cos2Alpha != 0 {
			// Equatorial lines have cos2Alpha == 0.
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		}
		C := wgs84F / 16 * cos2Alpha * (4 + wgs84F*(4-3*cos2Alpha))
		prev := lambda
		lambda = L + (1-C)*wgs84F*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) <= vincentyEpsilon {
			converged = true
			break
		}
	}
	if !converged || math.IsNaN(lambda) {
		return sphericalInverse(p1, p2)
	}

	uSq := cos2Alpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	alpha1 := math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
	return geodesic{
		distance:       wgs84B * A * (sigma - deltaSigma),
		initialBearing: ToDegrees(alpha1),
	}
}

// sphericalInverse is the haversine distance and initial great-circle bearing
// on the mean sphere.
func sphericalInverse(p1, p2 Coordinate) geodesic {
	lat1, lat2 := ToRadians(p1.Latitude), ToRadians(p2.Latitude)
	dLat := lat2 - lat1
	dLon := ToRadians(p2.Longitude - p1.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	d := 2 * earthRadius * math.Asin(math.Sqrt(Clamp(h, 0, 1)))

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return geodesic{distance: d, initialBearing: ToDegrees(math.Atan2(y, x))}
}
