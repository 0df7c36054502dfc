package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceToVincentyReference(t *testing.T) {
	// Flinders Peak to Buninyong, Vincenty (1975).
	flinders := Coordinate{Latitude: -37.951033417, Longitude: 144.424867889}
	buninyong := Coordinate{Latitude: -37.652821139, Longitude: 143.926495528}

	assert.InDelta(t, 54972.271, flinders.DistanceTo(buninyong), 0.01)
	assert.InDelta(t, 306.86816, flinders.BearingTo(buninyong).Value(), 1e-4)
}

func TestDistanceToEquator(t *testing.T) {
	a := Coordinate{Latitude: 0, Longitude: 0}
	b := Coordinate{Latitude: 0, Longitude: 1}
	// One degree of the equator is a/180*π.
	assert.InDelta(t, 111319.4908, a.DistanceTo(b), 1e-3)
	assert.InDelta(t, 90, a.BearingTo(b).Value(), 1e-9)
}

func TestDistanceToSamePoint(t *testing.T) {
	c := Coordinate{Latitude: 45, Longitude: -122}
	assert.Equal(t, 0.0, c.DistanceTo(c))
	assert.Equal(t, 0.0, c.BearingTo(c).Value())
}

func TestDistanceToSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := Coordinate{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}
		b := Coordinate{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}
		assert.InDelta(t, a.DistanceTo(b), b.DistanceTo(a), 1e-3, "a=%v b=%v", a, b)
	}
}

func TestDistanceToNearlyAntipodal(t *testing.T) {
	a := Coordinate{Latitude: 0, Longitude: 0}
	b := Coordinate{Latitude: 0.5, Longitude: 179.7}
	d := a.DistanceTo(b)
	assert.Greater(t, d, 19900000.0)
	assert.Less(t, d, 20100000.0)
}

func TestBearingToShortDistanceAntiParallel(t *testing.T) {
	a := Coordinate{Latitude: 51.5, Longitude: -0.12}
	b := Coordinate{Latitude: 51.51, Longitude: -0.11}
	fwd := a.BearingTo(b).Value()
	back := b.BearingTo(a).Value()
	assert.InDelta(t, 0, DeltaAngle(fwd+180, back), 0.05)
}

func TestPlusNorth(t *testing.T) {
	start := Coordinate{Latitude: 0, Longitude: 0}
	got := start.Plus(earthRadius*ToRadians(1), NewBearing(0))
	assert.InDelta(t, 1, got.Latitude, 1e-9)
	assert.InDelta(t, 0, got.Longitude, 1e-9)
}

func TestPlusWrapsLongitude(t *testing.T) {
	start := Coordinate{Latitude: 0, Longitude: 179.9}
	got := start.Plus(earthRadius*ToRadians(0.2), NewBearing(90))
	assert.InDelta(t, 0, got.Latitude, 1e-9)
	assert.InDelta(t, -179.9, got.Longitude, 1e-9)
}

func TestPlusDistanceUnits(t *testing.T) {
	start := Coordinate{Latitude: 10, Longitude: 10}
	a := start.PlusDistance(Kilometers(2), NewBearing(30))
	b := start.Plus(2000, NewBearing(30))
	assert.Equal(t, b, a)
}

func TestPlusThenDistanceIsClose(t *testing.T) {
	// Spherical projection measured on the ellipsoid: within half a percent.
	start := Coordinate{Latitude: 45, Longitude: 7}
	end := start.Plus(10000, NewBearing(60))
	assert.InDelta(t, 10000, start.DistanceTo(end), 50)
	assert.InDelta(t, 60, start.BearingTo(end).Value(), 0.5)
}

func TestNewCoordinateValidates(t *testing.T) {
	_, ok := NewCoordinate(91, 0)
	assert.False(t, ok)
	_, ok = NewCoordinate(0, -180.5)
	assert.False(t, ok)
	c, ok := NewCoordinate(-90, 180)
	require.True(t, ok)
	assert.False(t, c.IsNorthernHemisphere())
	assert.False(t, Coordinate{}.IsNorthernHemisphere())
	assert.True(t, Coordinate{Latitude: 0.1}.IsNorthernHemisphere())
}

func TestCoordinateMapKey(t *testing.T) {
	seen := map[Coordinate]int{}
	seen[Coordinate{Latitude: 1, Longitude: 2}]++
	seen[Coordinate{Latitude: 1, Longitude: 2}]++
	assert.Equal(t, 2, seen[Coordinate{Latitude: 1, Longitude: 2}])
}
