package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAutoDetect(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLat float64
		wantLon float64
	}{
		{"decimal degrees", "37.7785, -122.3914", 37.7785, -122.3914},
		{"decimal degrees with symbols", "37.7785°, -122.3914°", 37.7785, -122.3914},
		{"decimal degrees space separated", "  -33.5 151  ", -33.5, 151},
		{"decimal comma", "12,5 34,25", 12.5, 34.25},
		{"ddm", "37°46.695'N  122°23.483'W", 37.7785, -122.3914},
		{"ddm lowercase south west", "10°30's, 20°15'w", -10.5, -20.25},
		{"dms", `37°46'41.7"N  122°23'28.99"W`, 37.7785, -122.3914},
		{"dms decimal comma", `37°46'41,7"N 122°23'28,99"W`, 37.7785, -122.3914},
		{"utm", "10N 0500000E 0000000N", 0, -123},
		{"utm plain", "10n 500000 0", 0, -123},
		{"ups north pole", "Z 2000000E 2000000N", 90, 0},
		{"mgrs", "10SEG5100081000", 37.7749, -122.4209},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Parse(tt.in)
			require.True(t, ok, "parse %q", tt.in)
			assert.InDelta(t, tt.wantLat, c.Latitude, 0.01)
			assert.InDelta(t, tt.wantLon, c.Longitude, 0.01)
		})
	}
}

func TestParseReferenceFixtures(t *testing.T) {
	dms, ok := ParseFormat(`37°46'41.7"N  122°23'28.99"W`, FormatDegreesMinutesSeconds)
	require.True(t, ok)
	assert.InDelta(t, 37.7785, dms.Latitude, 0.001)
	assert.InDelta(t, -122.3914, dms.Longitude, 0.001)

	ddm, ok := ParseFormat("37°46.695'N  122°23.483'W", FormatDegreesDecimalMinutes)
	require.True(t, ok)
	assert.InDelta(t, 37.7785, ddm.Latitude, 0.001)
	assert.InDelta(t, -122.3914, ddm.Longitude, 0.001)
}

func TestParseRejects(t *testing.T) {
	tests := []string{
		"",
		"hello",
		"95, 10",
		"10, 190",
		"37°46.695'N",
		`91°0'0"N 0°0'0"E`,
		"61S 0500000E 4000000N",
		"10I 0500000E 4000000N",
		"5Z 2000000E 2000000N",
		"10SEG510008100",
		"10SEG51000810001",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, ok := Parse(in)
			assert.False(t, ok)
		})
	}
}

func TestParseFormatIsExclusive(t *testing.T) {
	_, ok := ParseFormat("37.7785, -122.3914", FormatDegreesMinutesSeconds)
	assert.False(t, ok)
	_, ok = ParseFormat("37°46.695'N  122°23.483'W", FormatDecimalDegrees)
	assert.False(t, ok)
	_, ok = ParseFormat("37.7785, -122.3914", CoordinateFormat(42))
	assert.False(t, ok)
}

func TestDecimalDegreesRoundTrip(t *testing.T) {
	coords := []Coordinate{
		{Latitude: 37.7785, Longitude: -122.3914},
		{Latitude: -33.868820, Longitude: 151.209296},
		{Latitude: 0, Longitude: 0},
		{Latitude: -0.0000001, Longitude: 179.9999999},
		{Latitude: 89.123456789, Longitude: -179.987654321},
	}
	for _, c := range coords {
		s := c.DecimalDegrees(6)
		p, ok := Parse(s)
		require.True(t, ok, s)
		assert.Equal(t, s, p.DecimalDegrees(6))
	}
}

func TestDecimalDegreesFormat(t *testing.T) {
	c := Coordinate{Latitude: 37.7785, Longitude: -122.3914}
	assert.Equal(t, "37.778500°, -122.391400°", c.DecimalDegrees(6))
	assert.Equal(t, "37.78°, -122.39°", c.DecimalDegrees(2))
	assert.Equal(t, "0.000000°, 0.000000°", Coordinate{Latitude: -0.0000001}.DecimalDegrees(6))
	assert.Equal(t, c.DecimalDegrees(6), c.String())
}

func TestDegreesDecimalMinutesFormat(t *testing.T) {
	c := Coordinate{Latitude: 37.7785, Longitude: -122.3914}
	assert.Equal(t, "37°46.710'N  122°23.484'W", c.DegreesDecimalMinutes(3))
	assert.Equal(t, c.DegreesDecimalMinutes(3), c.Format(FormatDegreesDecimalMinutes))

	p, ok := ParseFormat(c.DegreesDecimalMinutes(3), FormatDegreesDecimalMinutes)
	require.True(t, ok)
	assert.InDelta(t, c.Latitude, p.Latitude, 1e-5)
	assert.InDelta(t, c.Longitude, p.Longitude, 1e-5)
}

func TestDegreesMinutesSecondsFormat(t *testing.T) {
	c := Coordinate{Latitude: 37.77825, Longitude: -122.391386}
	assert.Equal(t, `37°46'41.7"N  122°23'29.0"W`, c.DegreesMinutesSeconds(1))

	// Seconds that round up to 60 carry into minutes and degrees.
	carry := Coordinate{Latitude: 10.99999, Longitude: 0}
	assert.Equal(t, `11°0'0.0"N  0°0'0.0"E`, carry.DegreesMinutesSeconds(1))
}

func TestUTMFormat(t *testing.T) {
	assert.Equal(t, "10N 0500000E 0000000N", Coordinate{Latitude: 0, Longitude: -123}.UTM(7))
	assert.Equal(t, "10N 0500000E 0000000N", Coordinate{Latitude: 0, Longitude: -123}.Format(FormatUTM))
}

func TestUTMRoundTrip(t *testing.T) {
	tests := []struct {
		in      string
		wantLat float64
		wantLon float64
	}{
		{"10S 0551000E 4181000N", 37.77, -122.42},
		{"56H 0334000E 6250000N", -33.87, 151.2},
		{"33X 0500000E 8500000N", 76.6, 15},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := ParseFormat(tt.in, FormatUTM)
			require.True(t, ok)
			assert.InDelta(t, tt.wantLat, c.Latitude, 0.1)
			assert.InDelta(t, tt.wantLon, c.Longitude, 0.1)
			assert.Equal(t, tt.in, c.UTM(7))
		})
	}
}

func TestUTMPrecisionTruncates(t *testing.T) {
	c, ok := ParseFormat("10S 0551987E 4181999N", FormatUTM)
	require.True(t, ok)
	assert.Equal(t, "10S 0551000E 4181000N", c.UTM(4))
	assert.Equal(t, "10S 0550000E 4180000N", c.UTM(3))
}

func TestUTMFallsBackToUPS(t *testing.T) {
	assert.Equal(t, "Z 2000000E 2000000N", Coordinate{Latitude: 90, Longitude: 0}.UTM(7))

	south := Coordinate{Latitude: -85, Longitude: 30}
	s := south.UTM(7)
	require.Equal(t, byte('B'), s[0], s)
	back, ok := Parse(s)
	require.True(t, ok, s)
	assert.InDelta(t, -85, back.Latitude, 1e-3)
	assert.InDelta(t, 30, back.Longitude, 1e-3)

	west := Coordinate{Latitude: 86, Longitude: -45}
	assert.Equal(t, byte('Y'), west.UTM(7)[0])
}

func TestUTMZoneExceptions(t *testing.T) {
	assert.Equal(t, 32, utmZone(60, 5))  // Norway
	assert.Equal(t, 31, utmZone(60, 2))  // west of the Norway widening
	assert.Equal(t, 33, utmZone(78, 15)) // Svalbard
	assert.Equal(t, 1, utmZone(0, -180))
	assert.Equal(t, 60, utmZone(0, 180))
}

func TestMGRSRoundTrip(t *testing.T) {
	c, ok := ParseFormat("10S EG 51000 81000", FormatMGRS)
	require.True(t, ok)
	assert.Equal(t, "10S EG 51000 81000", c.MGRS(5))
	assert.Equal(t, "10S EG 510 810", c.MGRS(3))
	assert.Equal(t, "10S EG", c.MGRS(0))

	utm, ok := ParseFormat("10S 0551000E 4181000N", FormatUTM)
	require.True(t, ok)
	assert.InDelta(t, utm.Latitude, c.Latitude, 1e-9)
	assert.InDelta(t, utm.Longitude, c.Longitude, 1e-9)
}

func TestMGRSSouthernHemisphere(t *testing.T) {
	c := Coordinate{Latitude: -33.8688, Longitude: 151.2093}
	s := c.MGRS(5)
	require.NotEqual(t, "?", s)
	assert.Equal(t, "56H", s[:3])

	back, ok := Parse(s)
	require.True(t, ok, s)
	assert.InDelta(t, c.Latitude, back.Latitude, 1e-4)
	assert.InDelta(t, c.Longitude, back.Longitude, 1e-4)
	assert.Equal(t, s, back.MGRS(5))
}

func TestMGRSPolar(t *testing.T) {
	for _, c := range []Coordinate{
		{Latitude: 86, Longitude: 45},
		{Latitude: 86, Longitude: -45},
		{Latitude: -85, Longitude: 30},
		{Latitude: -85, Longitude: -120},
	} {
		s := c.MGRS(5)
		require.NotEqual(t, "?", s)
		back, ok := ParseFormat(s, FormatMGRS)
		require.True(t, ok, s)
		assert.InDelta(t, c.Latitude, back.Latitude, 1e-3, s)
		assert.InDelta(t, c.Longitude, back.Longitude, 1e-3, s)
		assert.Equal(t, s, back.MGRS(5))
	}
}

func TestMGRSSentinel(t *testing.T) {
	assert.Equal(t, "?", Coordinate{Latitude: 95, Longitude: 0}.MGRS(5))
	assert.Equal(t, "?", Coordinate{Latitude: 10, Longitude: 10}.MGRS(6))
}

func TestParseCoordinateFormat(t *testing.T) {
	f, ok := ParseCoordinateFormat("DMS")
	require.True(t, ok)
	assert.Equal(t, FormatDegreesMinutesSeconds, f)
	f, ok = ParseCoordinateFormat("ups")
	require.True(t, ok)
	assert.Equal(t, FormatMGRS, f)
	_, ok = ParseCoordinateFormat("gars")
	assert.False(t, ok)
	assert.Equal(t, "utm", FormatUTM.String())
}
