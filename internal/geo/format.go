package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CoordinateFormat selects one of the supported textual notations.
type CoordinateFormat int

const (
	FormatDecimalDegrees CoordinateFormat = iota
	FormatDegreesDecimalMinutes
	FormatDegreesMinutesSeconds
	FormatUTM
	FormatMGRS
)

type notation struct {
	name      string
	aliases   []string
	precision int
	parse     func(string) (Coordinate, bool)
	format    func(Coordinate, int) string
}

// notations is indexed by CoordinateFormat; auto-detection tries them in order.
var notations = [...]notation{
	FormatDecimalDegrees: {
		name: "dd", aliases: []string{"decimal", "decimal_degrees"}, precision: 6,
		parse: parseDecimalDegrees, format: Coordinate.DecimalDegrees,
	},
	FormatDegreesDecimalMinutes: {
		name: "ddm", aliases: []string{"degrees_decimal_minutes"}, precision: 3,
		parse: parseDegreesDecimalMinutes, format: Coordinate.DegreesDecimalMinutes,
	},
	FormatDegreesMinutesSeconds: {
		name: "dms", aliases: []string{"degrees_minutes_seconds"}, precision: 1,
		parse: parseDegreesMinutesSeconds, format: Coordinate.DegreesMinutesSeconds,
	},
	FormatUTM: {
		name: "utm", precision: 7,
		parse: parseUTM, format: Coordinate.UTM,
	},
	FormatMGRS: {
		name: "mgrs", aliases: []string{"ups"}, precision: 5,
		parse: parseMGRS, format: Coordinate.MGRS,
	},
}

func (f CoordinateFormat) valid() bool {
	return f >= FormatDecimalDegrees && f <= FormatMGRS
}

func (f CoordinateFormat) String() string {
	if !f.valid() {
		return "CoordinateFormat(" + strconv.Itoa(int(f)) + ")"
	}
	return notations[f].name
}

// DefaultPrecision is the precision Format uses for f.
func (f CoordinateFormat) DefaultPrecision() int {
	if !f.valid() {
		return 0
	}
	return notations[f].precision
}

// ParseCoordinateFormat maps a name such as "dms" or "utm" to a format.
func ParseCoordinateFormat(name string) (CoordinateFormat, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range notations {
		if n.name == name {
			return CoordinateFormat(i), true
		}
		for _, a := range n.aliases {
			if a == name {
				return CoordinateFormat(i), true
			}
		}
	}
	return 0, false
}

// Parse detects the notation of s, trying decimal degrees, DDM, DMS, UTM
// and MGRS in that order. The first in-range match wins.
func Parse(s string) (Coordinate, bool) {
	for i := range notations {
		if c, ok := ParseFormat(s, CoordinateFormat(i)); ok {
			return c, true
		}
	}
	return Coordinate{}, false
}

// ParseFormat parses s in the given notation only.
func ParseFormat(s string, f CoordinateFormat) (Coordinate, bool) {
	if !f.valid() {
		return Coordinate{}, false
	}
	c, ok := notations[f].parse(s)
	if !ok || !c.Valid() || math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return Coordinate{}, false
	}
	return c, true
}

// Format renders c in f using the notation's default precision.
func (c Coordinate) Format(f CoordinateFormat) string {
	return c.FormatPrecision(f, f.DefaultPrecision())
}

// FormatPrecision renders c in f; precision is notation specific.
func (c Coordinate) FormatPrecision(f CoordinateFormat, precision int) string {
	if !f.valid() {
		return c.DecimalDegrees(FormatDecimalDegrees.DefaultPrecision())
	}
	return notations[f].format(c, precision)
}

var (
	ddPattern  = regexp.MustCompile(`^(-?\d+(?:[.,]\d+)?)°?[,\s]+(-?\d+(?:[.,]\d+)?)°?$`)
	ddmPattern = regexp.MustCompile(`^(\d+)°\s*(\d+(?:[.,]\d+)?)'\s*([nNsS])[,\s]+(\d+)°\s*(\d+(?:[.,]\d+)?)'\s*([wWeE])$`)
	dmsPattern = regexp.MustCompile(`^(\d+)°\s*(\d+)'\s*(\d+(?:[.,]\d+)?)"\s*([nNsS])[,\s]+(\d+)°\s*(\d+)'\s*(\d+(?:[.,]\d+)?)"\s*([wWeE])$`)
	utmPattern = regexp.MustCompile(`^(\d{1,2})?\s*([A-Za-z])\s*(\d+(?:[.,]\d+)?)[\s,mMeE]+(\d+(?:[.,]\d+)?)\s*[mMnN]*$`)
)

// parseNumber accepts either '.' or ',' as the decimal separator.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func hemisphereSign(letter string, positive byte) float64 {
	if strings.ToUpper(letter)[0] == positive {
		return 1
	}
	return -1
}

func parseDecimalDegrees(s string) (Coordinate, bool) {
	m := ddPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coordinate{}, false
	}
	lat, ok := parseNumber(m[1])
	if !ok {
		return Coordinate{}, false
	}
	lon, ok := parseNumber(m[2])
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: lat, Longitude: lon}, true
}

func parseDegreesDecimalMinutes(s string) (Coordinate, bool) {
	m := ddmPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coordinate{}, false
	}
	axis := func(deg, min, hemi string, positive byte) (float64, bool) {
		d, ok := parseNumber(deg)
		if !ok {
			return 0, false
		}
		mm, ok := parseNumber(min)
		if !ok {
			return 0, false
		}
		return (d + mm/60) * hemisphereSign(hemi, positive), true
	}
	lat, ok := axis(m[1], m[2], m[3], 'N')
	if !ok {
		return Coordinate{}, false
	}
	lon, ok := axis(m[4], m[5], m[6], 'E')
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: lat, Longitude: lon}, true
}

func parseDegreesMinutesSeconds(s string) (Coordinate, bool) {
	m := dmsPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coordinate{}, false
	}
	axis := func(deg, min, sec, hemi string, positive byte) (float64, bool) {
		d, ok := parseNumber(deg)
		if !ok {
			return 0, false
		}
		mm, ok := parseNumber(min)
		if !ok {
			return 0, false
		}
		ss, ok := parseNumber(sec)
		if !ok {
			return 0, false
		}
		return (d + mm/60 + ss/3600) * hemisphereSign(hemi, positive), true
	}
	lat, ok := axis(m[1], m[2], m[3], m[4], 'N')
	if !ok {
		return Coordinate{}, false
	}
	lon, ok := axis(m[5], m[6], m[7], m[8], 'E')
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: lat, Longitude: lon}, true
}

func parseUTM(s string) (Coordinate, bool) {
	m := utmPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Coordinate{}, false
	}
	letter := strings.ToUpper(m[2])[0]
	easting, ok := parseNumber(m[3])
	if !ok {
		return Coordinate{}, false
	}
	northing, ok := parseNumber(m[4])
	if !ok {
		return Coordinate{}, false
	}

	switch letter {
	case 'A', 'B', 'Y', 'Z':
		if m[1] != "" && m[1] != "0" && m[1] != "00" {
			return Coordinate{}, false
		}
		c, err := fromUPS(upsPoint{North: letter >= 'Y', Easting: easting, Northing: northing})
		return c, err == nil
	}

	if strings.IndexByte(latBands, letter) < 0 || m[1] == "" {
		return Coordinate{}, false
	}
	zone, err := strconv.Atoi(m[1])
	if err != nil {
		return Coordinate{}, false
	}
	c, err := fromUTM(utmPoint{Zone: zone, Band: letter, North: letter >= 'N', Easting: easting, Northing: northing})
	return c, err == nil
}

func parseMGRS(s string) (Coordinate, bool) {
	c, err := fromMGRS(s)
	return c, err == nil
}

// formatFixed renders v with exactly precision decimals, without a "-0".
func formatFixed(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	v = RoundPlaces(v, precision)
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// DecimalDegrees renders "lat°, lon°" rounded to precision decimals.
func (c Coordinate) DecimalDegrees(precision int) string {
	return formatFixed(c.Latitude, precision) + "°, " + formatFixed(c.Longitude, precision) + "°"
}

func latHemisphere(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

func lonHemisphere(lon float64) string {
	if lon < 0 {
		return "W"
	}
	return "E"
}

func ddmString(v float64, precision int) string {
	v = math.Abs(v)
	deg := math.Trunc(v)
	minutes := RoundPlaces((v-deg)*60, precision)
	if minutes >= 60 {
		deg++
		minutes -= 60
	}
	return fmt.Sprintf("%d°%s'", int(deg), formatFixed(minutes, precision))
}

func dmsString(v float64, precision int) string {
	v = math.Abs(v)
	deg := math.Trunc(v)
	rawMin := (v - deg) * 60
	minutes := math.Trunc(rawMin)
	seconds := RoundPlaces((rawMin-minutes)*60, precision)
	if seconds >= 60 {
		minutes++
		seconds -= 60
	}
	if minutes >= 60 {
		deg++
		minutes -= 60
	}
	return fmt.Sprintf("%d°%d'%s\"", int(deg), int(minutes), formatFixed(seconds, precision))
}

// DegreesDecimalMinutes renders e.g. 37°46.695'N  122°23.483'W.
func (c Coordinate) DegreesDecimalMinutes(precision int) string {
	return ddmString(c.Latitude, precision) + latHemisphere(c.Latitude) + "  " +
		ddmString(c.Longitude, precision) + lonHemisphere(c.Longitude)
}

// DegreesMinutesSeconds renders e.g. 37°46'41.7"N  122°23'29.0"W.
func (c Coordinate) DegreesMinutesSeconds(precision int) string {
	return dmsString(c.Latitude, precision) + latHemisphere(c.Latitude) + "  " +
		dmsString(c.Longitude, precision) + lonHemisphere(c.Longitude)
}

// truncateGrid drops the lowest (7-precision) digits of a grid value.
// The bias absorbs projection round-off so parsed grid values re-render unchanged.
func truncateGrid(v float64, precision int) int {
	n := int(math.Floor(v + 1e-6))
	if precision >= 7 || precision < 1 {
		return n
	}
	p := int(math.Pow(10, float64(7-precision)))
	return n / p * p
}

// UTM renders "ZZB dddddddE dddddddN", e.g. "10S 0553594E 4181413N",
// with the 7-digit easting and northing truncated to precision digits.
// Polar coordinates fall back to UPS ("Z 2000000E 2000000N").
func (c Coordinate) UTM(precision int) string {
	p, err := toUTM(c)
	if err != nil {
		return c.ups(precision)
	}
	return fmt.Sprintf("%02d%c %07dE %07dN", p.Zone, p.Band,
		truncateGrid(p.Easting, precision), truncateGrid(p.Northing, precision))
}

func (c Coordinate) ups(precision int) string {
	p, err := toUPS(c)
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%c %07dE %07dN", upsLetter(c),
		truncateGrid(p.Easting, precision), truncateGrid(p.Northing, precision))
}

// MGRS renders a grid reference with precision digits per axis (0–5), or
// "?" when the coordinate cannot be projected.
func (c Coordinate) MGRS(precision int) string {
	s, err := toMGRS(c, precision)
	if err != nil {
		return "?"
	}
	return s
}
