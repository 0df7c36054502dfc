package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var errInvalidMGRS = errors.New("geo: invalid MGRS reference")

const (
	hundredKm = 100000.0
	twoMillion = 2000000.0

	mgrsRowLetters = "ABCDEFGHJKLMNPQRSTUV"
)

// 100 km column letters repeat every three zones.
var mgrsColumnSets = [3]string{"ABCDEFGH", "JKLMNPQR", "STUVWXYZ"}

// Polar 100 km square layout per band letter.
type upsGrid struct {
	colLow, colHigh, rowHigh byte
	falseEasting             float64
	falseNorthing            float64
}

var upsGrids = map[byte]upsGrid{
	'A': {'J', 'Z', 'Z', 800000, 800000},
	'B': {'A', 'R', 'Z', 2000000, 800000},
	'Y': {'J', 'Z', 'P', 800000, 1300000},
	'Z': {'A', 'J', 'P', 2000000, 1300000},
}

var mgrsPattern = regexp.MustCompile(`^(\d{1,2})?([A-HJ-NP-Z])([A-HJ-NP-Z])([A-HJ-NP-Z])(\d*)$`)

// mgrsDigits truncates the in-square offset to precision digits. The small
// bias absorbs projection round-off so grid corners survive a round trip.
func mgrsDigits(v float64, precision int) string {
	off := int(math.Floor(math.Mod(v, hundredKm) + 1e-6))
	if off >= int(hundredKm) {
		off = 0
	}
	div := int(math.Pow(10, float64(5-precision)))
	return fmt.Sprintf("%0*d", precision, off/div)
}

func toMGRS(c Coordinate, precision int) (string, error) {
	if precision < 0 || precision > 5 {
		return "", fmt.Errorf("geo: mgrs precision %d out of range", precision)
	}
	if !c.Valid() || math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return "", errInvalidMGRS
	}
	if c.Latitude < utmMinLat || c.Latitude >= utmMaxLat {
		return upsToMGRS(c, precision)
	}

	p, err := toUTM(c)
	if err != nil {
		return "", err
	}
	set := (p.Zone - 1) % 3
	col := int(math.Floor(p.Easting/hundredKm+1e-11)) - 1
	if col < 0 || col >= len(mgrsColumnSets[set]) {
		return "", errInvalidMGRS
	}
	row := int(math.Floor(p.Northing/hundredKm+1e-11)) % 20
	if p.Zone%2 == 0 {
		row = (row + 5) % 20
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%02d%c %c%c", p.Zone, p.Band, mgrsColumnSets[set][col], mgrsRowLetters[row])
	if precision > 0 {
		fmt.Fprintf(&b, " %s %s", mgrsDigits(p.Easting, precision), mgrsDigits(p.Northing, precision))
	}
	return b.String(), nil
}

func upsToMGRS(c Coordinate, precision int) (string, error) {
	p, err := toUPS(c)
	if err != nil {
		return "", err
	}

	var band byte
	if p.North {
		band = 'Y'
		if p.Easting >= twoMillion {
			band = 'Z'
		}
	} else {
		band = 'A'
		if p.Easting >= twoMillion {
			band = 'B'
		}
	}
	g := upsGrids[band]

	row := int((p.Northing - g.falseNorthing) / hundredKm)
	if row > 'H'-'A' {
		row++
	}
	if row > 'N'-'A' {
		row++
	}

	col := int(g.colLow-'A') + int((p.Easting-g.falseEasting)/hundredKm)
	if p.Easting < twoMillion {
		if col > 'L'-'A' {
			col += 3
		}
		if col > 'U'-'A' {
			col += 2
		}
	} else {
		if col > 'C'-'A' {
			col += 2
		}
		if col > 'H'-'A' {
			col++
		}
		if col > 'L'-'A' {
			col += 3
		}
	}
	if col < 0 || col > 25 || row < 0 || row > 25 {
		return "", errInvalidMGRS
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%c %c%c", band, 'A'+byte(col), 'A'+byte(row))
	if precision > 0 {
		fmt.Fprintf(&b, " %s %s", mgrsDigits(p.Easting, precision), mgrsDigits(p.Northing, precision))
	}
	return b.String(), nil
}

// fromMGRS accepts references with or without separating spaces, e.g.
// "10SEG5100081000", "10S EG 51000 81000" or "Z AH 12345 67890".
func fromMGRS(s string) (Coordinate, error) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	m := mgrsPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, errInvalidMGRS
	}
	digits := m[5]
	if len(digits)%2 != 0 || len(digits) > 10 {
		return Coordinate{}, errInvalidMGRS
	}
	precision := len(digits) / 2
	var e, n float64
	if precision > 0 {
		scale := math.Pow(10, float64(5-precision))
		ev, _ := strconv.Atoi(digits[:precision])
		nv, _ := strconv.Atoi(digits[precision:])
		e = float64(ev) * scale
		n = float64(nv) * scale
	}

	band, colL, rowL := m[2][0], m[3][0], m[4][0]
	if m[1] == "" {
		return upsFromMGRS(band, colL, rowL, e, n)
	}

	zone, _ := strconv.Atoi(m[1])
	if zone < 1 || zone > 60 {
		return Coordinate{}, errInvalidZone
	}
	bandIdx := strings.IndexByte(latBands, band)
	if bandIdx < 0 {
		return Coordinate{}, errInvalidBand
	}

	set := (zone - 1) % 3
	col := strings.IndexByte(mgrsColumnSets[set], colL)
	if col < 0 {
		return Coordinate{}, errInvalidMGRS
	}
	row := strings.IndexByte(mgrsRowLetters, rowL)
	if row < 0 {
		return Coordinate{}, errInvalidMGRS
	}
	if zone%2 == 0 {
		row = (row - 5 + 20) % 20
	}

	easting := float64(col+1)*hundredKm + e
	n100k := float64(row) * hundredKm

	// Resolve the 2000 km northing cycle from the bottom of the band.
	bandLat := float64(bandIdx)*8 - 80
	bottom := utmForward(bandLat, utmCentralMeridian(zone), zone).Northing
	bottom = math.Floor(bottom/hundredKm) * hundredKm
	var cycle float64
	for cycle+n100k+n < bottom {
		cycle += twoMillion
	}

	return fromUTM(utmPoint{
		Zone:     zone,
		Band:     band,
		North:    band >= 'N',
		Easting:  easting,
		Northing: cycle + n100k + n,
	})
}

func upsFromMGRS(band, colL, rowL byte, e, n float64) (Coordinate, error) {
	g, ok := upsGrids[band]
	if !ok {
		return Coordinate{}, errInvalidBand
	}
	if colL < g.colLow || colL > g.colHigh || rowL > g.rowHigh {
		return Coordinate{}, errInvalidMGRS
	}
	switch colL {
	case 'D', 'E', 'M', 'N', 'V', 'W':
		return Coordinate{}, errInvalidMGRS
	}

	col := int(colL - 'A')
	row := int(rowL - 'A')

	northing := float64(row)*hundredKm + g.falseNorthing
	if rowL > 'I' {
		northing -= hundredKm
	}
	if rowL > 'O' {
		northing -= hundredKm
	}

	easting := float64(col-int(g.colLow-'A'))*hundredKm + g.falseEasting
	if g.colLow != 'A' {
		if colL > 'L' {
			easting -= 300000
		}
		if colL > 'U' {
			easting -= 200000
		}
	} else {
		if colL > 'C' {
			easting -= 200000
		}
		if colL > 'I' {
			easting -= hundredKm
		}
		if colL > 'L' {
			easting -= 300000
		}
	}

	return fromUPS(upsPoint{
		North:    band == 'Y' || band == 'Z',
		Easting:  easting + e,
		Northing: northing + n,
	})
}
