package gps

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

const (
	knotsToMps = 1852.0 / 3600.0
	kmhToMps   = 1000.0 / 3600.0

	// Weight of each new course over ground sample.
	trackSmoothing = 0.5

	// uereM is the user equivalent range error assumed when turning HDOP
	// into a horizontal accuracy.
	uereM = 5.0
)

type sentence struct {
	Kind string
	// Fields is the comma-split payload (excluding $ and checksum).
	Fields []string
}

func parseSentence(line string) (sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return sentence{}, fmt.Errorf("nmea: missing '$'")
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return sentence{}, fmt.Errorf("nmea: missing checksum")
	}
	payload := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return sentence{}, fmt.Errorf("nmea: short checksum")
	}
	want, err := hex.DecodeString(ck[:2])
	if err != nil || len(want) != 1 {
		return sentence{}, fmt.Errorf("nmea: bad checksum")
	}
	var got byte
	for i := 0; i < len(payload); i++ {
		got ^= payload[i]
	}
	if got != want[0] {
		return sentence{}, fmt.Errorf("nmea: checksum mismatch")
	}

	parts := strings.Split(payload, ",")
	kind := parts[0]
	if len(kind) < 3 {
		return sentence{}, fmt.Errorf("nmea: short type")
	}
	// GPRMC, GNRMC and friends all collapse to RMC.
	kind = kind[len(kind)-3:]
	return sentence{Kind: strings.ToUpper(kind), Fields: parts}, nil
}

// fixState accumulates RMC, GGA and VTG sentences into one fix.
type fixState struct {
	coord geo.Coordinate
	posOK bool

	altM  float64
	altOK bool

	speedMps float64
	speedOK  bool

	track *geo.BearingFilter

	quality   int
	qualityOK bool
	sats      int
	satsOK    bool
	hdop      float64
	hdopOK    bool

	lastFix time.Time
}

func (s *fixState) apply(nowUTC time.Time, sent sentence) bool {
	switch sent.Kind {
	case "RMC":
		return s.applyRMC(nowUTC, sent.Fields)
	case "GGA":
		return s.applyGGA(nowUTC, sent.Fields)
	case "VTG":
		return s.applyVTG(sent.Fields)
	default:
		return false
	}
}

// position is the current fix as a navigation position. Missing altitude
// and speed read as zero.
func (s *fixState) position() nav.Position {
	p := nav.Position{Coordinate: s.coord}
	if s.altOK {
		p.Altitude = s.altM
	}
	if s.speedOK {
		p.Speed = s.speedMps
	}
	if s.track != nil {
		p.Bearing = s.track.Value()
	}
	return p
}

// accuracy estimates horizontal accuracy from HDOP.
func (s *fixState) accuracy() (geo.Distance, bool) {
	if !s.hdopOK {
		return geo.Distance{}, false
	}
	return geo.Meters(s.hdop * uereM), true
}

func (s *fixState) snapshot() Snapshot {
	out := Snapshot{
		Enabled:  true,
		Valid:    s.posOK,
		Position: s.position(),
	}
	if acc, ok := s.accuracy(); ok {
		v := acc.Value
		out.AccuracyM = &v
		out.Accurate = geo.LocationIsAccurate{}.IsSatisfiedBy(geo.ApproximateCoordinate{Coordinate: s.coord, Accuracy: acc})
	}
	if s.qualityOK {
		v := s.quality
		out.FixQuality = &v
	}
	if s.satsOK {
		v := s.sats
		out.Satellites = &v
	}
	if s.hdopOK {
		v := s.hdop
		out.HDOP = &v
	}
	if !s.lastFix.IsZero() {
		out.LastFixUTC = s.lastFix.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (s *fixState) setCoordinate(lat, lon float64) bool {
	c, ok := geo.NewCoordinate(lat, lon)
	if !ok {
		return false
	}
	s.coord = c
	s.posOK = true
	return true
}

// setTrack feeds course over ground from RMC or VTG through the track filter.
func (s *fixState) setTrack(deg float64) {
	if s.track == nil {
		s.track = geo.NewBearingFilter(trackSmoothing, geo.NewBearing(deg))
		return
	}
	s.track.Filter(geo.NewBearing(deg))
}

// RMC: recommended minimum data.
//
//	1: time  2: status (A/V)  3,4: lat  5,6: lon
//	7: speed over ground (knots)  8: course over ground (deg)  9: date
func (s *fixState) applyRMC(nowUTC time.Time, f []string) bool {
	if len(f) < 10 {
		return false
	}
	if strings.TrimSpace(f[2]) != "A" {
		// Void fixes keep the previous position.
		return false
	}

	lat, latOK := parseLatLon(f[3], f[4])
	lon, lonOK := parseLatLon(f[5], f[6])
	if !latOK || !lonOK || !s.setCoordinate(lat, lon) {
		return false
	}

	if kt, ok := parseFloat(f[7]); ok {
		s.speedMps = kt * knotsToMps
		s.speedOK = true
	}
	if trk, ok := parseFloat(f[8]); ok {
		s.setTrack(trk)
	}
	s.lastFix = nowUTC
	return true
}

// GGA: fix data.
//
//	1: time  2,3: lat  4,5: lon  6: quality (0 = invalid)
//	7: satellites  8: HDOP  9: altitude  10: altitude units (M)
func (s *fixState) applyGGA(nowUTC time.Time, f []string) bool {
	if len(f) < 11 {
		return false
	}
	q := strings.TrimSpace(f[6])
	if q == "" || q == "0" {
		return false
	}
	if v, err := strconv.Atoi(q); err == nil {
		s.quality = v
		s.qualityOK = true
	}
	if v, err := strconv.Atoi(strings.TrimSpace(f[7])); err == nil {
		s.sats = v
		s.satsOK = true
	}
	if v, ok := parseFloat(f[8]); ok {
		s.hdop = v
		s.hdopOK = true
	}
	if v, ok := parseFloat(f[9]); ok {
		if u := strings.ToUpper(strings.TrimSpace(f[10])); u == "F" {
			v = geo.Feet(v).Meters().Value
		}
		s.altM = v
		s.altOK = true
	}

	lat, latOK := parseLatLon(f[2], f[3])
	lon, lonOK := parseLatLon(f[4], f[5])
	if latOK && lonOK && s.setCoordinate(lat, lon) {
		s.lastFix = nowUTC
	}
	return s.posOK
}

// VTG: track and ground speed.
//
//	1: true track  3: magnetic track  5: speed (knots)  7: speed (km/h)
func (s *fixState) applyVTG(f []string) bool {
	if len(f) < 8 {
		return false
	}
	updated := false
	if trk, ok := parseFloat(f[1]); ok {
		s.setTrack(trk)
		updated = true
	}
	if kmh, ok := parseFloat(f[7]); ok {
		s.speedMps = kmh * kmhToMps
		s.speedOK = true
		updated = true
	} else if kt, ok := parseFloat(f[5]); ok {
		s.speedMps = kt * knotsToMps
		s.speedOK = true
		updated = true
	}
	return updated && s.posOK
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseLatLon parses ddmm.mmmm (latitude) or dddmm.mmmm (longitude) plus a
// hemisphere letter into signed decimal degrees.
func parseLatLon(v string, hemi string) (float64, bool) {
	v = strings.TrimSpace(v)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}

	intPart := v
	if dot := strings.IndexByte(v, '.'); dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}

	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil || mins >= 60 {
		return 0, false
	}

	dec := float64(deg) + mins/60
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}
