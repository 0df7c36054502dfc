package geo

import (
	"encoding/json"
	"math"
	"strconv"
)

// CompassDirection is one of the eight principal compass points, 45° apart
// starting at North.
type CompassDirection int

const (
	North CompassDirection = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var compassAbbrev = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
var compassNames = [...]string{"North", "NorthEast", "East", "SouthEast", "South", "SouthWest", "West", "NorthWest"}

func (d CompassDirection) Azimuth() float64 { return float64(d) * 45 }

func (d CompassDirection) String() string {
	if d < North || d > NorthWest {
		return "CompassDirection(" + strconv.Itoa(int(d)) + ")"
	}
	return compassAbbrev[d]
}

func (d CompassDirection) Name() string {
	if d < North || d > NorthWest {
		return d.String()
	}
	return compassNames[d]
}

// Bearing is a compass heading in degrees, always held in [0, 360).
// The zero value is due north.
type Bearing struct {
	value float64
}

func NewBearing(degrees float64) Bearing {
	return Bearing{value: NormalizeAngle(degrees)}
}

func (b Bearing) Value() float64 { return b.value }

// Direction returns the nearest of the eight compass points.
func (b Bearing) Direction() CompassDirection {
	return CompassDirection(int(math.Round(b.value/45)) % 8)
}

// WithDeclination shifts the bearing by a signed declination (east positive).
func (b Bearing) WithDeclination(declination float64) Bearing {
	return NewBearing(b.value + declination)
}

// Reciprocal is the back bearing.
func (b Bearing) Reciprocal() Bearing {
	return NewBearing(b.value + 180)
}

func (b Bearing) String() string {
	return strconv.FormatFloat(b.value, 'f', -1, 64) + "° " + b.Direction().String()
}

func (b Bearing) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.value)
}

func (b *Bearing) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = NewBearing(v)
	return nil
}
