package geo

import (
	"fmt"
	"strconv"
	"strings"
)

type DistanceUnit int

const (
	UnitMeters DistanceUnit = iota
	UnitFeet
	UnitKilometers
	UnitMiles
	UnitNauticalMiles
)

// Meters per unit.
var unitMeters = [...]float64{
	UnitMeters:        1,
	UnitFeet:          0.3048,
	UnitKilometers:    1000,
	UnitMiles:         1609.344,
	UnitNauticalMiles: 1852,
}

var unitSymbols = [...]string{
	UnitMeters:        "m",
	UnitFeet:          "ft",
	UnitKilometers:    "km",
	UnitMiles:         "mi",
	UnitNauticalMiles: "nm",
}

func (u DistanceUnit) valid() bool { return u >= UnitMeters && u <= UnitNauticalMiles }

func (u DistanceUnit) String() string {
	if !u.valid() {
		return "DistanceUnit(" + strconv.Itoa(int(u)) + ")"
	}
	return unitSymbols[u]
}

// ParseDistanceUnit accepts the unit symbols produced by String and a few
// spelled-out aliases.
func ParseDistanceUnit(s string) (DistanceUnit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters", "metre", "metres":
		return UnitMeters, true
	case "ft", "foot", "feet":
		return UnitFeet, true
	case "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return UnitKilometers, true
	case "mi", "mile", "miles":
		return UnitMiles, true
	case "nm", "nmi", "nautical_miles", "nauticalmiles":
		return UnitNauticalMiles, true
	default:
		return UnitMeters, false
	}
}

type Distance struct {
	Value float64      `json:"value"`
	Units DistanceUnit `json:"units"`
}

func Meters(v float64) Distance        { return Distance{Value: v, Units: UnitMeters} }
func Feet(v float64) Distance          { return Distance{Value: v, Units: UnitFeet} }
func Kilometers(v float64) Distance    { return Distance{Value: v, Units: UnitKilometers} }
func Miles(v float64) Distance         { return Distance{Value: v, Units: UnitMiles} }
func NauticalMiles(v float64) Distance { return Distance{Value: v, Units: UnitNauticalMiles} }

// Convert returns the same length expressed in another unit. Unknown units
// are treated as meters.
func (d Distance) Convert(to DistanceUnit) Distance {
	if d.Units == to {
		return d
	}
	from := UnitMeters
	if d.Units.valid() {
		from = d.Units
	}
	if !to.valid() {
		to = UnitMeters
	}
	return Distance{Value: d.Value * unitMeters[from] / unitMeters[to], Units: to}
}

func (d Distance) Meters() Distance { return d.Convert(UnitMeters) }

func (d Distance) String() string {
	return fmt.Sprintf("%s %s", strconv.FormatFloat(d.Value, 'f', -1, 64), d.Units)
}

// ApproximateCoordinate is a fix together with its horizontal accuracy.
type ApproximateCoordinate struct {
	Coordinate Coordinate `json:"coordinate"`
	Accuracy   Distance   `json:"accuracy"`
}
