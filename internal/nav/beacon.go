package nav

import "trailnav/internal/geo"

// Beacon is a saved waypoint. ID is its identity; everything else is
// descriptive.
type Beacon struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Visible    bool           `json:"visible"`
	Comment    string         `json:"comment,omitempty"`
	GroupID    *int           `json:"group_id,omitempty"`
	Elevation  *float64       `json:"elevation_m,omitempty"`
}

// Position is a single fix: altitude in meters and speed in m/s.
type Position struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Altitude   float64        `json:"altitude_m"`
	Bearing    geo.Bearing    `json:"bearing"`
	Speed      float64        `json:"speed_mps"`
}

// Vector is a direction and distance in meters.
type Vector struct {
	Direction geo.Bearing `json:"direction"`
	Distance  float64     `json:"distance_m"`
}
