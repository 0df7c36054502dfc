// Package sim produces deterministic positions for running without a GPS
// receiver: a straight-line walk or a scripted route.
package sim

import (
	"time"

	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

// Walker moves from Start at a constant Speed (m/s) along Bearing, starting
// at Epoch. When Route is set the walker follows it instead.
type Walker struct {
	Start    geo.Coordinate
	Altitude float64
	Bearing  geo.Bearing
	Speed    float64
	Epoch    time.Time

	Route *Route
	Loop  bool
}

// PositionAt is deterministic for a given now. Times before Epoch return
// the start.
func (w Walker) PositionAt(now time.Time) nav.Position {
	elapsed := now.Sub(w.Epoch)
	if elapsed < 0 {
		elapsed = 0
	}
	if w.Route != nil {
		return w.Route.PositionAt(elapsed, w.Loop)
	}

	speed := w.Speed
	if speed < 0 {
		speed = 0
	}
	return nav.Position{
		Coordinate: w.Start.Plus(speed*elapsed.Seconds(), w.Bearing),
		Altitude:   w.Altitude,
		Bearing:    w.Bearing,
		Speed:      speed,
	}
}
