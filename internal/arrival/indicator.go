// Package arrival lights a GPIO output while the current position is inside
// a beacon's arrival radius.
package arrival

import (
	"fmt"
	"log/slog"
	"sync"

	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

// Line is a single digital output.
type Line interface {
	SetValue(v int) error
	Close() error
}

type Config struct {
	Enable  bool
	RadiusM float64
	// Chip is tried first; the other /dev/gpiochip* devices are searched
	// when the pin's line is not found on it.
	Chip string
	// Pin is BCM GPIO numbering.
	Pin int
}

type Indicator struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	line    Line
	lit     bool
	current *nav.Beacon
}

// New opens the output line when cfg.Enable is set. A disabled indicator
// still tracks arrival so the status API can report it.
func New(cfg Config) (*Indicator, error) {
	var line Line
	if cfg.Enable {
		l, err := openLineFn(cfg.Chip, cfg.Pin)
		if err != nil {
			return nil, err
		}
		line = l
	}
	return newIndicator(cfg, line), nil
}

func newIndicator(cfg Config, line Line) *Indicator {
	if cfg.RadiusM <= 0 {
		cfg.RadiusM = 25
	}
	return &Indicator{cfg: cfg, line: line, log: slog.Default().With("component", "arrival")}
}

// Update returns the first visible beacon whose arrival radius contains at,
// or nil, and drives the line to match. The line is only written on change.
func (i *Indicator) Update(at geo.Coordinate, beacons []nav.Beacon) (*nav.Beacon, error) {
	var hit *nav.Beacon
	for idx := range beacons {
		b := beacons[idx]
		if !b.Visible {
			continue
		}
		fence := geo.InGeofence{Center: b.Coordinate, Radius: geo.Meters(i.cfg.RadiusM)}
		if fence.IsSatisfiedBy(at) {
			hit = &b
			break
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	prev := i.current
	i.current = hit
	switch {
	case hit != nil && (prev == nil || prev.ID != hit.ID):
		i.log.Info("arrived", "beacon", hit.Name, "id", hit.ID)
	case hit == nil && prev != nil:
		i.log.Info("departed", "beacon", prev.Name, "id", prev.ID)
	}

	want := hit != nil
	if i.line == nil || want == i.lit {
		return hit, nil
	}
	v := 0
	if want {
		v = 1
	}
	if err := i.line.SetValue(v); err != nil {
		return hit, fmt.Errorf("arrival: set line: %w", err)
	}
	i.lit = want
	return hit, nil
}

// Current is the beacon last reported by Update.
func (i *Indicator) Current() *nav.Beacon {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}

// Close switches the output off and releases it.
func (i *Indicator) Close() error {
	if i == nil {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.line == nil {
		return nil
	}
	_ = i.line.SetValue(0)
	err := i.line.Close()
	i.line = nil
	i.lit = false
	return err
}
