package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trailnav/internal/arrival"
	"trailnav/internal/config"
	"trailnav/internal/geo"
	"trailnav/internal/gps"
	"trailnav/internal/nav"
	"trailnav/internal/sim"
	"trailnav/internal/web"
)

// rerankDistance is how far the position has to move before beacons are
// ranked again.
var rerankDistance = geo.Meters(5)

// configAccuracy is assumed for positions without a receiver estimate.
var configAccuracy = geo.Meters(0)

type liveRuntime struct {
	cfg     config.Config
	svc     nav.Service
	beacons []nav.Beacon
	status  *web.Status

	gps     *gps.Service
	walker  *sim.Walker
	arrival *arrival.Indicator

	last *geo.ApproximateCoordinate
	log  *slog.Logger
}

func newRuntime(cfg config.Config, status *web.Status, epoch time.Time) (*liveRuntime, error) {
	rt := &liveRuntime{
		cfg:     cfg,
		svc:     nav.NewService(),
		beacons: cfg.NavBeacons(),
		status:  status,
		log:     slog.Default().With("component", "navigation"),
	}

	switch {
	case cfg.GPS.Enable:
		rt.gps = gps.New(gps.Config{
			Enable: true,
			Device: cfg.GPS.Device,
			Baud:   cfg.GPS.Baud,
			Replay: cfg.GPS.Replay,
		})
	case cfg.Sim.Enable:
		w := &sim.Walker{
			Start:    cfg.Position.Coordinate,
			Altitude: cfg.Position.AltitudeM,
			Bearing:  geo.NewBearing(cfg.Sim.BearingDeg),
			Speed:    cfg.Sim.SpeedMps,
			Epoch:    epoch,
			Loop:     cfg.Sim.Loop,
		}
		if p := strings.TrimSpace(cfg.Sim.Route); p != "" {
			script, err := sim.LoadRouteScript(p)
			if err != nil {
				return nil, fmt.Errorf("sim route %s: %w", p, err)
			}
			route, err := sim.NewRoute(script)
			if err != nil {
				return nil, fmt.Errorf("sim route %s: %w", p, err)
			}
			w.Route = route
		}
		rt.walker = w
	}

	ind, err := arrival.New(arrival.Config{
		Enable:  cfg.Arrival.Enable,
		RadiusM: cfg.Arrival.RadiusM,
		Chip:    cfg.Arrival.Chip,
		Pin:     cfg.Arrival.GPIOPin,
	})
	if err != nil {
		return nil, err
	}
	rt.arrival = ind

	status.SetStatic(rt.source(), cfg.Navigation.Interval.String())
	return rt, nil
}

func (rt *liveRuntime) source() string {
	switch {
	case rt.gps != nil:
		return rt.gps.Snapshot().Source
	case rt.walker != nil && rt.walker.Route != nil:
		return "sim-route"
	case rt.walker != nil:
		return "sim"
	default:
		return "config"
	}
}

func (rt *liveRuntime) Start(ctx context.Context) error {
	if rt.gps == nil {
		return nil
	}
	return rt.gps.Start(ctx)
}

func (rt *liveRuntime) Close() {
	if rt.gps != nil {
		rt.gps.Close()
	}
	if err := rt.arrival.Close(); err != nil {
		rt.log.Warn("arrival close failed", "err", err)
	}
}

// position returns the current position. live is false when the configured
// fallback is used; ok is false when there is nothing to navigate from.
func (rt *liveRuntime) position(now time.Time) (pos nav.Position, accuracy geo.Distance, live, ok bool) {
	switch {
	case rt.gps != nil:
		snap := rt.gps.Snapshot()
		if snap.Valid {
			acc := configAccuracy
			if snap.AccuracyM != nil {
				acc = geo.Meters(*snap.AccuracyM)
			}
			return snap.Position, acc, true, true
		}
		if strings.TrimSpace(rt.cfg.Position.Location) == "" {
			return nav.Position{}, geo.Distance{}, false, false
		}
	case rt.walker != nil:
		return rt.walker.PositionAt(now), configAccuracy, true, true
	}
	return rt.cfg.Position.Position(), configAccuracy, false, true
}

// Tick refreshes the position and, when it has moved, re-ranks the beacons
// and updates the arrival indicator.
func (rt *liveRuntime) Tick(ctx context.Context, now time.Time) error {
	pos, acc, live, ok := rt.position(now)
	if !ok {
		rt.log.Debug("waiting for gps fix")
		return nil
	}
	rt.status.SetPosition(pos, live)

	here := geo.ApproximateCoordinate{Coordinate: pos.Coordinate, Accuracy: acc}
	if rt.last != nil {
		moved := geo.LocationChanged{Last: *rt.last, Threshold: rerankDistance}
		if !moved.IsSatisfiedBy(here) {
			return nil
		}
	}

	ranked, err := rt.svc.Rank(ctx, pos, rt.beacons, rankOptions(rt.cfg.Navigation))
	if err != nil {
		return err
	}
	rt.last = &here
	rt.status.SetRanking(now, ranked)

	hit, err := rt.arrival.Update(pos.Coordinate, rt.beacons)
	if err != nil {
		rt.log.Warn("arrival update failed", "err", err)
	}
	if hit != nil {
		id := hit.ID
		rt.status.SetArrived(&id)
	} else {
		rt.status.SetArrived(nil)
	}

	n := rt.cfg.Navigation
	attrs := []any{
		"position", pos.Coordinate.FormatPrecision(n.CoordinateFormat, n.FormatPrecision()),
		"live", live,
		"beacons", len(ranked),
	}
	if len(ranked) > 0 {
		r := ranked[0]
		attrs = append(attrs,
			"nearest", r.Beacon.Name,
			"distance_m", geo.RoundPlaces(r.Vector.Distance, 1),
			"bearing", r.Vector.Direction.String(),
			"eta", r.ETA.Round(time.Minute))
	}
	rt.log.Info("position update", attrs...)
	return nil
}

func (rt *liveRuntime) Run(ctx context.Context, interval time.Duration) error {
	if err := rt.Tick(ctx, time.Now()); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := rt.Tick(ctx, now); err != nil {
				return err
			}
		}
	}
}
