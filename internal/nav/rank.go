package nav

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// RankOptions controls Rank. A zero MaxDistance means no limit.
type RankOptions struct {
	Declination   float64
	TrueNorth     bool
	NonLinear     bool
	MaxDistance   float64
	IncludeHidden bool
}

// Ranked is a beacon with the vector and ETA to reach it.
type Ranked struct {
	Beacon Beacon        `json:"beacon"`
	Vector Vector        `json:"vector"`
	ETA    time.Duration `json:"eta"`
}

// Rank computes the vector and ETA to every eligible beacon and returns
// them nearest first. Beacons at the same distance keep their input order.
func (s Service) Rank(ctx context.Context, from Position, beacons []Beacon, opts RankOptions) ([]Ranked, error) {
	results := make([]Ranked, len(beacons))
	keep := make([]bool, len(beacons))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, b := range beacons {
		if !b.Visible && !opts.IncludeHidden {
			continue
		}
		i, b := i, b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := s.NavigateTo(from, b, opts.Declination, opts.TrueNorth)
			if opts.MaxDistance > 0 && v.Distance > opts.MaxDistance {
				return nil
			}
			results[i] = Ranked{Beacon: b, Vector: v, ETA: s.ETA(from, b, opts.NonLinear)}
			keep[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Ranked, 0, len(results))
	for i, r := range results {
		if keep[i] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Vector.Distance < out[j].Vector.Distance
	})
	return out, nil
}
