package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"trailnav/internal/config"
	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

func runReport(ctx context.Context, w io.Writer, cfg config.Config) error {
	if cfg.Position.Location == "" {
		return fmt.Errorf("report needs position.location")
	}
	from := cfg.Position.Position()
	ranked, err := nav.NewService().Rank(ctx, from, cfg.NavBeacons(), rankOptions(cfg.Navigation))
	if err != nil {
		return err
	}
	return printReport(w, cfg.Navigation, from, ranked)
}

func printReport(w io.Writer, n config.NavigationConfig, from nav.Position, ranked []nav.Ranked) error {
	north := "true"
	if !n.UseTrueNorth() {
		north = fmt.Sprintf("magnetic (declination %g°)", n.Declination)
	}
	fmt.Fprintf(w, "position: %s\n", from.Coordinate.FormatPrecision(n.CoordinateFormat, n.FormatPrecision()))
	fmt.Fprintf(w, "altitude_m: %g\n", from.Altitude)
	fmt.Fprintf(w, "north: %s\n", north)
	fmt.Fprintf(w, "beacons within %s: %d\n", humanDistance(n.NearbyM), len(ranked))
	if len(ranked) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISTANCE\tBEARING\tETA\tLOCATION")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%03.0f° %s\t%s\t%s\n",
			r.Beacon.ID,
			r.Beacon.Name,
			humanDistance(r.Vector.Distance),
			r.Vector.Direction.Value(),
			r.Vector.Direction.Direction(),
			r.ETA.Round(time.Minute),
			r.Beacon.Coordinate.FormatPrecision(n.CoordinateFormat, n.FormatPrecision()),
		)
	}
	return tw.Flush()
}

func humanDistance(m float64) string {
	if m < 1000 {
		return geo.Meters(geo.RoundPlaces(m, 0)).String()
	}
	return geo.Kilometers(geo.RoundPlaces(m/1000, 2)).String()
}
