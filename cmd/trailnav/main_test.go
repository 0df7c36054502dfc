package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trailnav/internal/config"
	"trailnav/internal/web"
)

func loadTempConfig(t *testing.T, contents string) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trailnav.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	return cfg
}

const valleyConfig = `
position:
  location: "0, 0"
  altitude_m: 1000
  speed_mps: 1.5
beacons:
  - name: summit
    location: "0, 0.03785"
    elevation_m: 1900
  - name: hut
    location: "0.01, 0"
  - name: far lake
    location: "1, 1"
  - name: stash
    location: "0.02, 0"
    hidden: true
`

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestReport_RanksNearestFirst(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig)

	var out bytes.Buffer
	if err := runReport(context.Background(), &out, cfg); err != nil {
		t.Fatalf("runReport() error: %v", err)
	}
	s := out.String()
	for _, want := range []string{
		"position: 0.000000°, 0.000000°",
		"north: true",
		"beacons within 5 km: 2",
		"1.11 km",
		"4.21 km",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "far lake") || strings.Contains(s, "stash") {
		t.Fatalf("report lists out of range or hidden beacons:\n%s", s)
	}
	if strings.Index(s, "hut") > strings.Index(s, "summit") {
		t.Fatalf("expected hut before summit:\n%s", s)
	}
}

func TestReport_Magnetic(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig+"navigation:\n  true_north: false\n  declination: 3.5\n  format: dms\n")

	var out bytes.Buffer
	if err := runReport(context.Background(), &out, cfg); err != nil {
		t.Fatalf("runReport() error: %v", err)
	}
	if !strings.Contains(out.String(), "north: magnetic (declination 3.5°)") {
		t.Fatalf("report:\n%s", out.String())
	}
	// Hut is due north: 356.5° magnetic.
	if !strings.Contains(out.String(), "356° N") && !strings.Contains(out.String(), "357° N") {
		t.Fatalf("expected magnetic bearing to hut:\n%s", out.String())
	}
}

func TestTick_SimRerankOnlyAfterMoving(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig+"sim:\n  enable: true\n  bearing_deg: 0\n  speed_mps: 1\n")
	epoch := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	status := web.NewStatus()
	rt, err := newRuntime(cfg, status, epoch)
	if err != nil {
		t.Fatalf("newRuntime() error: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	ticks := []struct {
		after    time.Duration
		rankings uint64
	}{
		{0, 1},
		{2 * time.Second, 1},
		{4 * time.Second, 1},
		{10 * time.Second, 2},
		{12 * time.Second, 2},
	}
	for _, tk := range ticks {
		if err := rt.Tick(ctx, epoch.Add(tk.after)); err != nil {
			t.Fatalf("Tick(+%s) error: %v", tk.after, err)
		}
		snap := status.Snapshot(time.Time{})
		if snap.RankingsTotal != tk.rankings {
			t.Fatalf("after %s rankings=%d want %d", tk.after, snap.RankingsTotal, tk.rankings)
		}
	}

	snap := status.Snapshot(time.Time{})
	if snap.Source != "sim" || !snap.PositionLive {
		t.Fatalf("source=%q live=%v", snap.Source, snap.PositionLive)
	}
	if snap.Position.Coordinate.Latitude <= 0 {
		t.Fatalf("walker did not move north: %+v", snap.Position)
	}
}

func TestTick_GPSWithoutFixFallsBack(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig+"gps:\n  enable: true\n  replay: true\n  device: track.nmea\n")
	status := web.NewStatus()
	rt, err := newRuntime(cfg, status, time.Now())
	if err != nil {
		t.Fatalf("newRuntime() error: %v", err)
	}
	defer rt.Close()

	if err := rt.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	snap := status.Snapshot(time.Time{})
	if snap.Source != "replay" || snap.PositionLive {
		t.Fatalf("source=%q live=%v", snap.Source, snap.PositionLive)
	}
	if snap.Position.Altitude != 1000 || len(snap.Beacons) != 2 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestTick_GPSWithoutFixOrLocationWaits(t *testing.T) {
	cfg := loadTempConfig(t, "gps:\n  enable: true\n  replay: true\n  device: track.nmea\n")
	status := web.NewStatus()
	rt, err := newRuntime(cfg, status, time.Now())
	if err != nil {
		t.Fatalf("newRuntime() error: %v", err)
	}
	defer rt.Close()

	if err := rt.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	if n := status.Snapshot(time.Time{}).RankingsTotal; n != 0 {
		t.Fatalf("rankings=%d want 0", n)
	}
}

func TestTick_ArrivalReported(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig+"  - id: 42\n    name: trailhead\n    location: \"0.0001, 0\"\n")
	status := web.NewStatus()
	rt, err := newRuntime(cfg, status, time.Now())
	if err != nil {
		t.Fatalf("newRuntime() error: %v", err)
	}
	defer rt.Close()

	if err := rt.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	snap := status.Snapshot(time.Time{})
	if snap.ArrivedAt == nil || *snap.ArrivedAt != 42 {
		t.Fatalf("arrived_at=%v", snap.ArrivedAt)
	}
	if snap.Beacons[0].ID != 42 {
		t.Fatalf("nearest=%+v", snap.Beacons[0])
	}
}

func TestNewRuntime_BadRoute(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig+"sim:\n  enable: true\n  route: "+filepath.Join(t.TempDir(), "missing.yaml")+"\n")
	if _, err := newRuntime(cfg, web.NewStatus(), time.Now()); err == nil {
		t.Fatalf("expected error for a missing route script")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := loadTempConfig(t, valleyConfig+"web:\n  listen: 127.0.0.1:0\n")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, web.NewLogBuffer(10)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop")
	}
}
