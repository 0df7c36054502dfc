package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trailnav/internal/geo"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

const minimal = "position:\n  location: '46.5, 8.0'\n"

func TestLoad_RequiresLocationWithoutGPS(t *testing.T) {
	path := writeTempConfig(t, "navigation: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "position.location is required when gps.enable is false")
}

func TestLoad_GPSMakesLocationOptional(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  enable: true\n  device: /dev/ttyACM0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Baud != 9600 {
		t.Fatalf("baud=%d want 9600", cfg.GPS.Baud)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, minimal)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log_level=%q want info", cfg.LogLevel)
	}
	if cfg.Navigation.CoordinateFormat != geo.FormatDecimalDegrees {
		t.Fatalf("format=%v want dd", cfg.Navigation.CoordinateFormat)
	}
	if got := cfg.Navigation.FormatPrecision(); got != 6 {
		t.Fatalf("precision=%d want 6", got)
	}
	if !cfg.Navigation.UseTrueNorth() {
		t.Fatalf("expected true north by default")
	}
	if cfg.Navigation.NearbyM != 5000 {
		t.Fatalf("nearby_m=%v want 5000", cfg.Navigation.NearbyM)
	}
	if cfg.Navigation.Interval != 1*time.Second {
		t.Fatalf("interval=%s want 1s", cfg.Navigation.Interval)
	}
	if cfg.Web.Listen != ":8080" {
		t.Fatalf("listen=%q want :8080", cfg.Web.Listen)
	}
	if cfg.Sim.SpeedMps <= 0 || cfg.Arrival.RadiusM <= 0 || cfg.Arrival.Chip == "" {
		t.Fatalf("expected sim/arrival defaults applied")
	}
	if cfg.Position.Coordinate != (geo.Coordinate{Latitude: 46.5, Longitude: 8}) {
		t.Fatalf("position=%v", cfg.Position.Coordinate)
	}
}

func TestLoad_NavigationOverrides(t *testing.T) {
	path := writeTempConfig(t, minimal+`navigation:
  declination: -12.5
  true_north: false
  format: MGRS
  precision: 3
  nearby_m: 750
  non_linear_eta: true
  interval: 5s
log_level: DEBUG
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	n := cfg.Navigation
	if n.UseTrueNorth() || n.Declination != -12.5 || !n.NonLinearETA {
		t.Fatalf("navigation=%+v", n)
	}
	if n.CoordinateFormat != geo.FormatMGRS || n.FormatPrecision() != 3 {
		t.Fatalf("format=%v precision=%d", n.CoordinateFormat, n.FormatPrecision())
	}
	if n.NearbyM != 750 || n.Interval != 5*time.Second {
		t.Fatalf("nearby_m=%v interval=%s", n.NearbyM, n.Interval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level=%q want debug", cfg.LogLevel)
	}
}

func TestLoad_BeaconsParsedInAnyNotation(t *testing.T) {
	path := writeTempConfig(t, minimal+`beacons:
  - name: Camp
    location: '37.7785, -122.3914'
    elevation_m: 120
    group_id: 4
    comment: water here
  - id: 40
    name: Ridge
    location: |-
      37°46'41.7"N  122°23'28.99"W
  - name: Summit
    location: 10S EG 51000 81000
    hidden: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	beacons := cfg.NavBeacons()
	if len(beacons) != 3 {
		t.Fatalf("beacons=%d want 3", len(beacons))
	}

	camp := beacons[0]
	if camp.ID != 1 || camp.Name != "Camp" || !camp.Visible || camp.Comment != "water here" {
		t.Fatalf("camp=%+v", camp)
	}
	if camp.Elevation == nil || *camp.Elevation != 120 || camp.GroupID == nil || *camp.GroupID != 4 {
		t.Fatalf("camp elevation/group not carried: %+v", camp)
	}

	ridge := beacons[1]
	if ridge.ID != 40 || math.Abs(ridge.Coordinate.Latitude-37.7785) > 0.001 || math.Abs(ridge.Coordinate.Longitude+122.3914) > 0.001 {
		t.Fatalf("ridge=%+v", ridge)
	}

	summit := beacons[2]
	if summit.ID != 3 || summit.Visible {
		t.Fatalf("summit=%+v", summit)
	}
	if math.Abs(summit.Coordinate.Latitude-37.7749) > 0.001 {
		t.Fatalf("summit lat=%v", summit.Coordinate.Latitude)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name  string
		extra string
		want  string
	}{
		{
			name:  "BadLogLevel",
			extra: "log_level: loud\n",
			want:  "log_level must be one of debug, info, warn, error",
		},
		{
			name:  "BadFormat",
			extra: "navigation:\n  format: gars\n",
			want:  `navigation.format "gars" must be one of dd, ddm, dms, utm, mgrs`,
		},
		{
			name:  "BadPrecision",
			extra: "navigation:\n  precision: 9\n",
			want:  "navigation.precision must be between 0 and 7",
		},
		{
			name:  "BeaconNeedsName",
			extra: "beacons:\n  - location: '1, 2'\n",
			want:  "beacons[0].name is required",
		},
		{
			name:  "BeaconNeedsLocation",
			extra: "beacons:\n  - name: a\n",
			want:  "beacons[0].location is required",
		},
		{
			name:  "BeaconBadLocation",
			extra: "beacons:\n  - name: a\n    location: nowhere\n",
			want:  `beacons[0].location "nowhere" is not a recognised coordinate`,
		},
		{
			name:  "DuplicateBeaconID",
			extra: "beacons:\n  - name: a\n    location: '1, 2'\n  - name: b\n    id: 1\n    location: '1, 3'\n",
			want:  "beacons[1].id 1 duplicates beacons[0]",
		},
		{
			name:  "ArrivalNeedsPin",
			extra: "arrival:\n  enable: true\n",
			want:  "arrival.gpio_pin is required when arrival.enable is true",
		},
		{
			name:  "GPSAndSim",
			extra: "gps:\n  enable: true\nsim:\n  enable: true\n",
			want:  "gps and sim cannot both be enabled",
		},
		{
			name:  "ReplayNeedsDevice",
			extra: "gps:\n  enable: true\n  replay: true\n",
			want:  "gps.device is required when gps.replay is true",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, minimal+tc.extra)
			_, err := Load(path)
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_BadPositionLocation(t *testing.T) {
	path := writeTempConfig(t, "position:\n  location: '95, 10'\n")
	_, err := Load(path)
	requireErrEq(t, err, `position.location "95, 10" is not a recognised coordinate`)
}

func TestPositionConfig_Position(t *testing.T) {
	p := PositionConfig{Coordinate: geo.Coordinate{Latitude: 1, Longitude: 2}, AltitudeM: 300, SpeedMps: 1.4, BearingDeg: -90}
	pos := p.Position()
	if pos.Altitude != 300 || pos.Speed != 1.4 || pos.Bearing.Value() != 270 {
		t.Fatalf("position=%+v", pos)
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "trailnav.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Beacons) != 4 || !cfg.Beacons[3].Hidden {
		t.Fatalf("beacons=%+v", cfg.Beacons)
	}
	if cfg.Navigation.CoordinateFormat != geo.FormatMGRS || cfg.Navigation.Interval != 2*time.Second {
		t.Fatalf("navigation=%+v", cfg.Navigation)
	}
	hut := cfg.Beacons[1].Coordinate
	if math.Abs(hut.Latitude-46.5725) > 1e-3 || math.Abs(hut.Longitude-7.8503) > 1e-3 {
		t.Fatalf("alp hut=%v", hut)
	}
}
