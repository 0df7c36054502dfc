package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Navigation NavigationConfig `yaml:"navigation"`
	Position   PositionConfig   `yaml:"position"`
	Beacons    []BeaconConfig   `yaml:"beacons"`
	GPS        GPSConfig        `yaml:"gps"`
	Sim        SimConfig        `yaml:"sim"`
	Web        WebConfig        `yaml:"web"`
	Arrival    ArrivalConfig    `yaml:"arrival"`
}

type NavigationConfig struct {
	// Declination in degrees, east positive.
	Declination float64 `yaml:"declination"`
	// TrueNorth defaults to true; set false to report magnetic bearings.
	TrueNorth *bool  `yaml:"true_north"`
	Format    string `yaml:"format"`
	// Precision defaults to the format's own precision.
	Precision    *int          `yaml:"precision"`
	NearbyM      float64       `yaml:"nearby_m"`
	NonLinearETA bool          `yaml:"non_linear_eta"`
	Interval     time.Duration `yaml:"interval"`

	// Resolved from Format by Load.
	CoordinateFormat geo.CoordinateFormat `yaml:"-"`
}

// UseTrueNorth reports the effective north reference.
func (n NavigationConfig) UseTrueNorth() bool {
	return n.TrueNorth == nil || *n.TrueNorth
}

// FormatPrecision is the configured precision, or the format default.
func (n NavigationConfig) FormatPrecision() int {
	if n.Precision != nil {
		return *n.Precision
	}
	return n.CoordinateFormat.DefaultPrecision()
}

// PositionConfig is the fallback position used until a GPS fix arrives, and
// the starting point of the simulator.
type PositionConfig struct {
	Location   string  `yaml:"location"`
	AltitudeM  float64 `yaml:"altitude_m"`
	SpeedMps   float64 `yaml:"speed_mps"`
	BearingDeg float64 `yaml:"bearing_deg"`

	Coordinate geo.Coordinate `yaml:"-"`
}

// Position returns the configured fallback as a nav.Position.
func (p PositionConfig) Position() nav.Position {
	return nav.Position{
		Coordinate: p.Coordinate,
		Altitude:   p.AltitudeM,
		Bearing:    geo.NewBearing(p.BearingDeg),
		Speed:      p.SpeedMps,
	}
}

type BeaconConfig struct {
	ID         int64    `yaml:"id"`
	Name       string   `yaml:"name"`
	Location   string   `yaml:"location"`
	ElevationM *float64 `yaml:"elevation_m"`
	GroupID    *int     `yaml:"group_id"`
	Comment    string   `yaml:"comment"`
	Hidden     bool     `yaml:"hidden"`

	Coordinate geo.Coordinate `yaml:"-"`
}

type GPSConfig struct {
	Enable bool   `yaml:"enable"`
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	// Replay paces a recorded NMEA file instead of reading a serial port.
	Replay bool `yaml:"replay"`
}

type SimConfig struct {
	Enable     bool    `yaml:"enable"`
	BearingDeg float64 `yaml:"bearing_deg"`
	SpeedMps   float64 `yaml:"speed_mps"`
	// Route is an optional YAML route script; it replaces the straight walk.
	Route string `yaml:"route"`
	Loop  bool   `yaml:"loop"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

type ArrivalConfig struct {
	Enable  bool    `yaml:"enable"`
	RadiusM float64 `yaml:"radius_m"`
	Chip    string  `yaml:"chip"`
	GPIOPin int     `yaml:"gpio_pin"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("log_level must be one of debug, info, warn, error")
	}

	if err := cfg.Navigation.resolve(); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Position.Location) != "" {
		c, ok := geo.Parse(cfg.Position.Location)
		if !ok {
			return Config{}, fmt.Errorf("position.location %q is not a recognised coordinate", cfg.Position.Location)
		}
		cfg.Position.Coordinate = c
	} else if !cfg.GPS.Enable {
		return Config{}, fmt.Errorf("position.location is required when gps.enable is false")
	}
	if cfg.Position.SpeedMps < 0 {
		return Config{}, fmt.Errorf("position.speed_mps must be >= 0")
	}

	seen := make(map[int64]int, len(cfg.Beacons))
	for i := range cfg.Beacons {
		bc := &cfg.Beacons[i]
		if strings.TrimSpace(bc.Name) == "" {
			return Config{}, fmt.Errorf("beacons[%d].name is required", i)
		}
		if strings.TrimSpace(bc.Location) == "" {
			return Config{}, fmt.Errorf("beacons[%d].location is required", i)
		}
		c, ok := geo.Parse(bc.Location)
		if !ok {
			return Config{}, fmt.Errorf("beacons[%d].location %q is not a recognised coordinate", i, bc.Location)
		}
		bc.Coordinate = c
		if bc.ID == 0 {
			bc.ID = int64(i + 1)
		}
		if prev, dup := seen[bc.ID]; dup {
			return Config{}, fmt.Errorf("beacons[%d].id %d duplicates beacons[%d]", i, bc.ID, prev)
		}
		seen[bc.ID] = i
	}

	if cfg.GPS.Enable {
		if cfg.GPS.Replay && strings.TrimSpace(cfg.GPS.Device) == "" {
			return Config{}, fmt.Errorf("gps.device is required when gps.replay is true")
		}
		if cfg.GPS.Baud == 0 {
			cfg.GPS.Baud = 9600
		}
	}

	if cfg.GPS.Enable && cfg.Sim.Enable {
		return Config{}, fmt.Errorf("gps and sim cannot both be enabled")
	}
	// Simulator defaults (safe even if disabled).
	if cfg.Sim.SpeedMps <= 0 {
		cfg.Sim.SpeedMps = 1.2
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.Arrival.RadiusM <= 0 {
		cfg.Arrival.RadiusM = 25
	}
	if cfg.Arrival.Chip == "" {
		cfg.Arrival.Chip = "gpiochip0"
	}
	if cfg.Arrival.Enable && cfg.Arrival.GPIOPin <= 0 {
		return Config{}, fmt.Errorf("arrival.gpio_pin is required when arrival.enable is true")
	}

	return cfg, nil
}

func (n *NavigationConfig) resolve() error {
	if n.Format == "" {
		n.Format = FormatDefault
	}
	f, ok := geo.ParseCoordinateFormat(n.Format)
	if !ok {
		return fmt.Errorf("navigation.format %q must be one of dd, ddm, dms, utm, mgrs", n.Format)
	}
	n.CoordinateFormat = f
	if n.Precision != nil && (*n.Precision < 0 || *n.Precision > 7) {
		return fmt.Errorf("navigation.precision must be between 0 and 7")
	}
	if n.Declination < -180 || n.Declination > 180 {
		return fmt.Errorf("navigation.declination must be between -180 and 180")
	}
	if n.NearbyM < 0 {
		return fmt.Errorf("navigation.nearby_m must be >= 0")
	}
	if n.NearbyM == 0 {
		n.NearbyM = 5000
	}
	if n.Interval <= 0 {
		n.Interval = 1 * time.Second
	}
	return nil
}

const FormatDefault = "dd"

// NavBeacons converts the configured beacons for the navigation service.
func (c Config) NavBeacons() []nav.Beacon {
	out := make([]nav.Beacon, 0, len(c.Beacons))
	for _, bc := range c.Beacons {
		out = append(out, nav.Beacon{
			ID:         bc.ID,
			Name:       bc.Name,
			Coordinate: bc.Coordinate,
			Visible:    !bc.Hidden,
			Comment:    bc.Comment,
			GroupID:    bc.GroupID,
			Elevation:  bc.ElevationM,
		})
	}
	return out
}
