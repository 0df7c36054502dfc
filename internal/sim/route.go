package sim

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

// RouteScript is a timed walk through a list of waypoints.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 45m   # optional, defaults to the last waypoint time
//	waypoints:
//	  - t: 0s
//	    location: "46.5000, 8.0000"
//	    altitude_m: 1200
//	  - t: 20m
//	    location: 32T MS 12345 54321
//	    altitude_m: 1450
//
// Locations accept any notation geo.Parse understands. Waypoints must use
// non-decreasing t values.
type RouteScript struct {
	Version   int             `yaml:"version"`
	Duration  time.Duration   `yaml:"duration"`
	Waypoints []RouteWaypoint `yaml:"waypoints"`
}

type RouteWaypoint struct {
	T         time.Duration `yaml:"t"`
	Location  string        `yaml:"location"`
	AltitudeM float64       `yaml:"altitude_m"`
}

type waypoint struct {
	t    time.Duration
	at   geo.Coordinate
	altM float64
}

// Route is the validated runtime form of a RouteScript.
type Route struct {
	waypoints []waypoint
	duration  time.Duration
}

func LoadRouteScript(path string) (RouteScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RouteScript{}, err
	}
	return ParseRouteScriptYAML(b)
}

func ParseRouteScriptYAML(b []byte) (RouteScript, error) {
	var s RouteScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return RouteScript{}, err
	}
	return s, nil
}

func NewRoute(script RouteScript) (*Route, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported route version %d", script.Version)
	}
	if len(script.Waypoints) == 0 {
		return nil, fmt.Errorf("waypoints is required")
	}

	wps := make([]waypoint, 0, len(script.Waypoints))
	for i, w := range script.Waypoints {
		if w.T < 0 {
			return nil, fmt.Errorf("waypoints[%d].t must be >= 0", i)
		}
		if i > 0 && w.T < script.Waypoints[i-1].T {
			return nil, fmt.Errorf("waypoints must be sorted by t (index %d)", i)
		}
		c, ok := geo.Parse(w.Location)
		if !ok {
			return nil, fmt.Errorf("waypoints[%d].location %q is not a recognised coordinate", i, w.Location)
		}
		wps = append(wps, waypoint{t: w.T, at: c, altM: w.AltitudeM})
	}

	dur := script.Duration
	if dur <= 0 {
		dur = wps[len(wps)-1].t
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration is required (or deriveable from waypoints)")
	}
	return &Route{waypoints: wps, duration: dur}, nil
}

func (r *Route) Duration() time.Duration {
	if r == nil {
		return 0
	}
	return r.duration
}

// PositionAt walks the route for elapsed time. With loop, elapsed wraps
// around Duration; otherwise it is clamped to [0, Duration]. Between
// waypoints the walker follows the geodesic at constant speed.
func (r *Route) PositionAt(elapsed time.Duration, loop bool) nav.Position {
	if r == nil || len(r.waypoints) == 0 {
		return nav.Position{}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if loop {
		elapsed %= r.duration
	} else if elapsed > r.duration {
		elapsed = r.duration
	}

	w0, w1, alpha := r.segment(elapsed)
	if w0.at == w1.at || w1.t <= w0.t {
		// Resting at a waypoint.
		return nav.Position{Coordinate: w1.at, Altitude: lerp(w0.altM, w1.altM, alpha)}
	}

	leg := w0.at.DistanceTo(w1.at)
	bearing := w0.at.BearingTo(w1.at)
	return nav.Position{
		Coordinate: w0.at.Plus(leg*alpha, bearing),
		Altitude:   lerp(w0.altM, w1.altM, alpha),
		Bearing:    bearing,
		Speed:      leg / (w1.t - w0.t).Seconds(),
	}
}

func (r *Route) segment(t time.Duration) (waypoint, waypoint, float64) {
	wps := r.waypoints
	if len(wps) == 1 {
		return wps[0], wps[0], 0
	}
	idx := sort.Search(len(wps), func(i int) bool { return wps[i].t > t })
	if idx <= 0 {
		return wps[0], wps[0], 0
	}
	if idx >= len(wps) {
		last := wps[len(wps)-1]
		return last, last, 0
	}
	w0, w1 := wps[idx-1], wps[idx]
	dt := w1.t - w0.t
	if dt <= 0 {
		return w1, w1, 0
	}
	alpha := geo.Clamp(float64(t-w0.t)/float64(dt), 0, 1)
	return w0, w1, alpha
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
