package web

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trailnav/internal/geo"
	"trailnav/internal/nav"
)

type api struct {
	Deps
}

func badParam(name, format string, args ...any) error {
	return fmt.Errorf("%s %s", name, fmt.Sprintf(format, args...))
}

type coordinateView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Formatted string  `json:"formatted"`
}

func (a *api) view(c geo.Coordinate) coordinateView {
	n := a.Navigation
	return coordinateView{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Formatted: c.FormatPrecision(n.CoordinateFormat, n.FormatPrecision()),
	}
}

type vectorView struct {
	DistanceM  float64 `json:"distance_m"`
	BearingDeg float64 `json:"bearing_deg"`
	Direction  string  `json:"direction"`
}

func newVectorView(v nav.Vector) vectorView {
	return vectorView{
		DistanceM:  v.Distance,
		BearingDeg: v.Direction.Value(),
		Direction:  v.Direction.Direction().String(),
	}
}

func (a *api) beacons(w http.ResponseWriter, r *http.Request) {
	type item struct {
		nav.Beacon
		Location coordinateView `json:"location"`
	}
	out := make([]item, 0, len(a.Beacons))
	for _, b := range a.Beacons {
		out = append(out, item{Beacon: b, Location: a.view(b.Coordinate)})
	}
	writeJSON(w, out)
}

func (a *api) parse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := strings.TrimSpace(q.Get("q"))
	if text == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	var (
		c  geo.Coordinate
		ok bool
	)
	if name := q.Get("format"); name != "" {
		f, known := geo.ParseCoordinateFormat(name)
		if !known {
			http.Error(w, fmt.Sprintf("format %q is not supported", name), http.StatusBadRequest)
			return
		}
		c, ok = geo.ParseFormat(text, f)
	} else {
		c, ok = geo.Parse(text)
	}
	if !ok {
		http.Error(w, fmt.Sprintf("%q is not a recognised coordinate", text), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, a.view(c))
}

func (a *api) format(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := floatParam(q, "lat", nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lon, err := floatParam(q, "lon", nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, ok := geo.NewCoordinate(lat, lon)
	if !ok {
		http.Error(w, "lat/lon out of range", http.StatusBadRequest)
		return
	}

	f, precision := a.Navigation.CoordinateFormat, a.Navigation.FormatPrecision()
	if name := q.Get("format"); name != "" {
		var known bool
		if f, known = geo.ParseCoordinateFormat(name); !known {
			http.Error(w, fmt.Sprintf("format %q is not supported", name), http.StatusBadRequest)
			return
		}
		precision = f.DefaultPrecision()
	}
	if s := q.Get("precision"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 0 || p > 7 {
			http.Error(w, "precision must be an integer in [0,7]", http.StatusBadRequest)
			return
		}
		precision = p
	}

	writeJSON(w, map[string]any{
		"format":    f.String(),
		"precision": precision,
		"value":     c.FormatPrecision(f, precision),
	})
}

func (a *api) navigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, status, err := a.fromParam(q)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	declination, trueNorth, err := a.northParams(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		to     geo.Coordinate
		beacon *nav.Beacon
	)
	switch {
	case q.Get("beacon") != "":
		b, status, err := a.beaconParam(q)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		beacon, to = &b, b.Coordinate
	case q.Get("to") != "":
		c, ok := geo.Parse(q.Get("to"))
		if !ok {
			http.Error(w, fmt.Sprintf("to %q is not a recognised coordinate", q.Get("to")), http.StatusBadRequest)
			return
		}
		to = c
	default:
		http.Error(w, "to or beacon is required", http.StatusBadRequest)
		return
	}

	resp := struct {
		From      coordinateView `json:"from"`
		To        coordinateView `json:"to"`
		Beacon    *nav.Beacon    `json:"beacon,omitempty"`
		TrueNorth bool           `json:"true_north"`
		vectorView
	}{
		From:       a.view(from.Coordinate),
		To:         a.view(to),
		Beacon:     beacon,
		TrueNorth:  trueNorth,
		vectorView: newVectorView(a.Nav.Navigate(from.Coordinate, to, declination, trueNorth)),
	}
	writeJSON(w, resp)
}

type rankedView struct {
	Beacon nav.Beacon `json:"beacon"`
	vectorView
	ETASec int64 `json:"eta_sec"`
}

func (a *api) nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, status, err := a.fromParam(q)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	maxM := a.Navigation.NearbyM
	maxM, err = floatParam(q, "max_m", &maxM)
	if err == nil && maxM < 0 {
		err = badParam("max_m", "must be >= 0")
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	declination, trueNorth, err := a.northParams(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	near := a.Nav.Nearby(from.Coordinate, a.Beacons, maxM)
	out := make([]rankedView, 0, len(near))
	for _, b := range near {
		out = append(out, rankedView{
			Beacon:     b,
			vectorView: newVectorView(a.Nav.NavigateTo(from, b, declination, trueNorth)),
			ETASec:     int64(a.Nav.ETA(from, b, a.Navigation.NonLinearETA) / time.Second),
		})
	}
	writeJSON(w, out)
}

func (a *api) eta(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	b, status, err := a.beaconParam(q)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	from, status, err := a.fromParam(q)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	nonLinear := a.Navigation.NonLinearETA
	if s := q.Get("non_linear"); s != "" {
		if nonLinear, err = strconv.ParseBool(s); err != nil {
			http.Error(w, "non_linear must be a boolean", http.StatusBadRequest)
			return
		}
	}

	d := a.Nav.ETA(from, b, nonLinear)
	writeJSON(w, map[string]any{
		"beacon":     b,
		"non_linear": nonLinear,
		"eta_sec":    int64(d / time.Second),
		"eta":        d.Round(time.Second).String(),
	})
}

func (a *api) destination(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, status, err := a.fromParam(q)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	dist, err := floatParam(q, "distance_m", nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bearing, err := floatParam(q, "bearing", nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c := a.Nav.Destination(from.Coordinate, dist, geo.NewBearing(bearing))
	writeJSON(w, a.view(c))
}

func (a *api) triangulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		pts      [2]geo.Coordinate
		bearings [2]float64
	)
	for i, name := range []string{"a", "b"} {
		c, ok := geo.Parse(q.Get(name))
		if !ok {
			http.Error(w, fmt.Sprintf("%s %q is not a recognised coordinate", name, q.Get(name)), http.StatusBadRequest)
			return
		}
		v, err := floatParam(q, "bearing_"+name, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pts[i], bearings[i] = c, v
	}

	c, ok := a.Nav.Triangulate(pts[0], geo.NewBearing(bearings[0]), pts[1], geo.NewBearing(bearings[1]))
	if !ok {
		http.Error(w, "bearings do not intersect", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, a.view(c))
}

// fromParam is the "from" coordinate, or the current position when absent.
// An explicit coordinate keeps the current altitude and speed. Without
// either there is nothing to navigate from and the status is 409.
func (a *api) fromParam(q url.Values) (nav.Position, int, error) {
	pos, known := a.Status.LastPosition()
	s := q.Get("from")
	if s == "" {
		if !known {
			return nav.Position{}, http.StatusConflict, errors.New("from is required until a position is available")
		}
		return pos, http.StatusOK, nil
	}
	c, ok := geo.Parse(s)
	if !ok {
		return nav.Position{}, http.StatusBadRequest, badParam("from", "%q is not a recognised coordinate", s)
	}
	pos.Coordinate = c
	return pos, http.StatusOK, nil
}

func (a *api) northParams(q url.Values) (float64, bool, error) {
	declination := a.Navigation.Declination
	declination, err := floatParam(q, "declination", &declination)
	if err != nil {
		return 0, false, err
	}
	trueNorth := a.Navigation.UseTrueNorth()
	if s := q.Get("true_north"); s != "" {
		if trueNorth, err = strconv.ParseBool(s); err != nil {
			return 0, false, badParam("true_north", "must be a boolean")
		}
	}
	return declination, trueNorth, nil
}

func (a *api) beaconParam(q url.Values) (nav.Beacon, int, error) {
	s := q.Get("beacon")
	if s == "" {
		return nav.Beacon{}, http.StatusBadRequest, badParam("beacon", "is required")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nav.Beacon{}, http.StatusBadRequest, badParam("beacon", "must be an integer id")
	}
	for _, b := range a.Beacons {
		if b.ID == id {
			return b, http.StatusOK, nil
		}
	}
	return nav.Beacon{}, http.StatusNotFound, fmt.Errorf("beacon %d not found", id)
}

// floatParam parses a finite float. With def nil the parameter is required.
func floatParam(q url.Values, name string, def *float64) (float64, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		if def != nil {
			return *def, nil
		}
		return 0, badParam(name, "is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, badParam(name, "must be a number")
	}
	return v, nil
}
