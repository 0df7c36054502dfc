package web

import (
	"sync/atomic"
	"time"

	"trailnav/internal/nav"
)

// Status is the live view shared between the navigation loop and the API.
type Status struct {
	startUnixNano int64
	lastTickNano  int64
	rankings      uint64

	source   atomic.Value // string
	interval atomic.Value // string
	position atomic.Value // positionState
	ranking  atomic.Value // []RankedBeacon
	arrived  atomic.Value // *int64
}

type positionState struct {
	pos   nav.Position
	live  bool
	known bool
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.source.Store("")
	s.interval.Store("")
	s.position.Store(positionState{})
	s.ranking.Store([]RankedBeacon(nil))
	s.arrived.Store((*int64)(nil))
	return s
}

func (s *Status) SetStatic(source, interval string) {
	if source != "" {
		s.source.Store(source)
	}
	if interval != "" {
		s.interval.Store(interval)
	}
}

// SetPosition records the position used for the next ranking. live is false
// when the configured fallback is in use.
func (s *Status) SetPosition(p nav.Position, live bool) {
	s.position.Store(positionState{pos: p, live: live, known: true})
	if live {
		fixValidGauge.Set(1)
	} else {
		fixValidGauge.Set(0)
	}
}

// Position returns the last recorded position and whether it is live.
func (s *Status) Position() (nav.Position, bool) {
	st := s.position.Load().(positionState)
	return st.pos, st.live
}

// LastPosition is the last recorded position; ok is false until
// SetPosition has been called.
func (s *Status) LastPosition() (nav.Position, bool) {
	st := s.position.Load().(positionState)
	return st.pos, st.known
}

func (s *Status) SetRanking(nowUTC time.Time, ranked []nav.Ranked) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	out := make([]RankedBeacon, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, rankedBeacon(r))
	}
	s.ranking.Store(out)
	atomic.StoreInt64(&s.lastTickNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.rankings, 1)

	rankingsTotal.Inc()
	beaconsRankedGauge.Set(float64(len(out)))
	if len(out) > 0 {
		nearestBeaconMeters.Set(out[0].DistanceM)
	}
}

// SetArrived records the beacon the arrival indicator is lit for, or nil.
func (s *Status) SetArrived(id *int64) {
	s.arrived.Store(id)
}

type RankedBeacon struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	DistanceM  float64 `json:"distance_m"`
	BearingDeg float64 `json:"bearing_deg"`
	Direction  string  `json:"direction"`
	ETASec     int64   `json:"eta_sec"`
}

func rankedBeacon(r nav.Ranked) RankedBeacon {
	return RankedBeacon{
		ID:         r.Beacon.ID,
		Name:       r.Beacon.Name,
		Location:   r.Beacon.Coordinate.String(),
		DistanceM:  r.Vector.Distance,
		BearingDeg: r.Vector.Direction.Value(),
		Direction:  r.Vector.Direction.Direction().String(),
		ETASec:     int64(r.ETA / time.Second),
	}
}

type StatusSnapshot struct {
	Service       string         `json:"service"`
	NowUTC        string         `json:"now_utc"`
	UptimeSec     int64          `json:"uptime_sec"`
	Source        string         `json:"source"`
	Interval      string         `json:"interval"`
	PositionKnown bool           `json:"position_known"`
	PositionLive  bool           `json:"position_live"`
	Position      nav.Position   `json:"position"`
	RankingsTotal uint64         `json:"rankings_total"`
	LastTickUTC   string         `json:"last_tick_utc,omitempty"`
	ArrivedAt     *int64         `json:"arrived_at,omitempty"`
	Beacons       []RankedBeacon `json:"beacons"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	pos := s.position.Load().(positionState)
	beacons := s.ranking.Load().([]RankedBeacon)
	if beacons == nil {
		beacons = []RankedBeacon{}
	}

	snap := StatusSnapshot{
		Service:       "trailnav",
		NowUTC:        nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:     int64(nowUTC.Sub(start).Seconds()),
		Source:        s.source.Load().(string),
		Interval:      s.interval.Load().(string),
		PositionKnown: pos.known,
		PositionLive:  pos.live,
		Position:      pos.pos,
		RankingsTotal: atomic.LoadUint64(&s.rankings),
		ArrivedAt:     s.arrived.Load().(*int64),
		Beacons:       beacons,
	}
	if lastTick := atomic.LoadInt64(&s.lastTickNano); lastTick != 0 {
		snap.LastTickUTC = time.Unix(0, lastTick).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
