package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailnav_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trailnav_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Navigation metrics, updated by Status.
	fixValidGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trailnav_position_valid",
		Help: "1 when the current position comes from a live source",
	})

	beaconsRankedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trailnav_beacons_ranked",
		Help: "Number of beacons in the last ranking",
	})

	nearestBeaconMeters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trailnav_nearest_beacon_meters",
		Help: "Distance to the nearest ranked beacon",
	})

	rankingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trailnav_rankings_total",
		Help: "Total number of beacon rankings computed",
	})
)

func recordHTTP(method, path string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request count and latency under a fixed route label so
// query strings never reach the label set.
func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		recordHTTP(r.Method, route, rec.status, time.Since(start))
	})
}
