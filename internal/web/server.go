package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trailnav/internal/config"
	"trailnav/internal/nav"
)

// Deps is everything the API needs. Status and Navigation are required;
// Logs is optional.
type Deps struct {
	Status     *Status
	Nav        nav.Service
	Beacons    []nav.Beacon
	Navigation config.NavigationConfig
	Logs       *LogBuffer
}

func Handler(d Deps) http.Handler {
	if d.Status == nil {
		d.Status = NewStatus()
	}
	a := &api{Deps: d}
	mux := http.NewServeMux()

	route := func(path string, h http.HandlerFunc) {
		mux.Handle(path, instrument(path, getOnly(h)))
	}

	route("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Status.Snapshot(time.Now().UTC()))
	})
	route("/api/beacons", a.beacons)
	route("/api/parse", a.parse)
	route("/api/format", a.format)
	route("/api/navigate", a.navigate)
	route("/api/nearby", a.nearby)
	route("/api/eta", a.eta)
	route("/api/destination", a.destination)
	route("/api/triangulate", a.triangulate)

	if d.Logs != nil {
		mux.Handle("/api/logs", instrument("/api/logs", d.Logs.Handler()))
	}
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func Serve(ctx context.Context, listenAddr string, d Deps) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Handler(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
