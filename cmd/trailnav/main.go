package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"trailnav/internal/config"
	"trailnav/internal/nav"
	"trailnav/internal/web"
)

const defaultConfigPath = "./configs/trailnav.yaml"

func main() {
	// .env is optional; real environment variables win.
	envErr := godotenv.Load()

	configPath := defaultConfigPath
	if p := os.Getenv("TRAILNAV_CONFIG"); p != "" {
		configPath = p
	}
	var report bool
	flag.StringVar(&configPath, "config", configPath, "Path to YAML config (env TRAILNAV_CONFIG)")
	flag.BoolVar(&report, "report", false, "Print beacons ranked from the configured position and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logs := web.NewLogBuffer(1000)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, logs), &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	if envErr != nil {
		slog.Debug("no .env file loaded", "err", envErr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if report {
		err = runReport(ctx, os.Stdout, cfg)
	} else {
		err = run(ctx, cfg, logs)
	}
	if err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logs *web.LogBuffer) error {
	slog.Info("trailnav starting",
		"beacons", len(cfg.Beacons),
		"format", cfg.Navigation.Format,
		"interval", cfg.Navigation.Interval,
		"listen", cfg.Web.Listen)

	status := web.NewStatus()
	rt, err := newRuntime(cfg, status, time.Now())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := web.Serve(gctx, cfg.Web.Listen, web.Deps{
			Status:     status,
			Nav:        rt.svc,
			Beacons:    rt.beacons,
			Navigation: cfg.Navigation,
			Logs:       logs,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return rt.Run(gctx, cfg.Navigation.Interval)
	})

	err = g.Wait()
	slog.Info("trailnav stopping")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func rankOptions(n config.NavigationConfig) nav.RankOptions {
	return nav.RankOptions{
		Declination: n.Declination,
		TrueNorth:   n.UseTrueNorth(),
		NonLinear:   n.NonLinearETA,
		MaxDistance: n.NearbyM,
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
