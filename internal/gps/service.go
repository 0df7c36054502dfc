package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"trailnav/internal/nav"
)

// Config controls the GPS reader.
//
// Device is a serial port (u-blox receivers typically appear as
// /dev/ttyACM*) or, with Replay set, a recorded NMEA log that is played
// back one RMC epoch per ReplayInterval. Device may be empty to auto-detect
// a serial receiver.
type Config struct {
	Enable bool
	Device string
	Baud   int

	Replay         bool
	ReplayInterval time.Duration
}

type Snapshot struct {
	Enabled  bool `json:"enabled"`
	Valid    bool `json:"valid"`
	Accurate bool `json:"accurate"`

	Source string `json:"source,omitempty"`
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`

	Position   nav.Position `json:"position"`
	AccuracyM  *float64     `json:"accuracy_m,omitempty"`
	FixQuality *int         `json:"fix_quality,omitempty"`
	Satellites *int         `json:"satellites,omitempty"`
	HDOP       *float64     `json:"hdop,omitempty"`

	LastFixUTC string `json:"last_fix_utc,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

type Service struct {
	cfg Config
	log *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	mu     sync.Mutex
	closer io.Closer
}

func New(cfg Config) *Service {
	if cfg.Baud == 0 {
		cfg.Baud = 9600
	}
	if cfg.ReplayInterval <= 0 {
		cfg.ReplayInterval = time.Second
	}
	s := &Service{cfg: cfg, log: slog.Default().With("component", "gps")}
	s.last.Store(Snapshot{Enabled: cfg.Enable, Source: s.source(), Device: cfg.Device, Baud: cfg.Baud})
	return s
}

func (s *Service) source() string {
	if s.cfg.Replay {
		return "replay"
	}
	return "serial"
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	device := strings.TrimSpace(s.cfg.Device)
	var (
		f    *os.File
		err  error
		pace time.Duration
	)
	if s.cfg.Replay {
		f, err = os.Open(device)
		pace = s.cfg.ReplayInterval
	} else {
		if device == "" {
			device = autoDetectDevice()
			if device == "" {
				s.setErrorLocked("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
				return fmt.Errorf("gps auto-detect failed")
			}
		}
		f, err = openSerial(device, s.cfg.Baud)
	}
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed device=%s: %v", device, err))
		return fmt.Errorf("gps: open %s: %w", device, err)
	}
	s.closer = f

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.last.Store(Snapshot{Enabled: true, Source: s.source(), Device: device, Baud: s.cfg.Baud})
	s.log.Info("gps enabled", "source", s.source(), "device", device, "baud", s.cfg.Baud)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = f.Close() }()
		s.readLoop(childCtx, f, device, pace)
	}()
	return nil
}

// readLoop consumes NMEA lines from r until EOF or cancellation. A non-zero
// pace waits that long before every RMC sentence after the first, so a
// recorded log plays back in real time.
func (s *Service) readLoop(ctx context.Context, r io.Reader, device string, pace time.Duration) {
	scanner := bufio.NewScanner(r)
	// NMEA sentences are under 82 chars; allow headroom for chatter.
	scanner.Buffer(make([]byte, 0, 256), 4096)

	var (
		st      fixState
		epochs  int
		lastErr string
	)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			s.setError(fmt.Sprintf("gps read stopped: %v", err))
			s.log.Warn("gps read stopped", "device", device, "err", err)
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sent, err := parseSentence(line)
		if err != nil {
			// Keep the last error only; noisy links produce many.
			if err.Error() != lastErr {
				s.log.Debug("gps bad sentence", "err", err)
				lastErr = err.Error()
			}
			s.setError(err.Error())
			continue
		}

		if pace > 0 && sent.Kind == "RMC" {
			if epochs > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(pace):
				}
			}
			epochs++
		}

		if st.apply(time.Now().UTC(), sent) {
			snap := st.snapshot()
			snap.Source = s.source()
			snap.Device = device
			snap.Baud = s.cfg.Baud
			snap.LastError = s.Snapshot().LastError
			s.last.Store(snap)
		}
	}
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

// Position returns the latest fix, if any.
func (s *Service) Position() (nav.Position, bool) {
	snap := s.Snapshot()
	return snap.Position, snap.Valid
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	cur := s.Snapshot()
	cur.LastError = msg
	// Transient parse issues do not invalidate the last fix.
	s.last.Store(cur)
}

func autoDetectDevice() string {
	for _, prefix := range []string{"/dev/ttyACM", "/dev/ttyUSB"} {
		for i := 0; i < 10; i++ {
			p := fmt.Sprintf("%s%d", prefix, i)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}
