package clock

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

var _ Source = (*NTPSource)(nil)

// NTPSource is a drift-corrected wall-clock Source. It periodically syncs
// an offset against an NTP server and applies it to time.Now(). It can be
// used directly or wrapped in a SecondsClock for cheap cached reads.
type NTPSource struct {
	server   string
	interval time.Duration
	timeout  time.Duration
	logger   Logger

	mu     sync.RWMutex
	offset time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NTPOption configures an NTPSource.
type NTPOption func(*NTPSource)

// WithServer sets the NTP server address.
func WithServer(server string) NTPOption {
	return func(s *NTPSource) { s.server = server }
}

// WithInterval sets the re-sync interval.
func WithInterval(d time.Duration) NTPOption {
	return func(s *NTPSource) { s.interval = d }
}

// WithTimeout sets the NTP query timeout.
func WithTimeout(d time.Duration) NTPOption {
	return func(s *NTPSource) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l Logger) NTPOption {
	return func(s *NTPSource) { s.logger = l }
}

const (
	defaultServer   = "pool.ntp.org"
	defaultInterval = 30 * time.Minute
	defaultTimeout  = 5 * time.Second
)

// NewNTP creates an NTPSource with the given options.
func NewNTP(opts ...NTPOption) *NTPSource {
	s := &NTPSource{
		server:   defaultServer,
		interval: defaultInterval,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the current time adjusted by the NTP offset.
func (s *NTPSource) Now() time.Time {
	s.mu.RLock()
	off := s.offset
	s.mu.RUnlock()
	return time.Now().Add(off)
}

// Steady reports false: offset corrections may step the reading backward.
func (s *NTPSource) Steady() bool { return false }

// Offset returns the current NTP offset.
func (s *NTPSource) Offset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

// Start performs an initial NTP sync and starts a background goroutine
// that re-syncs on the configured interval.
func (s *NTPSource) Start(ctx context.Context) error {
	s.sync()

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

// Stop shuts down the background sync goroutine.
func (s *NTPSource) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *NTPSource) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sync()
		}
	}
}

func (s *NTPSource) sync() {
	resp, err := ntp.QueryWithOptions(s.server, ntp.QueryOptions{
		Timeout: s.timeout,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.WarnW("ntp sync failed, keeping last offset", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.offset = resp.ClockOffset
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.InfoW("ntp sync", "offset", resp.ClockOffset)
	}
}
