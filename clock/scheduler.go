package clock

import (
	"sync"
	"time"

	"github.com/tnicklin/coarseclock/timeutil"
)

// Logger is a minimal logging interface satisfied by logger.Logger.
type Logger interface {
	InfoW(msg string, keysAndValues ...any)
	WarnW(msg string, keysAndValues ...any)
}

// Listener is notified once per update cycle by a Scheduler. Sample must
// refresh the listener's internal cached state; it is always invoked from
// the scheduler's background goroutine while the registry is locked, so it
// must not call back into Add, Remove, or Close.
type Listener interface {
	Sample()
}

// SchedulerParams holds optional collaborators for a Scheduler.
type SchedulerParams struct {
	Logger  Logger
	Metrics *Metrics
}

// Scheduler owns the single background goroutine that re-samples every
// registered listener at least once per second. Listener lifetimes are the
// caller's responsibility: a listener must call Remove before it becomes
// unusable, and after Remove returns the scheduler will never invoke
// Sample on it again.
type Scheduler struct {
	interval time.Duration
	logger   Logger
	metrics  *Metrics

	mu        sync.Mutex
	stopped   bool
	listeners []Listener

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a Scheduler and starts its background goroutine.
// The returned scheduler runs until Close is called. Most callers want
// Default() instead.
func NewScheduler(p SchedulerParams) *Scheduler {
	return newScheduler(p, time.Second)
}

func newScheduler(p SchedulerParams, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	s := &Scheduler{
		interval: interval,
		logger:   p.Logger,
		metrics:  p.Metrics,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if s.logger != nil {
		s.logger.InfoW("clock scheduler started", "interval", s.interval)
	}
	go s.run()
	return s
}

var (
	defaultOnce      sync.Once
	defaultScheduler *Scheduler
)

// Default returns the process-wide scheduler, constructing it on first
// call. It is never closed; its goroutine runs for the life of the
// process. Facades hold a reference to it, so it always outlives them.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		defaultScheduler = NewScheduler(SchedulerParams{})
	})
	return defaultScheduler
}

// Add registers l for update notifications. Registering the same listener
// twice is a caller bug; it will not crash, but Remove then only drops one
// of the two entries.
func (s *Scheduler) Add(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	n := len(s.listeners)
	s.mu.Unlock()

	s.metrics.setListeners(n)
}

// Remove drops the first registered entry identical to l. Once Remove
// returns, the scheduler is guaranteed not to invoke l.Sample() again: the
// sample pass holds the same mutex, so any in-flight pass has finished
// before Remove acquires it. Removing a listener that is not registered is
// a no-op.
func (s *Scheduler) Remove(l Listener) {
	s.mu.Lock()
	for i, cur := range s.listeners {
		if cur == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			break
		}
	}
	n := len(s.listeners)
	s.mu.Unlock()

	s.metrics.setListeners(n)
}

// Close stops the background goroutine and blocks until it has exited. No
// Sample call is in flight or will be issued after Close returns. Close is
// idempotent. The Default scheduler should not be closed.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	if s.logger != nil {
		s.logger.InfoW("clock scheduler stopped")
	}
}

// run is the update loop. Each iteration samples all listeners under the
// registry mutex, then sleeps until the next interval boundary: the
// current time floored to the interval, plus one interval. A late wakeup
// yields a deadline already in the past, in which case the loop fires
// again immediately and catches up tick by tick.
func (s *Scheduler) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		start := time.Now()
		for _, l := range s.listeners {
			l.Sample()
		}
		s.mu.Unlock()
		s.metrics.observeSamplePass(time.Since(start))

		wait := time.Until(timeutil.NextTick(time.Now(), s.interval))
		if wait < 0 {
			s.metrics.incLateWakeup()
			wait = 0
		}

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-s.stop:
			t.Stop()
			return
		}
	}
}
