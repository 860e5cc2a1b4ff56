package clock

import (
	"sync"
	"time"

	"github.com/tnicklin/coarseclock/timeutil"
)

// Resolution is the granularity of a SecondsClock. Cached values are
// always floored to a whole multiple of it.
const Resolution = time.Second

var _ Listener = (*SecondsClock)(nil)
var _ Source = (*SecondsClock)(nil)

// SecondsClock caches a second-resolution reading of an underlying Source.
// Now() is cheap: it reads the cached value under a mutex and never
// touches the underlying source. The source is re-sampled by a Scheduler
// at least once per second, so the cached value trails the source by at
// most roughly one update cycle.
//
// A SecondsClock is itself a Source, so it can feed other consumers that
// accept one.
type SecondsClock struct {
	src   Source
	sched *Scheduler

	mu  sync.Mutex
	now time.Time
}

// Option configures a SecondsClock.
type Option func(*SecondsClock)

// WithScheduler registers the clock with sched instead of Default().
func WithScheduler(sched *Scheduler) Option {
	return func(c *SecondsClock) { c.sched = sched }
}

// New creates a SecondsClock over src and registers it with its scheduler.
// The source is sampled once synchronously, so Now() is valid immediately.
// Callers that create a clock with New must Close it before dropping it;
// clocks obtained via Shared or the package-level Now live for the process
// and need no cleanup.
func New(src Source, opts ...Option) *SecondsClock {
	c := &SecondsClock{src: src}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = Default()
	}
	c.now = timeutil.FloorTime(src.Now(), Resolution)
	c.sched.Add(c)
	return c
}

// Now returns the most recently cached time, floored to a whole second.
// It never blocks beyond a brief mutex shared only with the scheduler's
// Sample call. If the underlying source is steady, successive readings
// are non-decreasing.
func (c *SecondsClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Steady mirrors the underlying source's flag.
func (c *SecondsClock) Steady() bool { return c.src.Steady() }

// Sample re-reads the underlying source and replaces the cached value.
// It is invoked by the scheduler once per update cycle and is the only
// write path to the cache.
func (c *SecondsClock) Sample() {
	t := timeutil.FloorTime(c.src.Now(), Resolution)
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Close deregisters the clock from its scheduler. After Close returns the
// scheduler will not sample it again and Now() keeps returning the last
// cached value.
func (c *SecondsClock) Close() {
	c.sched.Remove(c)
}

var (
	sharedMu sync.Mutex
	shared   map[Source]*SecondsClock
)

// Shared returns the process-wide SecondsClock for src, creating it on
// first use. One clock is kept per distinct Source value, so src must be
// comparable. Shared clocks register with the Default scheduler and live
// for the rest of the process.
func Shared(src Source) *SecondsClock {
	// Touch the scheduler singleton before the facade registers with it.
	sched := Default()

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if c, ok := shared[src]; ok {
		return c
	}
	if shared == nil {
		shared = make(map[Source]*SecondsClock)
	}
	c := New(src, WithScheduler(sched))
	shared[src] = c
	return c
}

// Now returns the cached wall-clock time at one-second resolution. It is
// the cheap replacement for time.Now().Truncate(time.Second) on hot paths.
func Now() time.Time {
	return Shared(System()).Now()
}
