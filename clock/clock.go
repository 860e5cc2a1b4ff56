package clock

import "time"

// Source provides raw time readings for a cached clock. Implementations
// may be backed by the system wall clock, the monotonic clock, or a
// drift-corrected source (e.g. NTP).
//
// Sources passed to Shared must be comparable, since one cached facade is
// kept per distinct Source value.
type Source interface {
	// Now returns the source's current time.
	Now() time.Time

	// Steady reports whether the source never moves backward between
	// successive reads.
	Steady() bool
}

// System returns the wall-clock Source backed by time.Now(). It is not
// steady: the wall clock may step backward on adjustment.
func System() Source { return systemSource{} }

type systemSource struct{}

func (systemSource) Now() time.Time { return time.Now() }

func (systemSource) Steady() bool { return false }

// monotonicBase anchors the steady source. Readings are derived from the
// monotonic delta since this base, so they never move backward even if the
// wall clock is adjusted.
var monotonicBase = time.Now()

// Monotonic returns a steady Source derived from the runtime's monotonic
// clock. All calls return the same value, so Shared(Monotonic()) yields a
// single process-wide facade.
func Monotonic() Source { return monotonicSource{} }

type monotonicSource struct{}

func (monotonicSource) Now() time.Time { return monotonicBase.Add(time.Since(monotonicBase)) }

func (monotonicSource) Steady() bool { return true }
