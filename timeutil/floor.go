package timeutil

import "time"

// Floor rounds d down to the nearest multiple of unit.
//
// Unlike time.Duration.Truncate, which rounds toward zero, Floor rounds
// toward negative infinity, so Floor(-1500ms, time.Second) is -2s rather
// than -1s. A unit <= 0 returns d unchanged.
func Floor(d, unit time.Duration) time.Duration {
	if unit <= 0 {
		return d
	}
	r := d % unit
	if r < 0 {
		r += unit
	}
	return d - r
}

// FloorTime rounds t down to the nearest multiple of unit since the zero
// time. The monotonic clock reading, if any, is stripped from the result.
func FloorTime(t time.Time, unit time.Duration) time.Time {
	if unit <= 0 {
		return t.Round(0)
	}
	return t.Truncate(unit)
}

// NextTick returns the first multiple of unit strictly after FloorTime(t,
// unit), i.e. the wake deadline for a loop that fires once per unit.
func NextTick(t time.Time, unit time.Duration) time.Time {
	return FloorTime(t, unit).Add(unit)
}
