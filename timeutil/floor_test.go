package timeutil

import (
	"testing"
	"time"
)

func TestFloor(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		unit time.Duration
		want time.Duration
	}{
		{
			name: "exact_multiple",
			d:    10 * time.Second,
			unit: time.Second,
			want: 10 * time.Second,
		},
		{
			name: "sub_second_remainder",
			d:    10*time.Second + 700*time.Millisecond,
			unit: time.Second,
			want: 10 * time.Second,
		},
		{
			name: "just_under_boundary",
			d:    11*time.Second - time.Nanosecond,
			unit: time.Second,
			want: 10 * time.Second,
		},
		{
			name: "zero",
			d:    0,
			unit: time.Second,
			want: 0,
		},
		{
			name: "negative_rounds_toward_negative_infinity",
			d:    -1500 * time.Millisecond,
			unit: time.Second,
			want: -2 * time.Second,
		},
		{
			name: "negative_exact_multiple",
			d:    -2 * time.Second,
			unit: time.Second,
			want: -2 * time.Second,
		},
		{
			name: "coarser_unit",
			d:    90 * time.Second,
			unit: time.Minute,
			want: time.Minute,
		},
		{
			name: "zero_unit_is_identity",
			d:    1234 * time.Millisecond,
			unit: 0,
			want: 1234 * time.Millisecond,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Floor(tc.d, tc.unit); got != tc.want {
				t.Fatalf("Floor(%v, %v) = %v, want %v", tc.d, tc.unit, got, tc.want)
			}
		})
	}
}

func TestFloor_DiffersFromTruncate(t *testing.T) {
	d := -1500 * time.Millisecond
	if trunc := d.Truncate(time.Second); trunc != -time.Second {
		t.Fatalf("expected Truncate to round toward zero, got %v", trunc)
	}
	if got := Floor(d, time.Second); got != -2*time.Second {
		t.Fatalf("expected Floor to round down, got %v", got)
	}
}

func TestFloorTime(t *testing.T) {
	base := time.Date(2026, 2, 4, 12, 30, 10, 700_000_000, time.UTC)

	got := FloorTime(base, time.Second)
	want := time.Date(2026, 2, 4, 12, 30, 10, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("FloorTime = %v, want %v", got, want)
	}

	// Flooring an already-floored time is a no-op.
	if again := FloorTime(got, time.Second); !again.Equal(got) {
		t.Fatalf("FloorTime not idempotent: %v != %v", again, got)
	}
}

func TestFloorTime_StripsMonotonic(t *testing.T) {
	now := time.Now()
	floored := FloorTime(now, time.Second)

	// A time carrying a monotonic reading renders with an "m=" suffix.
	if s := floored.String(); len(s) > 0 && containsMonotonic(s) {
		t.Fatalf("FloorTime result still carries monotonic reading: %s", s)
	}
	if floored.Nanosecond() != 0 {
		t.Fatalf("FloorTime left sub-second component: %v", floored)
	}
}

func containsMonotonic(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == 'm' && s[i+1] == '=' {
			return true
		}
	}
	return false
}

func TestNextTick(t *testing.T) {
	base := time.Date(2026, 2, 4, 12, 30, 10, 700_000_000, time.UTC)

	got := NextTick(base, time.Second)
	want := time.Date(2026, 2, 4, 12, 30, 11, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextTick = %v, want %v", got, want)
	}

	// On an exact boundary the next tick is one full unit later.
	exact := time.Date(2026, 2, 4, 12, 30, 10, 0, time.UTC)
	if got := NextTick(exact, time.Second); !got.Equal(exact.Add(time.Second)) {
		t.Fatalf("NextTick on boundary = %v, want %v", got, exact.Add(time.Second))
	}
}
