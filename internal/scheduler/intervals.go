package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// AllowedIntervals is the enumerated set of periodic collection intervals.
var AllowedIntervals = []time.Duration{
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	1 * time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

// ErrInvalidInterval is returned when an interval is not in the allowed set.
var ErrInvalidInterval = errors.New("interval is not in the allowed set")

// ValidInterval reports whether d is one of AllowedIntervals.
func ValidInterval(d time.Duration) bool {
	return containsInterval(AllowedIntervals, d)
}

// HumanizeInterval renders an interval the way the settings label shows it:
// whole minutes below an hour ("15m"), whole hours otherwise ("3h").
func HumanizeInterval(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int64(d.Round(time.Minute)/time.Minute))
	}
	return fmt.Sprintf("%dh", int64(d.Round(time.Hour)/time.Hour))
}

func containsInterval(set []time.Duration, d time.Duration) bool {
	for _, v := range set {
		if v == d {
			return true
		}
	}
	return false
}
