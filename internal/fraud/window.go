package fraud

import "time"

// SlidingWindows scans times (sorted ascending) with a window of exactly size
// consecutive entries and returns the start index of every window whose span,
// first to last, is at most maxSpan. Overlapping windows are all reported.
func SlidingWindows(times []time.Time, size int, maxSpan time.Duration) []int {
	if size < 1 || len(times) < size {
		return nil
	}
	var starts []int
	for i := 0; i+size <= len(times); i++ {
		if times[i+size-1].Sub(times[i]) <= maxSpan {
			starts = append(starts, i)
		}
	}
	return starts
}
