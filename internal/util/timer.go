package util

import "time"

// Timer measures elapsed time for pipeline stages.
type Timer struct {
	start time.Time
}

// StartTimer returns a timer anchored at the current time.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the duration since the timer started.
func (t Timer) Elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed milliseconds since start, for log fields.
func (t Timer) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}
