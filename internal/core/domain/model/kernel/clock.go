package kernel

import "time"

// Clock supplies the time used for assigned_at, updated_at and action_time stamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns wall-clock time in UTC truncated to microseconds, the
// resolution postgres stores, so values read back compare equal to values written.
func SystemClock() Clock {
	return ClockFunc(func() time.Time {
		return time.Now().UTC().Truncate(time.Microsecond)
	})
}
