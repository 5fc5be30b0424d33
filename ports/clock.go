package ports

import "time"

// Clock abstracts time for components that cache or timestamp results,
// so tests can drive expiry explicitly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
