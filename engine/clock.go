package engine

import "time"

// Timer is a cancellable pending callback
type Timer interface {
	Stop() bool
}

// Clock abstracts time so debounce behaviour can be driven from tests
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// SystemClock uses the real time package
type SystemClock struct{}

// AfterFunc implements Clock
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Now implements Clock
func (SystemClock) Now() time.Time { return time.Now() }
