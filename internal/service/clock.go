package service

import "time"

// Clock returns the current time. Services read it instead of
// time.Now so tests can pin dates.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}
