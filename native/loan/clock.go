package loan

import "time"

// SystemClock is the production clock backed by the wall clock.
type SystemClock struct{}

// NowUnixSeconds returns the current time as Unix seconds.
func (SystemClock) NowUnixSeconds() int64 { return time.Now().Unix() }
