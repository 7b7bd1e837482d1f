/*
DESCRIPTION
  throttle.go bounds the number of events fired within a sliding window
  of stack intervals, independently of the event recorder itself.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package observer

import "time"

// Throttle counts events fired within a rolling window of stack
// intervals; once the window's worth of intervals has elapsed, the
// count resets to zero regardless of when within the window events
// fired.
type Throttle struct {
	cycles  int // stack intervals per window.
	max     int
	timer   int
	counter int
}

// NewThrottle returns a Throttle whose window spans period, measured
// in stack intervals of length stackSeconds, permitting up to max
// events per window.
func NewThrottle(period time.Duration, stackSeconds float64, max int) *Throttle {
	cycles := int(period.Seconds() / stackSeconds)
	if cycles < 1 {
		cycles = 1
	}
	return &Throttle{cycles: cycles, max: max}
}

// Tick advances the throttle by one stack interval.
func (t *Throttle) Tick() {
	t.timer++
	if t.timer >= t.cycles {
		t.timer = 0
		t.counter = 0
	}
}

// Allow reports whether another event may fire in the current window.
func (t *Throttle) Allow() bool {
	return t.counter < t.max
}

// RecordFire registers that an event fired in the current window.
func (t *Throttle) RecordFire() {
	t.counter++
}
