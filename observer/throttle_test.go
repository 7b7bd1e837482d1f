/*
DESCRIPTION
  throttle_test.go tests the trigger rate limiter.

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

import (
	"testing"
	"time"
)

func TestThrottleCapsWithinWindow(t *testing.T) {
	// 4 stack intervals per window, at most 2 fires per window. Each
	// interval is checked before the Tick that ends it, so the four
	// checks fall in the first window; the fourth Tick starts the next.
	th := NewThrottle(4*time.Second, 1, 2)

	fires := 0
	for i := 0; i < 4; i++ {
		if th.Allow() {
			th.RecordFire()
			fires++
		}
		th.Tick()
	}
	if fires != 2 {
		t.Fatalf("fires within one window = %d, want 2", fires)
	}
}

func TestThrottleResetsAfterWindow(t *testing.T) {
	th := NewThrottle(2*time.Second, 1, 1)

	th.Tick()
	if !th.Allow() {
		t.Fatal("first interval should allow a fire")
	}
	th.RecordFire()
	th.Tick() // crosses the window boundary (cycles=2).

	if !th.Allow() {
		t.Fatal("throttle should reset and allow a fire in the new window")
	}
}

func TestNewThrottleMinimumOneCycle(t *testing.T) {
	// A period shorter than one stack interval should still produce a
	// window of at least one interval, not a zero-length (always
	// resetting) one.
	th := NewThrottle(100*time.Millisecond, 1, 1)
	if th.cycles < 1 {
		t.Fatalf("cycles = %d, want >= 1", th.cycles)
	}
}
