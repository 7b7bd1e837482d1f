/*
DESCRIPTION
  timelapse_test.go tests the timelapse stacker.

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

func TestTimelapseDoesNotOpenBeforeTarget(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimelapse(2, 2, 2*time.Second, 10*time.Second, 1, start.Add(5*time.Second))

	stack := NewStack(2, 2)
	stack.R[0] = 10

	res, done := tl.Tick(stack, start)
	if done || res != nil {
		t.Fatal("timelapse opened a window before NextTarget")
	}
}

func TestTimelapseCompletesAfterExposure(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// 1-second stack intervals, 3-second exposure, 10-second cadence,
	// first window opens immediately.
	tl := NewTimelapse(2, 2, 3*time.Second, 10*time.Second, 1, start)

	stack := NewStack(2, 2)
	stack.R[0] = 5

	var res *timelapseResult
	var done bool
	for i := 0; i < 3; i++ {
		res, done = tl.Tick(stack, start.Add(time.Duration(i)*time.Second))
	}
	if !done {
		t.Fatal("timelapse did not complete after exposureStacks ticks")
	}
	if res.stack.R[0] != 15 {
		t.Fatalf("accumulated R[0] = %d, want 15 (3 ticks of 5)", res.stack.R[0])
	}

	wantNext := start.Add(10 * time.Second)
	if !tl.NextTarget.Equal(wantNext) {
		t.Fatalf("NextTarget after completion = %v, want %v", tl.NextTarget, wantNext)
	}
}

func TestTimelapseReopensForNextWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tl := NewTimelapse(2, 2, 2*time.Second, 4*time.Second, 1, start)

	stack := NewStack(2, 2)
	stack.R[0] = 1

	// First window: ticks at t=0, t=1 complete it and set NextTarget=t+4.
	tl.Tick(stack, start)
	_, done := tl.Tick(stack, start.Add(1*time.Second))
	if !done {
		t.Fatal("first window did not complete")
	}

	// A tick before the new target must not reopen a window.
	if _, done := tl.Tick(stack, start.Add(2*time.Second)); done {
		t.Fatal("timelapse reopened before the next target")
	}

	// A tick at/after the new target (t=4) reopens and starts
	// accumulating fresh.
	res, done := tl.Tick(stack, start.Add(4*time.Second))
	if done {
		t.Fatal("window should not complete on its first folded interval")
	}
	if res != nil {
		t.Fatal("incomplete window must return a nil result")
	}
}
