/*
DESCRIPTION
  timelapse.go implements the timelapse stacker: independently of the
  trigger, stacks configurable-length exposures on
  a configurable wall-clock cadence and emits plain and
  background-subtracted artefacts.

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

// Timelapse accumulates a configurable-length exposure on a
// configurable wall-clock cadence.
type Timelapse struct {
	width, height int

	exposureStacks int // exposure length, in stack intervals.
	intervalStacks int // cadence, in stack intervals (informational; alignment is wall-clock driven by NextTarget).

	interval time.Duration

	stack       *Stack
	accumulated int  // stack intervals folded into stack so far.
	open        bool // true while a window is accumulating.

	// NextTarget is the next UTC at which a new window should open.
	NextTarget time.Time
}

// NewTimelapse returns a Timelapse ready to open its first window at
// firstTarget (typically the next whole minute after warm-up).
func NewTimelapse(width, height int, exposure, interval time.Duration, stackSeconds float64, firstTarget time.Time) *Timelapse {
	return &Timelapse{
		width:          width,
		height:         height,
		exposureStacks: int(exposure.Seconds() / stackSeconds),
		intervalStacks: int(interval.Seconds() / stackSeconds),
		interval:       interval,
		stack:          NewStack(width, height),
		NextTarget:     firstTarget,
	}
}

// timelapseResult carries the emitted stack and the means of dumping
// it, so the engine can write artefacts through its own writer + file
// naming without Timelapse knowing about either.
type timelapseResult struct {
	stack          *Stack
	exposureStacks int
}

// Tick folds one stack interval into the timelapse accumulator. If utc
// has crossed NextTarget and no window is currently open, a new window
// is opened (clearing the accumulator first): a window opens at the
// first tick whose UTC >= target, meaning the interval that crosses
// the target is the first one folded into the new window. When the
// configured exposure length has been reached, Tick
// returns the completed result and advances NextTarget by the
// configured interval.
func (tl *Timelapse) Tick(stack *Stack, utc time.Time) (*timelapseResult, bool) {
	if !tl.open {
		if utc.Before(tl.NextTarget) {
			return nil, false
		}
		tl.stack.Reset()
		tl.accumulated = 0
		tl.open = true
	}

	tl.stack.AddStack(stack)
	tl.accumulated++

	if tl.accumulated < tl.exposureStacks {
		return nil, false
	}

	out := &timelapseResult{stack: tl.stack, exposureStacks: tl.exposureStacks}
	tl.open = false
	tl.NextTarget = tl.NextTarget.Add(tl.interval)
	return out, true
}
