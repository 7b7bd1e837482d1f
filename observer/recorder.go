/*
DESCRIPTION
  recorder.go implements the event recorder: the state that lives only
  while a trigger's pre/post-event window is being assembled, plus the
  writers for the trigger-time and flush-time artefact bundles. The
  state machine itself (Warming / Idle / Recording / Flushing) is
  driven one tick at a time by the engine; EventRecorder only owns the
  storage and the artefact bundle for a single event.

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

// EventRecorder accumulates the long stack, long max map and
// post-trigger raw video for one in-progress event, and writes the
// artefact bundle at trigger time and at flush time.
type EventRecorder struct {
	width, height  int
	recordStacks   int // L: post-trigger stack intervals recorded.
	framesPerStack int // N.

	long    *Stack
	longMax *MaxMap
	post    []byte // concatenated raw YUV420 of the L post-trigger intervals.
	unit    int    // bytes per post-trigger interval (framesPerStack*rawFrameLen).

	accumulated int // post-trigger intervals folded in so far.

	// Stub is the trigger-time filename stub (without suffix) every
	// artefact of this event is written under.
	Stub string
}

// NewEventRecorder allocates the long-window storage for an event
// spanning recordStacks post-trigger intervals of framesPerStack raw
// frames each, rawFrameLen bytes per frame.
func NewEventRecorder(width, height, recordStacks, framesPerStack, rawFrameLen int) *EventRecorder {
	unit := framesPerStack * rawFrameLen
	return &EventRecorder{
		width:          width,
		height:         height,
		recordStacks:   recordStacks,
		framesPerStack: framesPerStack,
		long:           NewStack(width, height),
		longMax:        NewMaxMap(width, height),
		post:           make([]byte, recordStacks*unit),
		unit:           unit,
	}
}

// NextPostSlice returns the region of the post-trigger video buffer
// that the next Accumulate call's interval should be read into
// directly, avoiding a second copy.
func (r *EventRecorder) NextPostSlice() []byte {
	return r.post[r.accumulated*r.unit : (r.accumulated+1)*r.unit]
}

// Begin starts a new event at stub, seeding the long stack and max map
// with the triggering interval's own stack and max map — that interval
// counts once toward the event window, before any post-trigger
// interval is folded in.
func (r *EventRecorder) Begin(stub string, triggerStack *Stack, triggerMax *MaxMap) {
	r.Stub = stub
	r.accumulated = 0
	r.long.CopyFrom(triggerStack)
	r.longMax.Reset()
	r.longMax.UpdateMaxFrom(triggerMax)
}

// Accumulate folds one post-trigger stack interval's sum stack and max
// map into the event window (the interval's raw bytes are expected to
// already have been written via NextPostSlice) and reports whether the
// configured recording length has been reached (the Recording ->
// Flushing transition).
func (r *EventRecorder) Accumulate(stack *Stack, max *MaxMap) bool {
	r.long.AddStack(stack)
	r.longMax.UpdateMaxFrom(max)
	r.accumulated++
	return r.accumulated >= r.recordStacks
}

// totalFrames is the number of raw frames summed into the long stack:
// the triggering interval plus every post-trigger interval folded in
// so far.
func (r *EventRecorder) totalFrames() int {
	return r.framesPerStack * (1 + r.accumulated)
}

// WriteTriggerArtefacts writes the artefacts produced at the instant a
// trigger fires: the trigger's own diagnostic map, the "2" bundle for
// the triggering interval (cur), and the "1" bundle for the pre-event
// interval (prev).
func (r *EventRecorder) WriteTriggerArtefacts(
	w ArtefactWriter,
	diag []byte,
	background *MedianMap,
	gain float64,
	prevStack *Stack, prevMax *MaxMap,
	curStack *Stack, curMax *MaxMap,
	framesPerStack int,
) error {
	if err := w.DumpRGB(r.width, r.height, diag, r.Stub+"_MAP.rgb"); err != nil {
		return err
	}

	bg := background.RGB()

	if err := w.DumpRGBFromSums(r.width, r.height, curStack.Sums(), framesPerStack, 1, r.Stub+"2_BS0.rgb"); err != nil {
		return err
	}
	if err := w.DumpRGBFromSumsSub(r.width, r.height, curStack.Sums(), framesPerStack, gain, bg, r.Stub+"2_BS1.rgb"); err != nil {
		return err
	}
	if err := w.DumpRGB(r.width, r.height, curMax.RGB(), r.Stub+"2_MAX.rgb"); err != nil {
		return err
	}

	if err := w.DumpRGBFromSums(r.width, r.height, prevStack.Sums(), framesPerStack, 1, r.Stub+"1_BS0.rgb"); err != nil {
		return err
	}
	if err := w.DumpRGBFromSumsSub(r.width, r.height, prevStack.Sums(), framesPerStack, gain, bg, r.Stub+"1_BS1.rgb"); err != nil {
		return err
	}
	return w.DumpRGB(r.width, r.height, prevMax.RGB(), r.Stub+"1_MAX.rgb")
}

// Flush writes the event window's "3" bundle (max map, plain and
// background-subtracted long stack) plus the concatenated
// pre/trigger/post video, keyed by Stub.
func (r *EventRecorder) Flush(w ArtefactWriter, background *MedianMap, gain float64, pre, cur []byte) error {
	if err := w.DumpRGB(r.width, r.height, r.longMax.RGB(), r.Stub+"3_MAX.rgb"); err != nil {
		return err
	}

	sums := r.long.Sums()
	n := r.totalFrames()

	if err := w.DumpRGBFromSums(r.width, r.height, sums, n, 1, r.Stub+"3_BS0.rgb"); err != nil {
		return err
	}
	if err := w.DumpRGBFromSumsSub(r.width, r.height, sums, n, gain, background.RGB(), r.Stub+"3_BS1.rgb"); err != nil {
		return err
	}

	return w.DumpVideo(r.width, r.height, pre, cur, r.post, r.Stub+".vid")
}
