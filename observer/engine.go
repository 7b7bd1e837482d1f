/*
DESCRIPTION
  engine.go ties the observation engine's components into a single
  cooperative loop: one iteration per stack interval, reading frames
  from a FrameProvider, feeding the short-buffer stacker, the median
  estimator, the motion trigger, the event recorder and the timelapse
  stacker in turn, matching the dependency order every other component
  in this package assumes.

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
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/skycam/colour"
	"github.com/ausocean/skycam/observer/config"
)

// Warm-up/cooldown tunables, both expressed as a single counter the way
// the source's framesSinceLastTrigger does: the counter starts deeply
// negative so warm-up and the first rewind happen naturally as it
// counts up to zero, and is reset to zero after every event flush so
// the same cooldown applies again before the next trigger.
const (
	warmupCycles    = 260 // stack intervals per median-sample tick before warm-up ends.
	rewindAtTicks   = -2  // counter value at which the one-time rewind fires.
	allowTriggerAt  = 3   // counter value at/after which triggering is permitted.
)

// Engine runs the observation loop described in this package's
// components over a single FrameProvider, writing artefacts through an
// ArtefactWriter under a FileNameGenerator-managed directory tree.
type Engine struct {
	cfg      config.Config
	provider FrameProvider
	conv     *colour.Converter
	writer   ArtefactWriter
	gen      *FileNameGenerator
	cvFilters []namedCVFilter

	width, height  int
	framesPerStack int
	rawFrameLen    int

	bufA, bufB *Stack
	maxA, maxB *MaxMap
	rawA, rawB []byte
	bufNum     int // 0: A is current, 1: B is current.

	median    *MedianEstimator
	trigger   *Trigger
	timelapse *Timelapse
	throttle  *Throttle
	recorder  *EventRecorder

	recording    bool
	sinceTrigger int

	night string
	trend *nightlyTrend

	cancel  chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

type namedCVFilter struct {
	name string
	f    CVFilter
}

// NewEngine builds an Engine from a validated config, a frame provider
// and an artefact writer. cfg must already have passed Validate.
func NewEngine(cfg config.Config, provider FrameProvider, writer ArtefactWriter) (*Engine, error) {
	width, height := int(cfg.Width), int(cfg.Height)
	if width <= 0 || height <= 0 {
		return nil, errors.New("observer: width and height must be positive")
	}

	framesPerStack := int(cfg.StackSeconds * float64(cfg.FrameRate))
	if framesPerStack <= 0 {
		return nil, errors.New("observer: stack interval must be at least one frame")
	}
	recordStacks := int(cfg.RecordSeconds / cfg.StackSeconds)
	if recordStacks <= 0 {
		return nil, errors.New("observer: record length must be at least one stack interval")
	}

	rawFrameLen := width * height * 3 / 2

	e := &Engine{
		cfg:            cfg,
		provider:       provider,
		conv:           colour.NewConverter(),
		writer:         writer,
		gen:            &FileNameGenerator{Root: cfg.OutputPath},
		width:          width,
		height:         height,
		framesPerStack: framesPerStack,
		rawFrameLen:    rawFrameLen,
		bufA:           NewStack(width, height),
		bufB:           NewStack(width, height),
		maxA:           NewMaxMap(width, height),
		maxB:           NewMaxMap(width, height),
		rawA:           make([]byte, framesPerStack*rawFrameLen),
		rawB:           make([]byte, framesPerStack*rawFrameLen),
		median:         NewMedianEstimator(width, height, cfg.MedianSampleEvery),
		trigger:        NewTrigger(width, height, cfg),
		throttle:       NewThrottle(cfg.ThrottlePeriod, cfg.StackSeconds, cfg.ThrottleMax),
		recorder:       NewEventRecorder(width, height, recordStacks, framesPerStack, rawFrameLen),
		sinceTrigger:   -warmupCycles * int(cfg.MedianSampleEvery),
		cancel:         make(chan struct{}),
		done:           make(chan struct{}),
	}

	for _, kind := range cfg.Filters {
		if kind == config.FilterNoOp {
			continue
		}
		if f := NewCVFilter(kind, cfg); f != nil {
			e.cvFilters = append(e.cvFilters, namedCVFilter{name: filterName(kind), f: f})
		}
	}

	return e, nil
}

func filterName(kind uint8) string {
	switch kind {
	case config.FilterMOG:
		return "MOG"
	case config.FilterKNN:
		return "KNN"
	default:
		return "unknown"
	}
}

// Start runs the observation loop in a new goroutine and returns
// immediately; call Stop to request a clean shutdown.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	go e.run()
}

// Stop requests a clean shutdown at the next stack-interval boundary
// and blocks until the loop has exited.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	close(e.cancel)
	<-e.done
	for _, nf := range e.cvFilters {
		nf.f.Close()
	}
}

// run is the cooperative loop: one iteration per stack interval.
func (e *Engine) run() {
	defer close(e.done)

	for {
		select {
		case <-e.cancel:
			e.logInfo("cancellation received, exiting without flushing any in-progress event")
			return
		default:
		}

		curStack, curMax, curRaw := e.current()

		var readDst []byte
		if e.recording {
			readDst = e.recorder.NextPostSlice()
		} else {
			readDst = curRaw
		}

		utc, err := ReadShortBuffer(e.provider, e.conv, e.framesPerStack, e.width, e.height, readDst, curStack, nil, curMax, nil)
		if err != nil {
			e.logInfo("frame provider ended, exiting", "error", err.Error())
			return
		}

		e.sinceTrigger++
		if e.sinceTrigger == rewindAtTicks {
			// Rewind is a no-op for providers that can't seek (a live
			// camera); either way the timelapse target is seeded here,
			// matching the source's unconditional frameNextTargetTime set.
			if t, err := e.provider.Rewind(); err != nil {
				if err != ErrRewindUnsupported {
					e.logWarning("rewind failed", "error", err.Error())
				}
			} else {
				utc = t
			}
			e.startTimelapse(utc)
		}

		e.rollNight(utc)

		if e.median.Tick(curStack, e.framesPerStack) {
			e.trend.sample(utc, meanByte(e.median.Active().R))
		}

		if e.recording {
			e.advanceRecording(curStack, curMax)
		}

		if e.timelapse != nil {
			e.advanceTimelapse(curStack, utc)
		}

		e.throttle.Tick()

		if !e.recording && e.sinceTrigger >= allowTriggerAt && e.throttle.Allow() && e.median.Emitted {
			e.evaluateTrigger(utc)
		}

		if !e.recording {
			e.bufNum = 1 - e.bufNum
		}
	}
}

// current returns the stack, max map and raw buffer for whichever of A
// or B is presently "current".
func (e *Engine) current() (*Stack, *MaxMap, []byte) {
	if e.bufNum == 0 {
		return e.bufA, e.maxA, e.rawA
	}
	return e.bufB, e.maxB, e.rawB
}

// previous returns the stack, max map and raw buffer for whichever of
// A or B is presently "previous".
func (e *Engine) previous() (*Stack, *MaxMap, []byte) {
	if e.bufNum == 0 {
		return e.bufB, e.maxB, e.rawB
	}
	return e.bufA, e.maxA, e.rawA
}

// startTimelapse seeds the timelapse stacker's first target at the
// next whole minute after warm-up, per the rewind-triggered contract.
func (e *Engine) startTimelapse(utc time.Time) {
	first := utc.Truncate(time.Minute).Add(time.Minute)
	e.timelapse = NewTimelapse(e.width, e.height, e.cfg.TimelapseExposure, e.cfg.TimelapseInterval, e.cfg.StackSeconds, first)
}

// rollNight renders the previous night's brightness trend and starts a
// fresh one whenever the observing night changes.
func (e *Engine) rollNight(utc time.Time) {
	night := nightDirName(utc)
	if e.night == "" {
		e.night = night
		e.trend = newNightlyTrend(night, utc)
		return
	}
	if night == e.night {
		return
	}
	path := filepath.Join(e.cfg.OutputPath, fmt.Sprintf("trend_%s", e.cfg.RunLabel), e.night+".png")
	if err := e.trend.render(path); err != nil {
		e.logWarning("could not render nightly trend", "error", err.Error())
	}
	e.night = night
	e.trend = newNightlyTrend(night, utc)
}

// advanceRecording folds one post-trigger stack interval into the
// in-progress event and, once the configured recording length has been
// reached, flushes the event's artefacts.
func (e *Engine) advanceRecording(stack *Stack, max *MaxMap) {
	if !e.recorder.Accumulate(stack, max) {
		return
	}

	_, _, prevRaw := e.previous()
	_, _, curRaw := e.current()

	if err := e.recorder.Flush(e.writer, e.median.Active(), e.cfg.StackGain, prevRaw, curRaw); err != nil {
		e.logWarning("could not flush event artefacts", "error", err.Error())
	}

	e.recording = false
	e.sinceTrigger = 0
}

// advanceTimelapse folds the current stack interval into the timelapse
// stacker and, when a window completes, writes its two artefacts.
func (e *Engine) advanceTimelapse(stack *Stack, utc time.Time) {
	result, done := e.timelapse.Tick(stack, utc)
	if !done {
		return
	}

	stub, err := e.gen.Generate(utc, "frame_", "timelapse_raw", e.cfg.RunLabel)
	if err != nil {
		e.logWarning("could not build timelapse filename", "error", err.Error())
		return
	}

	sums := result.stack.Sums()
	n := result.exposureStacks * e.framesPerStack

	if err := e.writer.DumpRGBFromSums(e.width, e.height, sums, n, e.cfg.StackGainNoBGSub, stub+"BS0.rgb"); err != nil {
		e.logWarning("could not write timelapse BS0 artefact", "error", err.Error())
	}
	if err := e.writer.DumpRGBFromSumsSub(e.width, e.height, sums, n, e.cfg.StackGainBGSub, e.median.Active().RGB(), stub+"BS1.rgb"); err != nil {
		e.logWarning("could not write timelapse BS1 artefact", "error", err.Error())
	}
}

// evaluateTrigger runs the motion trigger over the current and
// previous stacks and, on a positive result, writes the trigger-time
// artefact bundle and opens a new event recording.
func (e *Engine) evaluateTrigger(utc time.Time) {
	prevStack, prevMax, _ := e.previous()
	curStack, curMax, _ := e.current()

	result := e.trigger.Evaluate(prevStack, curStack, e.framesPerStack)

	stats := computeDiffStats(prevStack, curStack, e.width, e.height, e.cfg.MarginLeft, e.cfg.MarginRight, e.cfg.MarginTop, e.cfg.MarginBottom)
	e.logDebug("difference image statistics", "mean", stats.Mean, "stddev", stats.StdDev, "threshold", e.cfg.Threshold, "fired", result.Fired)

	for _, nf := range e.cvFilters {
		img := meanImageInterleaved(curStack, e.framesPerStack, e.width, e.height)
		count, err := nf.f.Count(img, e.width, e.height)
		if err != nil {
			e.logWarning("auxiliary CV filter failed", "filter", nf.name, "error", err.Error())
			continue
		}
		e.logInfo("auxiliary CV filter result", "filter", nf.name, "foreground_regions", count)
	}

	if !result.Fired {
		return
	}

	stub, err := e.gen.Generate(utc, "trigger", "triggers_raw", e.cfg.RunLabel)
	if err != nil {
		e.logWarning("could not build trigger filename", "error", err.Error())
		return
	}

	e.recorder.Begin(stub, curStack, curMax)
	if err := e.recorder.WriteTriggerArtefacts(e.writer, result.Diagnostic, e.median.Active(), e.cfg.StackGain, prevStack, prevMax, curStack, curMax, e.framesPerStack); err != nil {
		e.logWarning("could not write trigger artefacts", "error", err.Error())
	}

	e.throttle.RecordFire()
	e.recording = true
}

func (e *Engine) logInfo(msg string, kv ...interface{}) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Info(msg, kv...)
	}
}

func (e *Engine) logWarning(msg string, kv ...interface{}) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Warning(msg, kv...)
	}
}

func (e *Engine) logDebug(msg string, kv ...interface{}) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Debug(msg, kv...)
	}
}

// meanImageInterleaved renders a stack's per-pixel mean as an
// interleaved RGB byte image (R,G,B per pixel), the layout gocv's Mat
// constructor expects, unlike the planar layout ArtefactWriter uses.
func meanImageInterleaved(stack *Stack, n, width, height int) []byte {
	out := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		out[i*3+0] = clip256Int8(int(stack.R[i]) / n)
		out[i*3+1] = clip256Int8(int(stack.G[i]) / n)
		out[i*3+2] = clip256Int8(int(stack.B[i]) / n)
	}
	return out
}

func clip256Int8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
