/*
DESCRIPTION
  median.go implements the median-map (background) estimator: a running
  histogram sampled once every M stack intervals, collapsed into a new
  per-pixel median map every 255*M intervals and swapped into place
  behind an atomic pointer so readers never observe a partially built
  map.

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

import "sync/atomic"

// samplesPerCycle is the number of accepted histogram samples between
// median map emissions.
const samplesPerCycle = 255

// MedianMap is the current per-pixel background estimate ("median
// map"/"background map").
type MedianMap struct {
	R, G, B []byte
}

func newMedianMap(width, height int) *MedianMap {
	n := width * height
	return &MedianMap{R: make([]byte, n), G: make([]byte, n), B: make([]byte, n)}
}

// RGB returns the median map's three planes concatenated R,G,B, the
// layout DumpRGBFromSumsSub expects for its background argument.
func (m *MedianMap) RGB() []byte {
	out := make([]byte, 0, len(m.R)+len(m.G)+len(m.B))
	out = append(out, m.R...)
	out = append(out, m.G...)
	out = append(out, m.B...)
	return out
}

// MedianEstimator maintains the rolling per-pixel background estimate.
type MedianEstimator struct {
	width, height int
	sampleEvery   uint // M: sample the histogram every Nth stack interval.
	percentile    float64

	hist *Histogram

	active   atomic.Pointer[MedianMap]
	building *MedianMap

	tick    uint // stack intervals seen since construction.
	samples int  // accepted histogram samples in the current cycle.

	// Emitted is true once at least one median map has been computed;
	// the trigger must stay disabled until this is true.
	Emitted bool
}

// NewMedianEstimator returns an Estimator with an empty (all-zero)
// initial median map; Emitted is false until the first full cycle
// completes.
func NewMedianEstimator(width, height int, sampleEvery uint) *MedianEstimator {
	e := &MedianEstimator{
		width:       width,
		height:      height,
		sampleEvery: sampleEvery,
		percentile:  0.5, // the source uses the median.
		hist:        NewHistogram(width, height),
		building:    newMedianMap(width, height),
	}
	e.active.Store(newMedianMap(width, height))
	return e
}

// Active returns the median map readers should use. It is always
// fully formed.
func (e *MedianEstimator) Active() *MedianMap {
	return e.active.Load()
}

// Tick folds one stack interval into the estimator's histogram (if
// this is a sampled interval per sampleEvery) and, once a full cycle
// of samplesPerCycle samples has been absorbed, computes a new median
// map and swaps it into place. It reports whether a new map was
// emitted this tick.
func (e *MedianEstimator) Tick(stack *Stack, framesPerStack int) bool {
	e.tick++
	if e.tick%uint(e.sampleEvery) != 0 {
		return false
	}

	e.hist.Add(stack, framesPerStack)
	e.samples++
	if e.samples < samplesPerCycle {
		return false
	}

	e.compute()
	e.active.Store(e.building)
	e.building = newMedianMap(e.width, e.height)
	e.hist.Reset()
	e.samples = 0
	e.Emitted = true
	return true
}

// compute fills e.building with, per pixel and channel, the smallest
// bin index at which the cumulative histogram count reaches the
// configured percentile of the total sample count.
func (e *MedianEstimator) compute() {
	planes := [3][]byte{e.building.R, e.building.G, e.building.B}
	for c := 0; c < 3; c++ {
		counts := e.hist.Counts[c]
		out := planes[c]
		n := e.width * e.height
		for p := 0; p < n; p++ {
			base := p * 256
			var total uint32
			for b := 0; b < 256; b++ {
				total += uint32(counts[base+b])
			}
			target := uint32(float64(total) * e.percentile)
			if target == 0 && total > 0 {
				target = 1
			}
			var cum uint32
			bin := 255
			for b := 0; b < 256; b++ {
				cum += uint32(counts[base+b])
				if cum >= target {
					bin = b
					break
				}
			}
			out[p] = byte(bin)
		}
	}
}
