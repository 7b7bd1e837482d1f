/*
DESCRIPTION
  stack.go implements the short-buffer stacker: reading one stack
  interval's worth of frames from a FrameProvider, summing
  them channel-wise into 32-bit sum stacks, tracking a per-pixel max
  map, and optionally feeding a median histogram workspace.

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
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/skycam/colour"
)

// Stack is a per-pixel, per-channel sum over some number of 8-bit
// frames ("short stack" / "long stack" / "timelapse stack").
type Stack struct {
	R, G, B []int32
}

// NewStack allocates a zeroed Stack for a width*height frame.
func NewStack(width, height int) *Stack {
	n := width * height
	return &Stack{R: make([]int32, n), G: make([]int32, n), B: make([]int32, n)}
}

// Reset zeroes every pixel of the stack.
func (s *Stack) Reset() {
	for i := range s.R {
		s.R[i] = 0
		s.G[i] = 0
		s.B[i] = 0
	}
}

// AddRGB adds an 8-bit RGB frame's channel values into the stack.
func (s *Stack) AddRGB(r, g, b []byte) {
	for i := range r {
		s.R[i] += int32(r[i])
		s.G[i] += int32(g[i])
		s.B[i] += int32(b[i])
	}
}

// AddStack adds another stack's values into this one, pixel for pixel
// (used to accumulate the long/timelapse stacks across many short
// stacks).
func (s *Stack) AddStack(o *Stack) {
	for i := range s.R {
		s.R[i] += o.R[i]
		s.G[i] += o.G[i]
		s.B[i] += o.B[i]
	}
}

// CopyFrom overwrites this stack with o's values.
func (s *Stack) CopyFrom(o *Stack) {
	copy(s.R, o.R)
	copy(s.G, o.G)
	copy(s.B, o.B)
}

// Sums returns the stack's three planes concatenated R,G,B, the layout
// ArtefactWriter.DumpRGBFromSums and DumpRGBFromSumsSub expect.
func (s *Stack) Sums() []int32 {
	out := make([]int32, 0, len(s.R)+len(s.G)+len(s.B))
	out = append(out, s.R...)
	out = append(out, s.G...)
	out = append(out, s.B...)
	return out
}

// MaxMap is a per-pixel, per-channel maximum of 8-bit frame values
// observed over a stack interval.
type MaxMap struct {
	R, G, B []byte
}

// NewMaxMap allocates a zeroed MaxMap for a width*height frame.
func NewMaxMap(width, height int) *MaxMap {
	n := width * height
	return &MaxMap{R: make([]byte, n), G: make([]byte, n), B: make([]byte, n)}
}

// Reset zeroes every pixel of the max map.
func (m *MaxMap) Reset() {
	for i := range m.R {
		m.R[i] = 0
		m.G[i] = 0
		m.B[i] = 0
	}
}

// UpdateMax sets each plane's pixel to the greater of its current value
// and the corresponding value in the given RGB frame.
func (m *MaxMap) UpdateMax(r, g, b []byte) {
	for i := range r {
		if r[i] > m.R[i] {
			m.R[i] = r[i]
		}
		if g[i] > m.G[i] {
			m.G[i] = g[i]
		}
		if b[i] > m.B[i] {
			m.B[i] = b[i]
		}
	}
}

// UpdateMaxFrom sets each plane's pixel to the greater of its current
// value and the corresponding value in another MaxMap (used by the
// event recorder to fold per-interval max maps into the event's max
// map across the recording window).
func (m *MaxMap) UpdateMaxFrom(o *MaxMap) {
	m.UpdateMax(o.R, o.G, o.B)
}

// RGB returns the max map's three planes concatenated R,G,B, the
// layout ArtefactWriter.DumpRGB expects.
func (m *MaxMap) RGB() []byte {
	out := make([]byte, 0, len(m.R)+len(m.G)+len(m.B))
	out = append(out, m.R...)
	out = append(out, m.G...)
	out = append(out, m.B...)
	return out
}

// Histogram is the median workspace: one 256-bin count array per
// pixel, per channel, incremented once per "sampled" stack interval
// using the mean value of that interval.
type Histogram struct {
	// Counts[c][p*256+b] is the count for channel c, pixel p, bin b.
	Counts [3][]uint16
	width  int
	height int
}

// NewHistogram allocates a zeroed Histogram for a width*height frame.
func NewHistogram(width, height int) *Histogram {
	n := width * height * 256
	h := &Histogram{width: width, height: height}
	for c := range h.Counts {
		h.Counts[c] = make([]uint16, n)
	}
	return h
}

// Reset zeroes every bin.
func (h *Histogram) Reset() {
	for c := range h.Counts {
		for i := range h.Counts[c] {
			h.Counts[c][i] = 0
		}
	}
}

// Add increments, for every pixel, the histogram bin corresponding to
// that pixel's mean value over the stack (rounded to 8 bits). Each
// channel is processed independently so the increments for different
// channels may run concurrently; within one channel, increments are
// serial, since distinct pixels never share a bin index.
func (h *Histogram) Add(s *Stack, n int) {
	var wg sync.WaitGroup
	planes := [3][]int32{s.R, s.G, s.B}
	for c := 0; c < 3; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			plane := planes[c]
			counts := h.Counts[c]
			for p, sum := range plane {
				v := clip256Int(int(sum) / n)
				counts[p*256+v]++
			}
		}(c)
	}
	wg.Wait()
}

func clip256Int(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ReadShortBuffer reads exactly n frames (one stack interval) from p,
// writing their raw YUV420 bytes into rawBuf (capacity
// n*width*height*3/2), accumulating their RGB values into stack
// (cleared first) and, if non-nil, into extra (not cleared),
// maintaining maxMap (cleared first), and, if hist is non-nil, folding
// the interval's per-pixel mean into the median histogram.
//
// On success, it returns the UTC of the last frame read. On failure to
// fetch any frame it returns the error from the provider and leaves
// the buffers in a not-further-mutated but otherwise undefined state.
func ReadShortBuffer(
	p FrameProvider,
	conv *colour.Converter,
	n, width, height int,
	rawBuf []byte,
	stack *Stack,
	extra *Stack,
	maxMap *MaxMap,
	hist *Histogram,
) (time.Time, error) {
	frameSize := width * height
	rawFrameLen := frameSize * 3 / 2

	stack.Reset()
	maxMap.Reset()

	r := make([]byte, frameSize)
	g := make([]byte, frameSize)
	b := make([]byte, frameSize)

	var last time.Time
	for i := 0; i < n; i++ {
		dst := rawBuf[i*rawFrameLen : (i+1)*rawFrameLen]
		t, err := p.FetchFrame(dst)
		if err != nil {
			return last, errors.Wrap(err, "could not fetch frame")
		}
		last = t

		y := dst[:frameSize]
		u := dst[frameSize : frameSize+frameSize/4]
		v := dst[frameSize+frameSize/4 : frameSize+frameSize/2]
		conv.Frame(y, u, v, width, height, r, g, b)

		stack.AddRGB(r, g, b)
		if extra != nil {
			extra.AddRGB(r, g, b)
		}
		maxMap.UpdateMax(r, g, b)
	}

	if hist != nil {
		hist.Add(stack, n)
	}

	return last, nil
}
