/*
DESCRIPTION
  provider.go defines the frame provider capability interface consumed
  by the engine, plus a synthetic, in-memory implementation used by the
  engine's own test suite.

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
	"errors"
	"io"
	"time"
)

// ErrRewindUnsupported is returned by a FrameProvider's Rewind method
// when the provider cannot seek back to the start of its stream (for
// example, a live camera).
var ErrRewindUnsupported = errors.New("observer: rewind not supported")

// FrameProvider is the capability object consumed by the engine in
// place of the source's opaque handle plus function-pointer pair: a
// live camera, a recorded file decoder, or a synthetic test source.
type FrameProvider interface {
	// FetchFrame reads one raw YUV420 frame into dst (length
	// width*height*3/2) and returns its capture UTC. If dst is nil,
	// the provider still advances one frame without copying it
	// anywhere. FetchFrame returns io.EOF when the stream has ended.
	FetchFrame(dst []byte) (time.Time, error)

	// Rewind seeks the provider back to the start of its stream and
	// returns the UTC of the frame that will be read next. Providers
	// that cannot rewind (live cameras) return ErrRewindUnsupported.
	Rewind() (time.Time, error)
}

// SyntheticProvider is a FrameProvider whose frames are generated by a
// callback, used by tests to build deterministic scenarios (flat
// fields, injected bright clusters, flicker patterns) without any
// hardware or file dependency.
type SyntheticProvider struct {
	Width, Height int

	// FrameRate is used to compute each frame's synthetic timestamp.
	FrameRate float64

	// Gen returns the nth (0-indexed) raw YUV420 frame, or nil once
	// the synthetic stream is exhausted.
	Gen func(n int) []byte

	// Epoch is the UTC of frame 0. Successive frames are spaced by
	// 1/FrameRate.
	Epoch time.Time

	// Rewound counts how many times Rewind has been called, so tests
	// can assert on an "exactly one rewind call" property.
	Rewound int

	n int
}

// FetchFrame implements FrameProvider.
func (s *SyntheticProvider) FetchFrame(dst []byte) (time.Time, error) {
	f := s.Gen(s.n)
	if f == nil {
		return time.Time{}, io.EOF
	}
	if dst != nil {
		copy(dst, f)
	}
	t := s.frameTime(s.n)
	s.n++
	return t, nil
}

// Rewind implements FrameProvider; the synthetic provider always
// supports it, matching the recorded-file case.
func (s *SyntheticProvider) Rewind() (time.Time, error) {
	s.Rewound++
	s.n = 0
	return s.frameTime(0), nil
}

func (s *SyntheticProvider) frameTime(n int) time.Time {
	if s.FrameRate <= 0 {
		return s.Epoch
	}
	return s.Epoch.Add(time.Duration(float64(n) / s.FrameRate * float64(time.Second)))
}
