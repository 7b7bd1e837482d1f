/*
DESCRIPTION
  stack_test.go tests the short-buffer stacker.

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

	"github.com/ausocean/skycam/colour"
)

func flatYUVFrame(width, height int, luma byte) []byte {
	frameSize := width * height
	buf := make([]byte, frameSize*3/2)
	for i := 0; i < frameSize; i++ {
		buf[i] = luma
	}
	for i := frameSize; i < len(buf); i++ {
		buf[i] = 128 // achromatic chroma.
	}
	return buf
}

type constProvider struct {
	frame []byte
	n     int
}

func (c *constProvider) FetchFrame(dst []byte) (time.Time, error) {
	copy(dst, c.frame)
	c.n++
	return time.Time{}, nil
}

func (c *constProvider) Rewind() (time.Time, error) { return time.Time{}, nil }

func TestStackAddAndSums(t *testing.T) {
	const w, h = 2, 2
	s := NewStack(w, h)
	s.AddRGB([]byte{10, 10, 10, 10}, []byte{20, 20, 20, 20}, []byte{30, 30, 30, 30})
	s.AddRGB([]byte{10, 10, 10, 10}, []byte{20, 20, 20, 20}, []byte{30, 30, 30, 30})

	for i, v := range s.R {
		if v != 20 {
			t.Errorf("R[%d] = %d, want 20", i, v)
		}
	}
	sums := s.Sums()
	if len(sums) != 3*w*h {
		t.Fatalf("Sums() length = %d, want %d", len(sums), 3*w*h)
	}
	if sums[0] != 20 || sums[w*h] != 40 || sums[2*w*h] != 60 {
		t.Errorf("Sums() planes not in R,G,B order: %v", sums)
	}
}

func TestStackReset(t *testing.T) {
	const w, h = 2, 2
	s := NewStack(w, h)
	s.AddRGB([]byte{1, 1, 1, 1}, []byte{2, 2, 2, 2}, []byte{3, 3, 3, 3})
	s.Reset()
	for i := range s.R {
		if s.R[i] != 0 || s.G[i] != 0 || s.B[i] != 0 {
			t.Fatalf("pixel %d not zeroed after Reset", i)
		}
	}
}

func TestMaxMapUpdateMax(t *testing.T) {
	const w, h = 2, 1
	m := NewMaxMap(w, h)
	m.UpdateMax([]byte{10, 200}, []byte{5, 5}, []byte{1, 1})
	m.UpdateMax([]byte{50, 100}, []byte{5, 5}, []byte{1, 1})

	if m.R[0] != 50 || m.R[1] != 200 {
		t.Errorf("R = %v, want [50 200]", m.R)
	}
}

func TestHistogramAdd(t *testing.T) {
	const w, h = 2, 1
	hist := NewHistogram(w, h)
	s := NewStack(w, h)
	s.R[0], s.R[1] = 100, 200
	s.G[0], s.G[1] = 0, 0
	s.B[0], s.B[1] = 0, 0

	hist.Add(s, 1)

	if hist.Counts[0][0*256+100] != 1 {
		t.Errorf("pixel 0 bin 100 count = %d, want 1", hist.Counts[0][0*256+100])
	}
	if hist.Counts[0][1*256+200] != 1 {
		t.Errorf("pixel 1 bin 200 count = %d, want 1", hist.Counts[0][1*256+200])
	}
}

func TestReadShortBuffer(t *testing.T) {
	const w, h, n = 4, 2, 3
	conv := colour.NewConverter()
	provider := &constProvider{frame: flatYUVFrame(w, h, 64)}

	stack := NewStack(w, h)
	maxMap := NewMaxMap(w, h)
	rawBuf := make([]byte, n*w*h*3/2)

	_, err := ReadShortBuffer(provider, conv, n, w, h, rawBuf, stack, nil, maxMap, nil)
	if err != nil {
		t.Fatalf("ReadShortBuffer: %v", err)
	}

	for i, v := range stack.R {
		if v != int32(n)*64 {
			t.Fatalf("R[%d] = %d, want %d", i, v, int32(n)*64)
		}
	}
	for i, v := range maxMap.R {
		if v != 64 {
			t.Fatalf("maxMap.R[%d] = %d, want 64", i, v)
		}
	}
	if provider.n != n {
		t.Errorf("provider read %d frames, want %d", provider.n, n)
	}
}

func BenchmarkShortBuffer(b *testing.B) {
	const w, h, n = 640, 480, 25
	conv := colour.NewConverter()
	provider := &constProvider{frame: flatYUVFrame(w, h, 64)}

	stack := NewStack(w, h)
	maxMap := NewMaxMap(w, h)
	rawBuf := make([]byte, n*w*h*3/2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadShortBuffer(provider, conv, n, w, h, rawBuf, stack, nil, maxMap, nil); err != nil {
			b.Fatalf("ReadShortBuffer: %v", err)
		}
	}
}
