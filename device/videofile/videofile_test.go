/*
DESCRIPTION
  videofile_test.go tests the recorded-file frame provider.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package videofile

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	testWidth  = 4
	testHeight = 2
)

func rawFrameLen() int { return testWidth * testHeight * 3 / 2 }

func writeFrames(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "frames.yuv")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create test file: %v", err)
	}
	defer f.Close()

	frame := make([]byte, rawFrameLen())
	for i := 0; i < n; i++ {
		for j := range frame {
			frame[j] = byte(i)
		}
		if _, err := f.Write(frame); err != nil {
			t.Fatalf("could not write test frame: %v", err)
		}
	}
	return path
}

func TestFetchFrame(t *testing.T) {
	path := writeFrames(t, 3)
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	vf := New(path, testWidth, testHeight, 10, epoch)
	if err := vf.Start(); err != nil {
		t.Fatalf("could not start video file: %v", err)
	}
	defer vf.Stop()

	dst := make([]byte, rawFrameLen())
	for i := 0; i < 3; i++ {
		ts, err := vf.FetchFrame(dst)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if dst[0] != byte(i) {
			t.Errorf("frame %d: got first byte %d, want %d", i, dst[0], i)
		}
		want := epoch.Add(time.Duration(i) * 100 * time.Millisecond)
		if !ts.Equal(want) {
			t.Errorf("frame %d: got timestamp %v, want %v", i, ts, want)
		}
	}

	if _, err := vf.FetchFrame(dst); err != io.EOF {
		t.Fatalf("got error %v after exhausting file, want io.EOF", err)
	}
}

func TestRewind(t *testing.T) {
	path := writeFrames(t, 2)
	vf := New(path, testWidth, testHeight, 10, time.Time{})
	if err := vf.Start(); err != nil {
		t.Fatalf("could not start video file: %v", err)
	}
	defer vf.Stop()

	dst := make([]byte, rawFrameLen())
	if _, err := vf.FetchFrame(dst); err != nil {
		t.Fatalf("could not fetch first frame: %v", err)
	}
	if _, err := vf.FetchFrame(dst); err != nil {
		t.Fatalf("could not fetch second frame: %v", err)
	}

	if _, err := vf.Rewind(); err != nil {
		t.Fatalf("could not rewind: %v", err)
	}

	if _, err := vf.FetchFrame(dst); err != nil {
		t.Fatalf("could not fetch frame after rewind: %v", err)
	}
	if dst[0] != 0 {
		t.Errorf("after rewind, got first byte %d, want 0", dst[0])
	}
}
