/*
DESCRIPTION
  camera_test.go tests the live-camera frame provider against a stand-in
  capture command, since no real camera hardware is available to tests.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package camera

import (
	"bytes"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/skycam/observer"
)

func TestFetchFrameReadsExactlyOneFrame(t *testing.T) {
	const width, height = 4, 4
	rawFrameLen := width * height * 3 / 2

	log := logging.New(logging.Debug, &bytes.Buffer{}, true)
	// head -c emits exactly one frame's worth of zero bytes then exits,
	// standing in for a capture command that has produced one frame.
	c := New(log, "head", []string{"-c", "24", "/dev/zero"}, width, height)
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()

	buf := make([]byte, rawFrameLen)
	if _, err := c.FetchFrame(buf); err != nil {
		t.Fatalf("FetchFrame: %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}

	// The stand-in command has no more output; the next read must fail.
	if _, err := c.FetchFrame(buf); err == nil {
		t.Fatal("expected an error reading past the capture command's output")
	}
}

func TestRewindUnsupported(t *testing.T) {
	log := logging.New(logging.Debug, &bytes.Buffer{}, true)
	c := New(log, "head", []string{"-c", "0", "/dev/zero"}, 4, 4)
	if _, err := c.Rewind(); err != observer.ErrRewindUnsupported {
		t.Fatalf("Rewind error = %v, want %v", err, observer.ErrRewindUnsupported)
	}
}
