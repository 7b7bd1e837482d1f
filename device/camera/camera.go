/*
DESCRIPTION
  camera.go implements a live-camera frame provider by exec'ing an
  external raw-YUV420 capture command and reading its stdout, in the
  same style the revid raspivid device drives the raspivid binary as a
  subprocess and reads frames off its stdout pipe.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package camera provides a live frame provider that reads raw YUV420
// video from an external capture command's stdout.
package camera

import (
	"fmt"
	"io"
	"io/ioutil"
	"os/exec"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/skycam/observer"
)

// Camera is a FrameProvider backed by an external capture command
// (e.g. "raspivid --output - --raw" piped through a YUV extractor)
// whose stdout yields back-to-back raw YUV420 frames.
type Camera struct {
	width, height int
	rawFrameLen   int
	name          string
	args          []string
	log           logging.Logger

	cmd  *exec.Cmd
	out  io.ReadCloser
	done chan struct{}
}

// New returns a Camera that will run name with args and read
// width*height*3/2-byte raw YUV420 frames from its stdout.
func New(log logging.Logger, name string, args []string, width, height int) *Camera {
	return &Camera{
		width:       width,
		height:      height,
		rawFrameLen: width * height * 3 / 2,
		name:        name,
		args:        args,
		log:         log,
		done:        make(chan struct{}),
	}
}

// Start launches the capture command and begins piping its stdout.
func (c *Camera) Start() error {
	c.cmd = exec.Command(c.name, c.args...)

	var err error
	c.out, err = c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("could not pipe capture command output: %w", err)
	}

	stderr, err := c.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("could not pipe capture command error: %w", err)
	}

	go func() {
		for {
			select {
			case <-c.done:
				return
			default:
				buf, err := ioutil.ReadAll(stderr)
				if err != nil {
					c.log.Error("could not read capture command stderr", "error", err.Error())
					return
				}
				if len(buf) != 0 {
					c.log.Error("error from capture command stderr", "error", string(buf))
					return
				}
			}
		}
	}()

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("could not start capture command: %w", err)
	}
	return nil
}

// Stop terminates the capture command.
func (c *Camera) Stop() error {
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	close(c.done)
	if err := c.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("could not kill capture command: %w", err)
	}
	return c.out.Close()
}

// FetchFrame implements observer.FrameProvider by reading exactly one
// raw YUV420 frame from the capture command's stdout. The returned UTC
// is the time the read completed; the capture command gives no better
// timestamp than that.
func (c *Camera) FetchFrame(dst []byte) (time.Time, error) {
	buf := dst
	if buf == nil {
		buf = make([]byte, c.rawFrameLen)
	}
	if _, err := io.ReadFull(c.out, buf); err != nil {
		return time.Time{}, err
	}
	return time.Now().UTC(), nil
}

// Rewind always fails: a live camera has no stream to seek back to.
func (c *Camera) Rewind() (time.Time, error) {
	return time.Time{}, observer.ErrRewindUnsupported
}
