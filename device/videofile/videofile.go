/*
DESCRIPTION
  videofile.go implements a recorded-file frame provider over a raw
  YUV420 file, in the style of the revid file device's mutex-guarded
  os.File wrapper, but exposing Rewind (a plain seek to the start)
  rather than file.AVFile's loop-on-EOF behaviour.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package videofile provides a frame provider over a recorded raw
// YUV420 video file.
package videofile

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// VideoFile is a FrameProvider over a raw YUV420 file on disk. Frame
// timestamps are synthesised from a fixed frame rate starting at
// Epoch, since a raw YUV420 file carries no timing information of its
// own.
type VideoFile struct {
	f           *os.File
	path        string
	rawFrameLen int
	frameRate   float64
	epoch       time.Time

	n  int // frames read since open or last rewind.
	mu sync.Mutex
}

// New returns a VideoFile ready to Start reading path.
func New(path string, width, height int, frameRate float64, epoch time.Time) *VideoFile {
	return &VideoFile{
		path:        path,
		rawFrameLen: width * height * 3 / 2,
		frameRate:   frameRate,
		epoch:       epoch,
	}
}

// Start opens the underlying file.
func (v *VideoFile) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	f, err := os.Open(v.path)
	if err != nil {
		return fmt.Errorf("could not open video file: %w", err)
	}
	v.f = f
	return nil
}

// Stop closes the underlying file.
func (v *VideoFile) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.f == nil {
		return nil
	}
	return v.f.Close()
}

// FetchFrame implements observer.FrameProvider, reading one raw
// YUV420 frame into dst. It returns io.EOF once the file is exhausted.
func (v *VideoFile) FetchFrame(dst []byte) (time.Time, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.f == nil {
		return time.Time{}, fmt.Errorf("video file not started")
	}

	buf := dst
	if buf == nil {
		buf = make([]byte, v.rawFrameLen)
	}
	if _, err := io.ReadFull(v.f, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return time.Time{}, err
	}

	t := v.frameTime(v.n)
	v.n++
	return t, nil
}

// Rewind implements observer.FrameProvider by seeking back to the
// start of the file.
func (v *VideoFile) Rewind() (time.Time, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.f.Seek(0, io.SeekStart); err != nil {
		return time.Time{}, fmt.Errorf("could not seek to start of video file: %w", err)
	}
	v.n = 0
	return v.frameTime(0), nil
}

func (v *VideoFile) frameTime(n int) time.Time {
	if v.frameRate <= 0 {
		return v.epoch
	}
	return v.epoch.Add(time.Duration(float64(n) / v.frameRate * float64(time.Second)))
}
