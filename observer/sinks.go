/*
DESCRIPTION
  sinks.go provides the artefact writers consumed by the engine: plain
  RGB dumps, background-subtracted RGB dumps, and raw YUV420 video
  dumps. Writers satisfy a common interface so tests can capture
  artefacts in memory instead of touching disk, following the pattern
  of pushing file I/O into small sink objects (see filter.Filter, an
  io.WriteCloser) rather than calling into the filesystem deep inside a
  processing loop.

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
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// isubOffset is the additive offset applied by DumpRGBFromSumsSub,
// matching the mid-grey offset the trigger's own diagnostic image uses
// for a signed difference (128 + delta*256/threshold); see trigger.go.
// The source leaves this offset implicit and the background-
// subtraction gain relationships under-specified, so this is a
// documented decision rather than a literal port.
const isubOffset = 128

// ArtefactWriter is the sink consumed by the engine for every output
// file kind it produces.
type ArtefactWriter interface {
	// DumpRGB writes a plain RGB frame (three w*h byte planes
	// concatenated R,G,B).
	DumpRGB(w, h int, rgb []byte, path string) error

	// DumpRGBFromSums writes clip(sums/n * gain) per byte, from three
	// w*h int32 sum planes.
	DumpRGBFromSums(w, h int, sums []int32, n int, gain float64, path string) error

	// DumpRGBFromSumsSub writes clip((sums/n - background)*gain + offset)
	// per byte.
	DumpRGBFromSumsSub(w, h int, sums []int32, n int, gain float64, background []byte, path string) error

	// DumpVideo concatenates pre, current and post YUV420 buffers (in
	// that time order). FileArtefactWriter prefixes them with a 3-int32
	// header (total size, width, height), matching the .vid layout;
	// MemoryArtefactWriter stores the concatenated payload only.
	DumpVideo(w, h int, pre, cur, post []byte, path string) error
}

func clipByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// FileArtefactWriter writes artefacts to the local filesystem.
type FileArtefactWriter struct{}

func (FileArtefactWriter) DumpRGB(w, h int, rgb []byte, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create RGB artefact")
	}
	defer f.Close()
	if _, err := f.Write(rgb); err != nil {
		return errors.Wrap(err, "could not write RGB artefact")
	}
	return nil
}

func (FileArtefactWriter) DumpRGBFromSums(w, h int, sums []int32, n int, gain float64, path string) error {
	buf := rgbFromSums(w, h, sums, n, gain)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create RGB-from-sums artefact")
	}
	defer f.Close()
	if _, err := f.Write(buf); err != nil {
		return errors.Wrap(err, "could not write RGB-from-sums artefact")
	}
	return nil
}

func (FileArtefactWriter) DumpRGBFromSumsSub(w, h int, sums []int32, n int, gain float64, background []byte, path string) error {
	buf := rgbFromSumsSub(w, h, sums, n, gain, background)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create background-subtracted artefact")
	}
	defer f.Close()
	if _, err := f.Write(buf); err != nil {
		return errors.Wrap(err, "could not write background-subtracted artefact")
	}
	return nil
}

func (FileArtefactWriter) DumpVideo(w, h int, pre, cur, post []byte, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create video artefact")
	}
	defer f.Close()

	total := int32(len(pre) + len(cur) + len(post))
	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], uint32(total))
	binary.LittleEndian.PutUint32(header[4:8], uint32(w))
	binary.LittleEndian.PutUint32(header[8:12], uint32(h))

	for _, b := range [][]byte{header, pre, cur, post} {
		if _, err := f.Write(b); err != nil {
			return errors.Wrap(err, "could not write video artefact")
		}
	}
	return nil
}

func rgbFromSums(w, h int, sums []int32, n int, gain float64) []byte {
	out := make([]byte, len(sums))
	for i, s := range sums {
		out[i] = clipByte(float64(s) / float64(n) * gain)
	}
	_ = w
	_ = h
	return out
}

func rgbFromSumsSub(w, h int, sums []int32, n int, gain float64, background []byte) []byte {
	out := make([]byte, len(sums))
	for i, s := range sums {
		v := (float64(s)/float64(n) - float64(background[i]))*gain + isubOffset
		out[i] = clipByte(v)
	}
	_ = w
	_ = h
	return out
}

// MemoryArtefactWriter captures artefacts in memory, keyed by path, so
// tests can assert on written content without touching disk.
type MemoryArtefactWriter struct {
	Files map[string][]byte
}

// NewMemoryArtefactWriter returns an initialised MemoryArtefactWriter.
func NewMemoryArtefactWriter() *MemoryArtefactWriter {
	return &MemoryArtefactWriter{Files: make(map[string][]byte)}
}

func (m *MemoryArtefactWriter) DumpRGB(w, h int, rgb []byte, path string) error {
	buf := make([]byte, len(rgb))
	copy(buf, rgb)
	m.Files[path] = buf
	return nil
}

func (m *MemoryArtefactWriter) DumpRGBFromSums(w, h int, sums []int32, n int, gain float64, path string) error {
	m.Files[path] = rgbFromSums(w, h, sums, n, gain)
	return nil
}

func (m *MemoryArtefactWriter) DumpRGBFromSumsSub(w, h int, sums []int32, n int, gain float64, background []byte, path string) error {
	m.Files[path] = rgbFromSumsSub(w, h, sums, n, gain, background)
	return nil
}

func (m *MemoryArtefactWriter) DumpVideo(w, h int, pre, cur, post []byte, path string) error {
	buf := make([]byte, 0, len(pre)+len(cur)+len(post))
	buf = append(buf, pre...)
	buf = append(buf, cur...)
	buf = append(buf, post...)
	m.Files[path] = buf
	return nil
}
