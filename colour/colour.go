/*
DESCRIPTION
  colour.go converts planar YUV420 video frames, as produced by the
  camera and file frame providers, into parallel 8-bit R/G/B planes for
  the observation engine's stackers.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package colour provides YUV420 planar to RGB planar colour space
// conversion, using fixed-point lookup tables rather than floating point
// arithmetic, matching the conversion used by the original gazing camera
// tooling this engine was modelled on.
package colour

// coefficients used to build the lookup tables, scaled by 1000 to avoid
// floating point division per pixel.
const (
	vrCoef = 711
	ubCoef = 560
	rvCoef = 1402
	guCoef = 714
	gvCoef = 344
	buCoef = 1772
)

// Converter holds the fixed-point lookup tables used to convert a YUV420
// pixel to RGB. A Converter is immutable once built and may be shared
// freely between goroutines.
type Converter struct {
	rv [256]int32
	gu [256]int32
	gv [256]int32
	bu [256]int32
}

// NewConverter builds the lookup tables once. The resulting Converter is
// safe for concurrent use and should be constructed once per engine
// lifetime and discarded on shutdown.
func NewConverter() *Converter {
	var c Converter
	for i := 0; i < 256; i++ {
		c.rv[i] = int32((i - 128) * rvCoef / 1000)
		c.bu[i] = int32((i - 128) * buCoef / 1000)
		c.gu[i] = int32((128 - i) * guCoef / 1000)
		c.gv[i] = int32((128 - i) * gvCoef / 1000)
	}
	return &c
}

func clip256(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Frame converts one planar YUV420 frame (y, u and v are the standard
// I420 planes, with u and v subsampled 2x2 relative to y) into three
// parallel RGB planes of width*height bytes each. dstR, dstG and dstB
// must already be sized width*height.
func (c *Converter) Frame(y, u, v []byte, width, height int, dstR, dstG, dstB []byte) {
	cw := width / 2
	for row := 0; row < height; row++ {
		uvRow := (row / 2) * cw
		yRow := row * width
		for col := 0; col < width; col++ {
			yv := int32(y[yRow+col])
			uv := u[uvRow+col/2]
			vv := v[uvRow+col/2]

			o := yRow + col
			dstR[o] = clip256(yv + c.rv[vv])
			dstG[o] = clip256(yv + c.gu[uv] + c.gv[vv])
			dstB[o] = clip256(yv + c.bu[uv])
		}
	}
}
