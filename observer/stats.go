/*
DESCRIPTION
  stats.go computes per-interval diagnostic statistics over the
  trigger's difference image, giving an operator a quantitative sense
  of how close a night is running to the trigger threshold without
  altering trigger behaviour itself.

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

import "gonum.org/v1/gonum/stat"

// diffStats holds the mean and standard deviation of one stack
// interval's red-channel difference image (current minus previous).
type diffStats struct {
	Mean   float64
	StdDev float64
}

// computeDiffStats reports the mean and standard deviation of
// cur.R-prev.R over the margin box used by the trigger, reusing
// gonum/stat rather than hand-rolling a second-pass accumulator.
func computeDiffStats(prev, cur *Stack, width, height, marginL, marginR, marginT, marginB int) diffStats {
	n := (width - marginL - marginR) * (height - marginT - marginB)
	if n <= 0 {
		return diffStats{}
	}
	vals := make([]float64, 0, n)
	for y := marginT; y < height-marginB; y++ {
		for x := marginL; x < width-marginR; x++ {
			o := y*width + x
			vals = append(vals, float64(cur.R[o]-prev.R[o]))
		}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	return diffStats{Mean: mean, StdDev: std}
}
