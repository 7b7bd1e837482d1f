/*
DESCRIPTION
  trigger.go implements the differential motion trigger: pixels that
  have brightened by at least a threshold, with local spatial support
  from a 3x3 neighbourhood probe, connected into components via a
  disjoint-set structure. A component that crosses the configured
  pixel count fires a trigger.

  The source's original component-merge step rewrites the label map
  directly (quadratic in pathological inputs); this substitutes a
  proper disjoint-set structure instead, keeping the observable emit
  (first label to cross the threshold, diagnostic RGB) unchanged.

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

import "github.com/ausocean/skycam/observer/config"

// disjointSet is a union-find structure over component labels, used in
// place of the source's map-rewrite merge.
type disjointSet struct {
	parent []int32
	size   []int32
	next   int32
}

func newDisjointSet(maxLabels int) *disjointSet {
	return &disjointSet{
		parent: make([]int32, maxLabels+1),
		size:   make([]int32, maxLabels+1),
	}
}

func (d *disjointSet) newLabel() int32 {
	d.next++
	d.parent[d.next] = d.next
	return d.next
}

func (d *disjointSet) find(x int32) int32 {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]] // path halving.
		x = d.parent[x]
	}
	return x
}

// union merges the components containing a and b (by size) and
// returns the resulting root.
func (d *disjointSet) union(a, b int32) int32 {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return ra
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	return ra
}

// Trigger evaluates consecutive stack intervals for meteor-like
// clusters of brightened pixels.
type Trigger struct {
	width, height int
	cfg           config.Config
}

// NewTrigger returns a Trigger configured with the tunables in cfg:
// margins, minimum pixel count, probe radius, brightness threshold.
func NewTrigger(width, height int, cfg config.Config) *Trigger {
	return &Trigger{width: width, height: height, cfg: cfg}
}

// Result is the outcome of one Trigger.Evaluate call.
type Result struct {
	Fired bool

	// Diagnostic is a width*height*3 RGB image: red encodes the signed
	// brightness difference, green the current brightness, and blue is
	// 128 for every pixel that passed the threshold and probe tests and
	// 255 for each such pixel added once its component's count exceeded
	// the minimum pixel count.
	Diagnostic []byte
}

// Evaluate compares the current stack to the previous stack (both
// summed over framesPerStack frames) and reports whether a component
// of brightened, spatially-supported pixels crosses the configured
// minimum pixel count. At most one trigger is reported per call:
// further growth of the same cluster does not re-trigger, though once
// a component crosses the threshold every
// further pixel belonging to it is still marked in the diagnostic
// image.
func (t *Trigger) Evaluate(prev, cur *Stack, framesPerStack int) Result {
	w, h := t.width, t.height
	thresh := int32(t.cfg.Threshold) * int32(framesPerStack)

	diag := make([]byte, w*h*3)
	diagR, diagG, diagB := diag[:w*h], diag[w*h:2*w*h], diag[2*w*h:3*w*h]

	labels := make([]int32, w*h)
	uf := newDisjointSet(w * h)

	radius := t.cfg.ProbeRadius
	fired := false

	for y := t.cfg.MarginTop; y < h-t.cfg.MarginBottom; y++ {
		for x := t.cfg.MarginLeft; x < w-t.cfg.MarginRight; x++ {
			o := y*w + x
			delta := cur.R[o] - prev.R[o]

			diagR[o] = clip256Byte(128 + delta*256/thresh)
			diagG[o] = clip256Byte(cur.R[o] / int32(framesPerStack))

			if delta <= thresh {
				continue
			}

			passA, okA := probeCount(cur.R, prev.R, w, h, x, y, radius, thresh)
			if !okA || passA <= 7 {
				continue
			}
			passB, okB := probeCount(cur.R, cur.R, w, h, x, y, radius, thresh)
			if !okB || passB <= 6 {
				continue
			}

			diagB[o] = 128

			var blockID int32
			for _, n := range neighbours(o, w) {
				if n < 0 || labels[n] == 0 {
					continue
				}
				lbl := uf.find(labels[n])
				if blockID == 0 {
					blockID = lbl
				} else if lbl != blockID {
					blockID = uf.union(blockID, lbl)
				}
			}
			if blockID == 0 {
				blockID = uf.newLabel()
			}
			blockID = uf.find(blockID)
			uf.size[blockID]++
			labels[o] = blockID

			if uf.size[blockID] > int32(t.cfg.MinPixels) {
				diagB[o] = 255
				fired = true
			}
		}
	}

	return Result{Fired: fired, Diagnostic: diag}
}

// neighbours returns the raster-order predecessors considered for
// connectivity: left, up-left, up, up-right.
func neighbours(o, w int) [4]int {
	return [4]int{o - 1, o - 1 - w, o - w, o + 1 - w}
}

// probeCount counts how many of the nine pixels on a 3x3 grid spaced
// radius pixels apart, centred on (x,y), satisfy a[o]-b[probe] >
// thresh. It reports false if any probe point would fall outside the
// image: pixels that would need an out-of-bounds probe are skipped,
// not triggered.
func probeCount(a, b []int32, w, h, x, y, radius int, thresh int32) (count int, ok bool) {
	o := y*w + x
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			px, py := x+j*radius, y+i*radius
			if px < 0 || px >= w || py < 0 || py >= h {
				return 0, false
			}
			po := py*w + px
			if a[o]-b[po] > thresh {
				count++
			}
		}
	}
	return count, true
}

func clip256Byte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
