//go:build withcv
// +build withcv

/*
DESCRIPTION
  cvaux.go runs an auxiliary, diagnostic-only background subtractor
  over the mean RGB image of each stack interval, independently of the
  trigger in trigger.go. It never suppresses or forces a trigger
  decision; its count of foreground regions is logged on each trigger
  evaluation so an operator can compare the two detectors on the same
  night's data.

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
	"image"

	"gocv.io/x/gocv"

	"github.com/ausocean/skycam/observer/config"
)

const (
	cvauxHistory   = 500
	cvauxThreshold = 20.0
	cvauxKernel    = 3
	cvauxMinArea   = 25.0
)

// CVFilter is an auxiliary background subtractor that reports how many
// foreground regions it finds in a mean RGB image. It is never wired
// into the trigger's fire decision.
type CVFilter interface {
	// Count returns the number of foreground contours with an area
	// above cvauxMinArea that gocv's contour detector finds after
	// background-subtracting img (width x height, 3 bytes per pixel,
	// RGB order).
	Count(img []byte, width, height int) (int, error)
	Close() error
}

// NewCVFilter returns the CVFilter named by kind (config.FilterMOG or
// config.FilterKNN), or nil for config.FilterNoOp.
func NewCVFilter(kind uint8, cfg config.Config) CVFilter {
	knl := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(cvauxKernel, cvauxKernel))
	switch kind {
	case config.FilterMOG:
		bs := gocv.NewBackgroundSubtractorMOG2WithParams(cvauxHistory, cvauxThreshold, false)
		return &bgSubFilter{bs: bgSubtractor{mog: &bs}, knl: knl}
	case config.FilterKNN:
		bs := gocv.NewBackgroundSubtractorKNNWithParams(cvauxHistory, cvauxThreshold, false)
		return &bgSubFilter{bs: bgSubtractor{knn: &bs}, knl: knl}
	default:
		knl.Close()
		return nil
	}
}

// bgSubtractor wraps whichever of gocv's two background subtractor
// types is in use, since they don't share a common Apply interface.
type bgSubtractor struct {
	mog *gocv.BackgroundSubtractorMOG2
	knn *gocv.BackgroundSubtractorKNN
}

func (b *bgSubtractor) apply(src gocv.Mat, dst *gocv.Mat) {
	if b.mog != nil {
		b.mog.Apply(src, dst)
		return
	}
	b.knn.Apply(src, dst)
}

func (b *bgSubtractor) close() {
	if b.mog != nil {
		b.mog.Close()
		return
	}
	b.knn.Close()
}

// bgSubFilter implements CVFilter on top of a bgSubtractor, matching
// the noise-removal and hole-filling steps used for the live motion
// filters this engine's auxiliary detector is modelled on.
type bgSubFilter struct {
	bs  bgSubtractor
	knl gocv.Mat
}

func (f *bgSubFilter) Count(img []byte, width, height int) (int, error) {
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, img)
	if err != nil {
		return 0, err
	}
	defer mat.Close()

	fg := gocv.NewMat()
	defer fg.Close()

	f.bs.apply(mat, &fg)
	gocv.Threshold(fg, &fg, 25, 255, gocv.ThresholdBinary)
	gocv.Erode(fg, &fg, f.knl)
	gocv.Dilate(fg, &fg, f.knl)
	gocv.Dilate(fg, &fg, f.knl)
	gocv.Erode(fg, &fg, f.knl)

	contours := gocv.FindContours(fg, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	count := 0
	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) > cvauxMinArea {
			count++
		}
	}
	return count, nil
}

func (f *bgSubFilter) Close() error {
	f.bs.close()
	f.knl.Close()
	return nil
}
