//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  cvaux_noop.go replaces cvaux.go's gocv-backed filters with a no-op
  when built without OpenCV available, matching the way the motion
  filters elsewhere in this codebase fall back for CI.

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

// CVFilter is an auxiliary background subtractor that reports how many
// foreground regions it finds in a mean RGB image. It is never wired
// into the trigger's fire decision.
type CVFilter interface {
	Count(img []byte, width, height int) (int, error)
	Close() error
}

// NewCVFilter always returns nil in builds without Open CV; callers
// skip the auxiliary pass entirely when it is nil.
func NewCVFilter(kind uint8, cfg config.Config) CVFilter {
	return nil
}
