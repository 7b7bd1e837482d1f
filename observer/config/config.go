/*
DESCRIPTION
  config.go contains the configuration settings for the observation
  engine, in the style of revid's config package: a flat Config struct
  with defaults applied and validated through a Variables table (see
  variables.go), rather than scattered magic numbers.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the skycam
// observation engine.
package config

import (
	"time"

	"github.com/ausocean/utils/logging"
)

// Enums for frame provider selection.
const (
	NothingDefined = iota
	InputCamera
	InputVideoFile
	InputSynthetic
)

// The different auxiliary CV pre-filters (diagnostic only; they never
// affect the trigger's fire decision). These reuse the same enum space
// revid's own config package uses for its Filters field.
const (
	FilterNoOp = iota
	FilterMOG
	FilterKNN
)

// Config provides parameters relevant to a running observation engine.
// A new Config must be passed through Validate before use; Validate
// fills in zero-valued fields with the fixed defaults in variables.go.
// There are no named detector profiles; Logger, LogLevel, Input,
// InputPath and Filters have no default and are left as given.
type Config struct {
	// Logger holds an implementation of the logging.Logger interface.
	// This must be set for the engine to work correctly.
	Logger logging.Logger

	// LogLevel is the engine's logging verbosity level. Valid values
	// are the enums from the logging package: logging.Debug, logging.Info,
	// logging.Warning, logging.Error, logging.Fatal.
	LogLevel int8

	// RunLabel tags every output path so that concurrent engine
	// instances do not collide (see FileNameGenerator).
	RunLabel string

	// OutputPath is the root of the output directory tree.
	OutputPath string

	// Input selects the frame provider. Valid values are InputCamera,
	// InputVideoFile or InputSynthetic.
	Input uint8

	// InputPath is the source video file for InputVideoFile.
	InputPath string

	Width     uint // Frame width in pixels.
	Height    uint // Frame height in pixels.
	FrameRate uint // Requested frames per second from the frame provider.

	// StackSeconds is the duration, in seconds, of one stack interval
	// (a "short stack"). The source calls this TRIGGER_COMPARELEN.
	StackSeconds float64

	// RecordSeconds is the duration, in seconds, of video recorded
	// after a trigger fires (TRIGGER_RECORDLEN in the source).
	RecordSeconds float64

	// TimelapseExposure is the duration, in seconds, stacked into each
	// timelapse frame (TIMELAPSE_EXPOSURE in the source). Must be a
	// multiple of StackSeconds.
	TimelapseExposure time.Duration

	// TimelapseInterval is the wall-clock cadence between successive
	// timelapse target times (TIMELAPSE_INTERVAL in the source). Must
	// be a multiple of StackSeconds.
	TimelapseInterval time.Duration

	// MedianSampleEvery is the number of stack intervals between
	// samples fed to the median histogram (medianMapUseEveryNthStack
	// in the source, "M" for short).
	MedianSampleEvery uint

	// Trigger tunables. Load bearing; see DESIGN.md for the rationale
	// behind the defaults, which are preserved from the source
	// unchanged.
	MarginLeft   int
	MarginRight  int
	MarginTop    int
	MarginBottom int
	MinPixels    int // P.
	ProbeRadius  int // R.
	Threshold    int // Per-frame brightness threshold, tau.

	// Throttle bounds the number of triggers fired within a sliding
	// window. ThrottlePeriod is T (minutes), ThrottleMax is E.
	ThrottlePeriod time.Duration
	ThrottleMax    int

	// Stack gain constants. The relationship between these three is
	// under-specified in the source; they are kept as independent
	// knobs rather than guessed at.
	StackGain             float64 // STACK_GAIN.
	StackGainNoBGSub      float64 // STACK_GAIN_NOBGSUB.
	StackGainBGSub        float64 // STACK_GAIN_BGSUB.
	StackTargetBrightness float64 // STACK_TARGET_BRIGHTNESS.

	// Filters lists the auxiliary CV pre-filters to run for diagnostic
	// cross-checking alongside the trigger. Empty means none are run.
	Filters []uint8
}

// LogInvalidField logs that a config field was bad or unset and has
// been defaulted.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Validate checks for errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their
// corresponding values, parses the string values converting into the
// correct type, and sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}
