/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name,
  a function for updating the variable in the Config struct from a
  string, and a validation function that checks/defaults the
  corresponding field value in the Config. This mirrors revid's
  config/variables.go pattern.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"strconv"
	"time"
)

// Config map Keys.
const (
	KeyRunLabel          = "RunLabel"
	KeyOutputPath        = "OutputPath"
	KeyInput             = "Input"
	KeyInputPath         = "InputPath"
	KeyWidth             = "Width"
	KeyHeight            = "Height"
	KeyFrameRate         = "FrameRate"
	KeyStackSeconds      = "StackSeconds"
	KeyRecordSeconds     = "RecordSeconds"
	KeyTimelapseExposure = "TimelapseExposure"
	KeyTimelapseInterval = "TimelapseInterval"
	KeyMedianSampleEvery = "MedianSampleEvery"
	KeyThrottlePeriod    = "ThrottlePeriod"
	KeyThrottleMax       = "ThrottleMax"
)

// Default values, preserved from the source's settings.h /
// settings_webcam.h. The margin asymmetry and the relationship between
// the stack gain constants are inherited unexplained from that source;
// they are kept as given rather than guessed at.
const (
	defaultWidth             = 720
	defaultHeight            = 480
	defaultFrameRate         = 25
	defaultStackSeconds      = 1.0
	defaultRecordSeconds     = 10.0
	defaultTimelapseExposure = 28 * time.Second
	defaultTimelapseInterval = 30 * time.Second
	defaultMedianSampleEvery = 8
	defaultMarginLeft        = 12
	defaultMarginRight       = 19
	defaultMarginTop         = 8
	defaultMarginBottom      = 19
	defaultMinPixels         = 30
	defaultProbeRadius       = 8
	defaultThreshold         = 13
	defaultThrottlePeriod    = 10 * time.Minute
	defaultThrottleMax       = 5
	defaultStackGain               = 6
	defaultStackGainNoBGSub        = 2
	defaultStackGainBGSub          = 8
	defaultStackTargetBrightness   = 32
	defaultOutputPath        = "output"
)

// Variable describes a single Config field: its name as used in
// key/value update maps, how to parse and set it (Update), and how to
// default/validate it (Validate).
type Variable struct {
	Name     string
	Update   func(c *Config, val string)
	Validate func(c *Config)
}

// Variables lists every updatable/validatable Config field.
var Variables = []Variable{
	{
		Name:   KeyRunLabel,
		Update: func(c *Config, v string) { c.RunLabel = v },
		Validate: func(c *Config) {
			if c.RunLabel == "" {
				c.LogInvalidField(KeyRunLabel, "default")
				c.RunLabel = "default"
			}
		},
	},
	{
		Name:   KeyOutputPath,
		Update: func(c *Config, v string) { c.OutputPath = v },
		Validate: func(c *Config) {
			if c.OutputPath == "" {
				c.LogInvalidField(KeyOutputPath, defaultOutputPath)
				c.OutputPath = defaultOutputPath
			}
		},
	},
	{
		Name: KeyInput,
		Update: func(c *Config, v string) {
			switch v {
			case "Camera":
				c.Input = InputCamera
			case "VideoFile":
				c.Input = InputVideoFile
			case "Synthetic":
				c.Input = InputSynthetic
			}
		},
	},
	{
		Name:   KeyInputPath,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name: KeyWidth,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.Width = uint(n)
			}
		},
		Validate: func(c *Config) {
			if c.Width == 0 {
				c.LogInvalidField(KeyWidth, defaultWidth)
				c.Width = defaultWidth
			}
		},
	},
	{
		Name: KeyHeight,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.Height = uint(n)
			}
		},
		Validate: func(c *Config) {
			if c.Height == 0 {
				c.LogInvalidField(KeyHeight, defaultHeight)
				c.Height = defaultHeight
			}
		},
	},
	{
		Name: KeyFrameRate,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.FrameRate = uint(n)
			}
		},
		Validate: func(c *Config) {
			if c.FrameRate == 0 {
				c.LogInvalidField(KeyFrameRate, defaultFrameRate)
				c.FrameRate = defaultFrameRate
			}
		},
	},
	{
		Name: KeyStackSeconds,
		Update: func(c *Config, v string) {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				c.StackSeconds = n
			}
		},
		Validate: func(c *Config) {
			if c.StackSeconds <= 0 {
				c.LogInvalidField(KeyStackSeconds, defaultStackSeconds)
				c.StackSeconds = defaultStackSeconds
			}
		},
	},
	{
		Name: KeyRecordSeconds,
		Update: func(c *Config, v string) {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				c.RecordSeconds = n
			}
		},
		Validate: func(c *Config) {
			if c.RecordSeconds <= 0 {
				c.LogInvalidField(KeyRecordSeconds, defaultRecordSeconds)
				c.RecordSeconds = defaultRecordSeconds
			}
		},
	},
	{
		Name: KeyTimelapseExposure,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.TimelapseExposure = time.Duration(n) * time.Second
			}
		},
		Validate: func(c *Config) {
			if c.TimelapseExposure <= 0 {
				c.LogInvalidField(KeyTimelapseExposure, defaultTimelapseExposure)
				c.TimelapseExposure = defaultTimelapseExposure
			}
		},
	},
	{
		Name: KeyTimelapseInterval,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.TimelapseInterval = time.Duration(n) * time.Second
			}
		},
		Validate: func(c *Config) {
			if c.TimelapseInterval <= 0 {
				c.LogInvalidField(KeyTimelapseInterval, defaultTimelapseInterval)
				c.TimelapseInterval = defaultTimelapseInterval
			}
		},
	},
	{
		Name: KeyMedianSampleEvery,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.MedianSampleEvery = uint(n)
			}
		},
		Validate: func(c *Config) {
			if c.MedianSampleEvery == 0 {
				c.LogInvalidField(KeyMedianSampleEvery, defaultMedianSampleEvery)
				c.MedianSampleEvery = defaultMedianSampleEvery
			}
		},
	},
	{
		Name: KeyThrottlePeriod,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.ThrottlePeriod = time.Duration(n) * time.Minute
			}
		},
		Validate: func(c *Config) {
			if c.ThrottlePeriod <= 0 {
				c.LogInvalidField(KeyThrottlePeriod, defaultThrottlePeriod)
				c.ThrottlePeriod = defaultThrottlePeriod
			}
		},
	},
	{
		Name: KeyThrottleMax,
		Update: func(c *Config, v string) {
			if n, err := strconv.Atoi(v); err == nil {
				c.ThrottleMax = n
			}
		},
		Validate: func(c *Config) {
			if c.ThrottleMax <= 0 {
				c.LogInvalidField(KeyThrottleMax, defaultThrottleMax)
				c.ThrottleMax = defaultThrottleMax
			}
		},
	},
}

// applyTriggerDefaults fills in the trigger/stack-gain tunables that are
// not (yet) exposed through the Variables update map, matching the way
// revid's Config.Validate defaults fields with no corresponding
// KeyXxx entry.
func applyTriggerDefaults(c *Config) {
	if c.MarginLeft == 0 {
		c.MarginLeft = defaultMarginLeft
	}
	if c.MarginRight == 0 {
		c.MarginRight = defaultMarginRight
	}
	if c.MarginTop == 0 {
		c.MarginTop = defaultMarginTop
	}
	if c.MarginBottom == 0 {
		c.MarginBottom = defaultMarginBottom
	}
	if c.MinPixels == 0 {
		c.MinPixels = defaultMinPixels
	}
	if c.ProbeRadius == 0 {
		c.ProbeRadius = defaultProbeRadius
	}
	if c.Threshold == 0 {
		c.Threshold = defaultThreshold
	}
	if c.StackGain == 0 {
		c.StackGain = defaultStackGain
	}
	if c.StackGainNoBGSub == 0 {
		c.StackGainNoBGSub = defaultStackGainNoBGSub
	}
	if c.StackGainBGSub == 0 {
		c.StackGainBGSub = defaultStackGainBGSub
	}
	if c.StackTargetBrightness == 0 {
		c.StackTargetBrightness = defaultStackTargetBrightness
	}
}

func init() {
	Variables = append(Variables, Variable{
		Name:     "_triggerDefaults",
		Validate: applyTriggerDefaults,
	})
}
