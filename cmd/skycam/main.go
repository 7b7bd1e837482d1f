/*
DESCRIPTION
  Skycam is the command-line front-end for the all-sky meteor and
  transient-event observation engine: it parses run parameters, wires
  up a frame provider and artefact writer, and runs the engine between
  a configured UTC start and stop time.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Skycam runs the observation engine against a live camera or a
// recorded video file. -input=synthetic is accepted by the flag parser,
// but no provider is wired for it here, so startup then fails.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/skycam/device/camera"
	"github.com/ausocean/skycam/device/videofile"
	"github.com/ausocean/skycam/observer"
	"github.com/ausocean/skycam/observer/config"
)

// Logging defaults.
const (
	logPath      = "/var/log/skycam/skycam.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

func main() {
	var (
		label        = flag.String("label", "default", "run label, tags every output path")
		outputPath   = flag.String("output", "output", "root of the output directory tree")
		input        = flag.String("input", "camera", "frame source: camera or videofile")
		inputPath    = flag.String("input-path", "", "source video file, for -input=videofile")
		width        = flag.Uint("width", 720, "frame width in pixels")
		height       = flag.Uint("height", 480, "frame height in pixels")
		frameRate    = flag.Uint("fps", 25, "frames per second")
		captureCmd   = flag.String("capture-cmd", "raspivid", "capture command, for -input=camera")
		profile      = flag.String("profile", "", "detector profile: reserved for future constant bundles")
		start        = flag.Int64("start", 0, "UTC start time, seconds since epoch (0 = now)")
		stop         = flag.Int64("stop", 0, "UTC stop time, seconds since epoch (0 = run until killed)")
		verbose      = flag.Bool("verbose", false, "enable debug-level logging")
	)
	flag.Parse()
	_ = profile // detector profile selection is reserved; constants are set through Config for now.

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}

	level := logging.Info
	if *verbose {
		level = logging.Debug
	}
	l := logging.New(level, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	cfg := config.Config{
		Logger:     l,
		LogLevel:   level,
		RunLabel:   *label,
		OutputPath: *outputPath,
		InputPath:  *inputPath,
		Width:      *width,
		Height:     *height,
		FrameRate:  *frameRate,
	}
	switch *input {
	case "camera":
		cfg.Input = config.InputCamera
	case "videofile":
		cfg.Input = config.InputVideoFile
	case "synthetic":
		cfg.Input = config.InputSynthetic
	default:
		l.Fatal("unknown -input value", "input", *input)
	}
	if err := cfg.Validate(); err != nil {
		l.Fatal("invalid configuration", "error", err.Error())
	}

	startAt := time.Time{}
	if *start > 0 {
		startAt = time.Unix(*start, 0)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	// For a live camera, the UTC start flag gates when capture actually
	// begins; for a recorded file it instead seeds the timestamp of
	// frame 0 (passed straight into newProvider below), since the file
	// itself carries no timing of its own.
	if cfg.Input == config.InputCamera && !startAt.IsZero() {
		l.Info("waiting for configured start time", "start", startAt.UTC())
		select {
		case <-sig:
			fmt.Fprintln(os.Stderr, "skycam stopped before reaching start time")
			return
		case <-time.After(time.Until(startAt)):
		}
	}

	provider, closer, err := newProvider(cfg, *captureCmd, l, startAt)
	if err != nil {
		l.Fatal("could not create frame provider", "error", err.Error())
	}
	defer closer()

	eng, err := observer.NewEngine(cfg, provider, observer.FileArtefactWriter{})
	if err != nil {
		l.Fatal("could not create observation engine", "error", err.Error())
	}

	eng.Start()
	l.Info("skycam started", "label", *label, "input", *input)

	stopAt := time.Time{}
	if *stop > 0 {
		stopAt = time.Unix(*stop, 0)
	}

	if stopAt.IsZero() {
		<-sig
	} else {
		select {
		case <-sig:
		case <-time.After(time.Until(stopAt)):
		}
	}

	l.Info("skycam stopping")
	eng.Stop()
	fmt.Fprintln(os.Stderr, "skycam stopped cleanly")
}

// newProvider builds the FrameProvider named by cfg.Input, along with
// a function that releases any resources it holds. startAt, if
// non-zero, is the configured UTC start time: for a video file it
// seeds the timestamp of frame 0 (the file carries no timing of its
// own, mirroring the original analysis tooling's tstart), matching
// the CLI surface's UTC start parameter.
func newProvider(cfg config.Config, captureCmd string, l logging.Logger, startAt time.Time) (observer.FrameProvider, func(), error) {
	switch cfg.Input {
	case config.InputCamera:
		args := []string{
			"--output", "-",
			"--raw", "-",
			"--rawfull",
			"--nopreview",
			"--timeout", "0",
			"--width", fmt.Sprint(cfg.Width),
			"--height", fmt.Sprint(cfg.Height),
			"--framerate", fmt.Sprint(cfg.FrameRate),
		}
		c := camera.New(l, captureCmd, args, int(cfg.Width), int(cfg.Height))
		if err := c.Start(); err != nil {
			return nil, nil, err
		}
		return c, func() { c.Stop() }, nil

	case config.InputVideoFile:
		epoch := startAt
		if epoch.IsZero() {
			epoch = time.Now().UTC()
		}
		vf := videofile.New(cfg.InputPath, int(cfg.Width), int(cfg.Height), float64(cfg.FrameRate), epoch)
		if err := vf.Start(); err != nil {
			return nil, nil, err
		}
		return vf, func() { vf.Stop() }, nil

	default:
		return nil, nil, fmt.Errorf("no provider wired for input %d outside camera/videofile", cfg.Input)
	}
}
