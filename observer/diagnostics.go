/*
DESCRIPTION
  diagnostics.go plots a nightly trend of median-map brightness: a
  supplemental diagnostic PNG, written alongside the timelapse
  directory when the observing night rolls over, that the engine
  itself never reads back.

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
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// nightlyTrend accumulates one sample of median-map brightness per
// median-map emission, for the currently open observing night, and
// renders them as a PNG line chart when the night rolls over.
type nightlyTrend struct {
	night  string
	points plotter.XYs
	t0     time.Time
}

func newNightlyTrend(night string, t0 time.Time) *nightlyTrend {
	return &nightlyTrend{night: night, t0: t0}
}

// sample records one (elapsed-minutes, mean-brightness) point.
func (n *nightlyTrend) sample(at time.Time, meanBrightness float64) {
	n.points = append(n.points, plotter.XY{
		X: at.Sub(n.t0).Minutes(),
		Y: meanBrightness,
	})
}

// render writes the accumulated points as a PNG line plot to path. If
// fewer than two points were accumulated, render is a no-op: a single
// point cannot be drawn as a line and is not worth an artefact.
func (n *nightlyTrend) render(path string) error {
	if len(n.points) < 2 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "background brightness, night " + n.night
	p.X.Label.Text = "minutes since the night's first interval"
	p.Y.Label.Text = "median brightness"

	line, err := plotter.NewLine(n.points)
	if err != nil {
		return errors.Wrap(err, "could not build trend line")
	}
	p.Add(line)

	if err := p.Save(6*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.Wrap(err, "could not save trend plot")
	}
	return nil
}

// meanByte returns the mean of a byte plane as a float64, used to
// summarise a median map's brightness for the nightly trend.
func meanByte(p []byte) float64 {
	if len(p) == 0 {
		return 0
	}
	var sum int
	for _, v := range p {
		sum += int(v)
	}
	return float64(sum) / float64(len(p))
}

// nightDirName returns the observing night (UTC minus half a day) for
// utc, formatted as YYYYMMDD, matching the directory
// naming used by FileNameGenerator.
func nightDirName(utc time.Time) string {
	night := invJulianDay(toJulianDay(utc) - 0.5)
	return fmt.Sprintf("%04d%02d%02d", night.Year, night.Month, night.Day)
}
