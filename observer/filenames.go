/*
DESCRIPTION
  filenames.go implements the filename generator: a deterministic,
  time-stamped path builder under an output root, using
  the Julian calendar before the historic British Julian/Gregorian
  switch-over and the Gregorian calendar on or after it, exactly as the
  original gazing-camera tooling this engine is modelled on.

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
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// britishSwitchOverJD is the Julian Day of the British Julian ->
// Gregorian calendar switch-over (14 September 1752).
const britishSwitchOverJD = 2361222.0

// toJulianDay converts a UTC time to a Julian Day number.
func toJulianDay(utc time.Time) float64 {
	return float64(utc.Unix())/86400.0 + 2440587.5
}

// calendarDate is the result of converting a Julian Day back to a
// calendar date, in whichever of the Julian/Gregorian calendars was in
// effect on that day.
type calendarDate struct {
	Year, Month, Day, Hour, Min int
	Sec                         float64
}

// invJulianDay converts a Julian Day number to a calendar date,
// switching from the Julian to the Gregorian calendar at the historic
// British switch-over date.
func invJulianDay(jd float64) calendarDate {
	dayFraction := (jd + 0.5) - math.Floor(jd+0.5)
	hour := int(math.Floor(24 * dayFraction))
	min := int(math.Floor(math.Mod(1440*dayFraction, 60)))
	sec := math.Mod(86400*dayFraction, 60)

	a := math.Floor(jd + 0.5)
	var b, c float64
	if a < britishSwitchOverJD {
		b = 0
		c = a + 1524
	} else {
		b = math.Floor((a - 1867216.25) / 36524.25)
		c = a + b - math.Floor(b/4) + 1525
	}
	d := math.Floor((c - 122.1) / 365.25)
	e := math.Floor(365*d + math.Floor(d/4))
	f := math.Floor((c - e) / 30.6001)

	day := int(math.Floor(c - e - math.Floor(30.6001*f)))
	month := int(math.Floor(f - 1 - 12*boolToFloat(f >= 14)))
	year := int(math.Floor(d - 4715 - boolToFloat(float64(month) >= 3)))

	return calendarDate{Year: year, Month: month, Day: day, Hour: hour, Min: min, Sec: sec}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FileNameGenerator builds output paths under a fixed root, keyed by
// category ("triggers_raw", "timelapse_raw", ...) and run label.
type FileNameGenerator struct {
	Root string
}

// Generate computes the directory `<root>/<category>_<label>/<night>`
// (creating it if necessary) and returns that directory joined with
// leaf filename `<date><time>_<tag>`, where night is the observing
// night (UTC minus half a day) expressed as YYYYMMDD, and date and time
// are the YYYYMMDD and HHMMSS of the supplied UTC itself.
func (g *FileNameGenerator) Generate(utc time.Time, tag, category, label string) (string, error) {
	jd := toJulianDay(utc)

	// Subtract half a day so that the observing night runs from noon
	// to noon, not midnight to midnight.
	night := invJulianDay(jd - 0.5)
	dir := filepath.Join(g.Root, fmt.Sprintf("%s_%s", category, label),
		fmt.Sprintf("%04d%02d%02d", night.Year, night.Month, night.Day))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "could not create output directory")
	}

	// Half a second is added so that floating-point error in jd cannot
	// truncate a whole second (hh:mm:30 read back as hh:mm:29.999...).
	full := invJulianDay(jd + 0.5/86400)
	leaf := fmt.Sprintf("%04d%02d%02d%02d%02d%02d_%s",
		full.Year, full.Month, full.Day, full.Hour, full.Min, int(full.Sec), tag)

	return filepath.Join(dir, leaf), nil
}
