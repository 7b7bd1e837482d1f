/*
DESCRIPTION
  filenames_test.go tests the Julian Day calendar arithmetic and the
  output path generator.

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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestJulianDayRoundTrip(t *testing.T) {
	utc := time.Date(2026, 3, 15, 21, 30, 0, 0, time.UTC)
	jd := toJulianDay(utc)
	got := invJulianDay(jd)

	if got.Year != 2026 || got.Month != 3 || got.Day != 15 || got.Hour != 21 || got.Min != 30 {
		t.Fatalf("invJulianDay(toJulianDay(%v)) = %+v, want Y=2026 M=3 D=15 H=21 Mi=30", utc, got)
	}
}

func TestInvJulianDayGregorian(t *testing.T) {
	// 1 January 2000, 12:00 UTC is JD 2451545.0, a standard reference
	// epoch comfortably after the British calendar switch-over.
	got := invJulianDay(2451545.0)
	if got.Year != 2000 || got.Month != 1 || got.Day != 1 {
		t.Fatalf("invJulianDay(2451545.0) = %+v, want 2000-01-01", got)
	}
}

func TestGenerateNightRollsOverAtNoon(t *testing.T) {
	dir := t.TempDir()
	g := &FileNameGenerator{Root: dir}

	// A time early in the UTC day belongs to the previous night, since
	// nights run noon-to-noon.
	morning := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)
	path, err := g.Generate(morning, "MAP", "triggers_raw", "default")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(filepath.ToSlash(path), "20260314") {
		t.Fatalf("path %q does not contain the previous night 20260314", path)
	}

	// A time in the afternoon belongs to the same-numbered night.
	afternoon := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	path, err = g.Generate(afternoon, "MAP", "triggers_raw", "default")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(filepath.ToSlash(path), "20260315") {
		t.Fatalf("path %q does not contain the current night 20260315", path)
	}
}

func TestGenerateCreatesDirectoryAndLeaf(t *testing.T) {
	dir := t.TempDir()
	g := &FileNameGenerator{Root: dir}

	utc := time.Date(2026, 6, 1, 10, 20, 30, 0, time.UTC)
	path, err := g.Generate(utc, "frame_", "timelapse_raw", "run1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	wantDir := filepath.Join(dir, "timelapse_raw_run1", "20260531")
	if filepath.Dir(path) != wantDir {
		t.Errorf("directory = %q, want %q", filepath.Dir(path), wantDir)
	}
	if fi, err := os.Stat(wantDir); err != nil || !fi.IsDir() {
		t.Errorf("output directory %q was not created", wantDir)
	}
	leaf := filepath.Base(path)
	if !strings.HasSuffix(leaf, "_frame_") {
		t.Errorf("leaf %q does not end with the tag", leaf)
	}
	if !strings.HasPrefix(leaf, "20260601102030") {
		t.Errorf("leaf %q does not start with the full timestamp", leaf)
	}
}
