package config

import (
	"bytes"
	"testing"

	"github.com/ausocean/utils/logging"
)

func TestValidateDefaults(t *testing.T) {
	c := Config{Logger: logging.New(logging.Debug, &bytes.Buffer{}, true)}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Width != defaultWidth {
		t.Errorf("Width = %d, want %d", c.Width, defaultWidth)
	}
	if c.Height != defaultHeight {
		t.Errorf("Height = %d, want %d", c.Height, defaultHeight)
	}
	if c.MinPixels != defaultMinPixels {
		t.Errorf("MinPixels = %d, want %d", c.MinPixels, defaultMinPixels)
	}
	if c.MarginLeft != defaultMarginLeft || c.MarginRight != defaultMarginRight {
		t.Errorf("margins = (%d,%d), want (%d,%d)", c.MarginLeft, c.MarginRight, defaultMarginLeft, defaultMarginRight)
	}
	if c.RunLabel != "default" {
		t.Errorf("RunLabel = %q, want %q", c.RunLabel, "default")
	}
}

func TestUpdate(t *testing.T) {
	c := Config{Logger: logging.New(logging.Debug, &bytes.Buffer{}, true)}
	c.Update(map[string]string{
		KeyWidth:     "1280",
		KeyHeight:    "720",
		KeyRunLabel:  "station1",
		KeyThrottleMax: "3",
	})
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Width != 1280 || c.Height != 720 {
		t.Errorf("got (%d,%d), want (1280,720)", c.Width, c.Height)
	}
	if c.RunLabel != "station1" {
		t.Errorf("RunLabel = %q, want %q", c.RunLabel, "station1")
	}
	if c.ThrottleMax != 3 {
		t.Errorf("ThrottleMax = %d, want 3", c.ThrottleMax)
	}
}
