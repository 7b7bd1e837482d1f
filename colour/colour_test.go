package colour

import "testing"

// TestFrameGrey checks that a flat grey YUV420 frame (Y=128, U=V=128,
// the achromatic midpoint) converts to a flat grey RGB frame.
func TestFrameGrey(t *testing.T) {
	const w, h = 4, 4
	y := make([]byte, w*h)
	u := make([]byte, w*h/4)
	v := make([]byte, w*h/4)
	for i := range y {
		y[i] = 128
	}
	for i := range u {
		u[i] = 128
		v[i] = 128
	}

	c := NewConverter()
	r, g, b := make([]byte, w*h), make([]byte, w*h), make([]byte, w*h)
	c.Frame(y, u, v, w, h, r, g, b)

	for i := range r {
		if r[i] != 128 || g[i] != 128 || b[i] != 128 {
			t.Fatalf("pixel %d: got (%d,%d,%d), want (128,128,128)", i, r[i], g[i], b[i])
		}
	}
}

// TestFrameWhite checks that full-bright luma with achromatic chroma
// converts to white.
func TestFrameWhite(t *testing.T) {
	const w, h = 2, 2
	y := []byte{255, 255, 255, 255}
	u := []byte{128}
	v := []byte{128}

	c := NewConverter()
	r, g, b := make([]byte, w*h), make([]byte, w*h), make([]byte, w*h)
	c.Frame(y, u, v, w, h, r, g, b)

	for i := range r {
		if r[i] != 255 || g[i] != 255 || b[i] != 255 {
			t.Fatalf("pixel %d: got (%d,%d,%d), want (255,255,255)", i, r[i], g[i], b[i])
		}
	}
}
