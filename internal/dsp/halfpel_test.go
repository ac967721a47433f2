package dsp

import (
	"math/rand"
	"testing"
)

const (
	hpPad    = 4
	hpStride = 16 + 2*hpPad + 8
)

func TestHalfPelConstantPlane(t *testing.T) {
	ref := fill(make([]byte, hpStride*(16+2*hpPad+2)), 77)
	off := hpPad*hpStride + hpPad
	hx := make([]byte, HPBufSize)
	hy := make([]byte, HPBufSize)
	hxy := make([]byte, HPBufSize)
	halfPel16x16(ref, off, hpStride, hx, hy, hxy)
	for y := 0; y < 16; y++ {
		for x := 0; x < 17; x++ {
			if hx[y*HPStride+x] != 77 {
				t.Fatalf("halfX(%d,%d) = %d, want 77", x, y, hx[y*HPStride+x])
			}
		}
	}
	for y := 0; y < 17; y++ {
		for x := 0; x < 16; x++ {
			if hy[y*HPStride+x] != 77 {
				t.Fatalf("halfY(%d,%d) = %d, want 77", x, y, hy[y*HPStride+x])
			}
		}
		for x := 0; x < 17; x++ {
			if hxy[y*HPStride+x] != 77 {
				t.Fatalf("halfXY(%d,%d) = %d, want 77", x, y, hxy[y*HPStride+x])
			}
		}
	}
}

func TestHalfPelHorizontalRamp(t *testing.T) {
	// On a linear ramp the six-tap filter reproduces the midpoint, so halfX
	// at column c equals the mean of columns c-1 and c rounded up.
	ref := make([]byte, hpStride*(16+2*hpPad+2))
	for y := 0; y < 16+2*hpPad+2; y++ {
		for x := 0; x < hpStride; x++ {
			ref[y*hpStride+x] = byte(4 * x)
		}
	}
	off := hpPad*hpStride + hpPad
	hx := make([]byte, HPBufSize)
	hy := make([]byte, HPBufSize)
	hxy := make([]byte, HPBufSize)
	halfPel16x16(ref, off, hpStride, hx, hy, hxy)
	for x := 0; x < 17; x++ {
		want := byte(4*(hpPad+x-1) + 2)
		if hx[x] != want {
			t.Errorf("halfX col %d = %d, want %d", x, hx[x], want)
		}
		if hxy[5*HPStride+x] != want {
			t.Errorf("halfXY col %d = %d, want %d", x, hxy[5*HPStride+x], want)
		}
	}
	for x := 0; x < 16; x++ {
		if want := ref[off+x]; hy[3*HPStride+x] != want {
			t.Errorf("halfY col %d = %d, want %d", x, hy[3*HPStride+x], want)
		}
	}
}

func TestHalfPelStaysInBlockFootprint(t *testing.T) {
	// Poisoning everything outside the six-tap footprint must not change the
	// output.
	rng := rand.New(rand.NewSource(9))
	ref := makeRandBuf(rng, hpStride*(16+2*hpPad+2))
	off := hpPad*hpStride + hpPad
	var a, b [3][]byte
	for i := range a {
		a[i] = make([]byte, HPBufSize)
		b[i] = make([]byte, HPBufSize)
	}
	halfPel16x16(ref, off, hpStride, a[0], a[1], a[2])
	for y := 0; y < 16+2*hpPad+2; y++ {
		for x := 0; x < hpStride; x++ {
			inX := x >= hpPad-3 && x <= hpPad+18
			inY := y >= hpPad-3 && y <= hpPad+18
			if !inX || !inY {
				ref[y*hpStride+x] = 255
			}
		}
	}
	halfPel16x16(ref, off, hpStride, b[0], b[1], b[2])
	for p := range a {
		for i := range a[p] {
			if a[p][i] != b[p][i] {
				t.Fatalf("plane %d byte %d changed: %d -> %d", p, i, a[p][i], b[p][i])
			}
		}
	}
}
