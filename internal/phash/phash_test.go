package phash

import (
	"image"
	"image/color"
	"testing"
)

// patternImage builds a deterministic pseudo-random image from a seed.
func patternImage(width, height int, seed uint32) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	state := seed
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			state = state*1664525 + 1013904223
			img.Set(x, y, color.RGBA{
				R: uint8(state >> 24),
				G: uint8(state >> 16),
				B: uint8(state >> 8),
				A: 255,
			})
		}
	}
	return img
}

// blockImage stretches a coarse seeded pattern of 25x35 cells over the
// requested size, so the same picture can be rendered at several scales.
func blockImage(width, height int, seed uint32) image.Image {
	const cols, rows = 25, 35
	cells := patternImage(cols, rows, seed)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, cells.At(x*cols/width, y*rows/height))
		}
	}
	return img
}

func gradientImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8((x * 255) / width)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestHashWidth(t *testing.T) {
	h := Compute(gradientImage(200, 280), 32)
	if got := h.BitLen(); got != 1024 {
		t.Errorf("bit length: got %d, want 1024", got)
	}
	if got := len(h.Bits); got != 16 {
		t.Errorf("word count: got %d, want 16", got)
	}
}

func TestIdenticalImagesMatch(t *testing.T) {
	a := Compute(patternImage(100, 140, 7), 32)
	b := Compute(patternImage(100, 140, 7), 32)
	if d := a.Distance(b); d != 0 {
		t.Errorf("identical images: distance %d, want 0", d)
	}
}

func TestDifferentImagesDiffer(t *testing.T) {
	a := Compute(patternImage(100, 140, 7), 32)
	b := Compute(patternImage(100, 140, 99), 32)
	if d := a.Distance(b); d < 100 {
		t.Errorf("unrelated images: distance %d, want >= 100", d)
	}
}

func TestScaleInvariance(t *testing.T) {
	// The same picture at different resolutions hashes nearly identically
	a := Compute(blockImage(100, 140, 7), 32)
	b := Compute(blockImage(400, 560, 7), 32)
	if d := a.Distance(b); d > 64 {
		t.Errorf("rescaled image: distance %d, want <= 64", d)
	}
}

func TestDistanceMismatchedSizes(t *testing.T) {
	a := Compute(gradientImage(100, 140), 32)
	b := Compute(gradientImage(100, 140), 16)
	if d := a.Distance(b); d != a.BitLen() {
		t.Errorf("mismatched sizes: distance %d, want %d", d, a.BitLen())
	}
}

func TestDefaultSizeFallback(t *testing.T) {
	h := Compute(gradientImage(64, 64), 0)
	if h.Size != DefaultSize {
		t.Errorf("size: got %d, want %d", h.Size, DefaultSize)
	}
}

func TestDistanceCountsBitFlips(t *testing.T) {
	a := Hash{Bits: make([]uint64, 16), Size: 32}
	b := Hash{Bits: make([]uint64, 16), Size: 32}
	b.Bits[0] = 0x3 // two flipped bits
	b.Bits[15] = 1 << 63

	if d := a.Distance(b); d != 3 {
		t.Errorf("distance: got %d, want 3", d)
	}
}
