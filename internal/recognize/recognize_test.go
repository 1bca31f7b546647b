package recognize

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"mtg-scanner/internal/card"
	"mtg-scanner/internal/phash"

	"github.com/disintegration/imaging"
)

// cardImage builds a deterministic pseudo-random card face from a seed.
func cardImage(seed uint32) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 120, 168))
	state := seed
	for y := 0; y < 168; y++ {
		for x := 0; x < 120; x++ {
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

// referenceSet hashes n distinct synthetic cards. The first entry is
// named like a typical reference file.
func referenceSet(n int) []card.ReferenceEntry {
	refs := make([]card.ReferenceEntry, n)
	for i := range refs {
		name := fmt.Sprintf("card_%03d.jpg", i)
		if i == 0 {
			name = "dragon_whelp.jpg"
		}
		refs[i] = card.ReferenceEntry{
			Name:  name,
			PHash: phash.Compute(cardImage(uint32(i)*7919+13), phash.DefaultSize),
		}
	}
	return refs
}

func TestCompareRecognizesExactMatch(t *testing.T) {
	refs := referenceSet(20)

	res := Compare(cardImage(13), refs, DefaultConfig())
	if !res.IsRecognized {
		t.Fatal("exact match should be recognized")
	}
	if res.Name != "dragon_whelp" {
		t.Errorf("name: got %q, want %q", res.Name, "dragon_whelp")
	}
	if res.Score < 1.0 {
		t.Errorf("score: got %f, want >= 1.0", res.Score)
	}
}

func TestCompareRejectsUnknownSegment(t *testing.T) {
	refs := referenceSet(20)

	// A flat grey segment has no reference that stands out from the rest
	flat := imaging.New(120, 168, color.NRGBA{128, 128, 128, 255})
	res := Compare(flat, refs, DefaultConfig())
	if res.IsRecognized {
		t.Errorf("flat segment recognized as %q with score %f", res.Name, res.Score)
	}
	if res.Score != 0 {
		t.Errorf("score: got %f, want 0", res.Score)
	}
}

func TestCompareFindsRotatedSegment(t *testing.T) {
	refs := referenceSet(20)

	for _, rotate := range []func(image.Image) *image.NRGBA{
		imaging.Rotate90, imaging.Rotate180, imaging.Rotate270,
	} {
		res := Compare(rotate(cardImage(13)), refs, DefaultConfig())
		if !res.IsRecognized || res.Name != "dragon_whelp" {
			t.Errorf("rotated segment: recognized=%v name=%q", res.IsRecognized, res.Name)
		}
	}
}

func TestCompareEmptyReferenceList(t *testing.T) {
	res := Compare(cardImage(13), nil, DefaultConfig())
	if res.IsRecognized || res.Score != 0 || res.Name != "" {
		t.Errorf("empty reference list: got %+v, want zero result", res)
	}
}

func TestCompareSingleReference(t *testing.T) {
	// With one reference there are no "other" distances, the deviation
	// is zero, and nothing can ever be accepted.
	refs := referenceSet(1)
	res := Compare(cardImage(13), refs, DefaultConfig())
	if res.IsRecognized {
		t.Error("a single reference must never be recognized")
	}
}

func TestCompareGlobalArgmaxMode(t *testing.T) {
	refs := referenceSet(20)
	cfg := DefaultConfig()
	cfg.RotationMode = RotationGlobalArgmax

	res := Compare(cardImage(13), refs, cfg)
	if !res.IsRecognized || res.Name != "dragon_whelp" {
		t.Errorf("global argmax: recognized=%v name=%q", res.IsRecognized, res.Name)
	}
}

func TestNameModes(t *testing.T) {
	tests := []struct {
		name string
		mode NameMode
		in   string
		want string
	}{
		{"first token", NameFirstToken, "llanowar elves.jpg", "llanowar"},
		{"first token no extension", NameFirstToken, "dragon_whelp", "dragon_whelp"},
		{"full name", NameFull, "llanowar elves.jpg", "llanowar elves"},
		{"empty", NameFirstToken, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canonicalize(tt.in, tt.mode); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
