package card

import (
	"path/filepath"
	"testing"

	"mtg-scanner/internal/phash"
	"mtg-scanner/pkg/geometry"
)

func quadAt(x, y, w, h float64) []geometry.Point2D {
	return geometry.OrderPolygonPoints([]geometry.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	})
}

func TestCandidateContains(t *testing.T) {
	outer := &CardCandidate{Name: "forest", BoundingQuad: quadAt(0, 0, 100, 140)}
	inner := &CardCandidate{Name: "forest", BoundingQuad: quadAt(20, 20, 50, 70)}

	if !outer.Contains(inner) {
		t.Error("outer should contain inner with the same name")
	}
	if inner.Contains(outer) {
		t.Error("inner should not contain outer")
	}

	inner.Name = "island"
	if outer.Contains(inner) {
		t.Error("containment requires matching names")
	}
}

func TestMarkFragmentsBothRecognized(t *testing.T) {
	better := &CardCandidate{
		Name: "forest", IsRecognized: true, RecognitionScore: 2.0,
		BoundingQuad: quadAt(0, 0, 100, 140),
	}
	worse := &CardCandidate{
		Name: "forest", IsRecognized: true, RecognitionScore: 1.2,
		BoundingQuad: quadAt(10, 10, 100, 140),
	}
	testImage := &TestImage{Candidates: []*CardCandidate{better, worse}}

	testImage.MarkFragments()
	if better.IsFragment {
		t.Error("higher score should win")
	}
	if !worse.IsFragment {
		t.Error("lower score should be marked a fragment")
	}
}

func TestMarkFragmentsOneRecognized(t *testing.T) {
	recognized := &CardCandidate{
		Name: "forest", IsRecognized: true, RecognitionScore: 1.5,
		BoundingQuad: quadAt(0, 0, 100, 140),
	}
	unrecognized := &CardCandidate{
		BoundingQuad: quadAt(5, 5, 100, 140),
	}
	testImage := &TestImage{Candidates: []*CardCandidate{unrecognized, recognized}}

	testImage.MarkFragments()
	if recognized.IsFragment {
		t.Error("recognized candidate should survive")
	}
	if !unrecognized.IsFragment {
		t.Error("unrecognized overlapping candidate should be marked")
	}
}

func TestMarkFragmentsDisjoint(t *testing.T) {
	a := &CardCandidate{
		Name: "forest", IsRecognized: true, RecognitionScore: 1.5,
		BoundingQuad: quadAt(0, 0, 100, 140),
	}
	b := &CardCandidate{
		Name: "island", IsRecognized: true, RecognitionScore: 1.5,
		BoundingQuad: quadAt(300, 0, 100, 140),
	}
	testImage := &TestImage{Candidates: []*CardCandidate{a, b}}

	testImage.MarkFragments()
	if a.IsFragment || b.IsFragment {
		t.Error("non-overlapping candidates must not be marked")
	}
}

func TestMarkFragmentsSmallOverlap(t *testing.T) {
	// Overlap below half of the smaller quad is two distinct cards
	a := &CardCandidate{
		Name: "forest", IsRecognized: true, RecognitionScore: 1.5,
		BoundingQuad: quadAt(0, 0, 100, 140),
	}
	b := &CardCandidate{
		Name: "island", IsRecognized: true, RecognitionScore: 1.5,
		BoundingQuad: quadAt(80, 0, 100, 140),
	}
	testImage := &TestImage{Candidates: []*CardCandidate{a, b}}

	testImage.MarkFragments()
	if a.IsFragment || b.IsFragment {
		t.Error("20% overlap must not mark a fragment")
	}
}

func TestRecognizedAndDiscard(t *testing.T) {
	good := &CardCandidate{Name: "forest", IsRecognized: true, RecognitionScore: 1.5}
	fragment := &CardCandidate{Name: "forest", IsRecognized: true, IsFragment: true}
	unknown := &CardCandidate{}
	testImage := &TestImage{Candidates: []*CardCandidate{good, fragment, unknown}}

	recognized := testImage.Recognized()
	if len(recognized) != 1 || recognized[0] != good {
		t.Fatalf("recognized: got %d candidates", len(recognized))
	}

	testImage.DiscardUnrecognized()
	if len(testImage.Candidates) != 1 || testImage.Candidates[0] != good {
		t.Fatalf("after discard: got %d candidates", len(testImage.Candidates))
	}
}

func TestMayContainMoreCards(t *testing.T) {
	tests := []struct {
		name      string
		fractions []float64
		want      bool
	}{
		{"no cards yet", nil, true},
		{"one small card", []float64{0.2}, true},
		{"one large card", []float64{0.5}, false},
		{"several medium cards", []float64{0.4, 0.4}, false},
		{"several small cards", []float64{0.15, 0.15, 0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testImage := &TestImage{}
			for _, f := range tt.fractions {
				testImage.Candidates = append(testImage.Candidates, &CardCandidate{
					IsRecognized:      true,
					ImageAreaFraction: f,
				})
			}
			if got := testImage.MayContainMoreCards(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferenceDBRoundTrip(t *testing.T) {
	entries := []ReferenceEntry{
		{Name: "dragon_whelp.jpg", PHash: phash.Hash{Bits: []uint64{1, 2, 3}, Size: 32}},
		{Name: "llanowar elves.jpg", PHash: phash.Hash{Bits: []uint64{0xdeadbeef}, Size: 32}},
	}
	entries[0].PHash.Bits = make([]uint64, 16)
	entries[1].PHash.Bits = make([]uint64, 16)
	entries[0].PHash.Bits[3] = 0xfeedface
	entries[1].PHash.Bits[7] = 42

	path := filepath.Join(t.TempDir(), "reference.hashdb")
	if err := SaveReferenceDB(path, entries); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadReferenceDB(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(entries) {
		t.Fatalf("entry count: got %d, want %d", len(loaded), len(entries))
	}
	for i := range entries {
		if loaded[i].Name != entries[i].Name {
			t.Errorf("entry %d name: got %q, want %q", i, loaded[i].Name, entries[i].Name)
		}
		if loaded[i].PHash.Distance(entries[i].PHash) != 0 {
			t.Errorf("entry %d hash does not round-trip", i)
		}
	}
}

func TestLoadReferenceDBMissingFile(t *testing.T) {
	if _, err := LoadReferenceDB(filepath.Join(t.TempDir(), "nope.hashdb")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
