// Package card holds the recognition data model: reference entries,
// test images, and card candidates, together with the candidate-level
// fragment suppression passes.
package card

import (
	"image"

	"mtg-scanner/internal/phash"
	"mtg-scanner/pkg/geometry"

	"gocv.io/x/gocv"
)

// ReferenceEntry is one pre-hashed reference card. No pixel data is kept
// at recognition time; the perceptual hash is sufficient for matching.
// Names are not required to be unique — multiple printings may share one.
type ReferenceEntry struct {
	Name  string
	PHash phash.Hash
}

// CardCandidate is a segment of a test image that may contain a
// recognizable card.
type CardCandidate struct {
	Warped            image.Image          // canonical rectified view
	BoundingQuad      []geometry.Point2D   // 4 vertices in image coordinates
	ImageAreaFraction float64              // quad area / image area, in (0, 1]
	IsRecognized      bool
	RecognitionScore  float64 // normalized so 1.0 equals the acceptance threshold
	IsFragment        bool
	Name              string
}

// QuadArea returns the area of the candidate's bounding quadrilateral.
func (c *CardCandidate) QuadArea() float64 {
	return geometry.ShoelaceArea(c.BoundingQuad)
}

// Contains reports whether this candidate's bounding quad contains the
// other candidate's bounding quad and both carry the same card name.
// Used to suppress re-detections of an already recognized card.
func (c *CardCandidate) Contains(other *CardCandidate) bool {
	return geometry.ContainsPolygon(c.BoundingQuad, other.BoundingQuad) &&
		c.Name == other.Name
}

// TestImage is one photograph under recognition. Original holds the
// (possibly downscaled) input pixels; Adjusted holds the local-contrast
// enhanced BGR mat the segmentation passes operate on.
type TestImage struct {
	Name       string
	Original   image.Image
	Adjusted   gocv.Mat
	Candidates []*CardCandidate
}

// Close releases the image mats held by the test image.
func (t *TestImage) Close() {
	if !t.Adjusted.Empty() {
		t.Adjusted.Close()
	}
}

// ImageArea returns the pixel area of the test image.
func (t *TestImage) ImageArea() float64 {
	return float64(t.Adjusted.Cols() * t.Adjusted.Rows())
}

// ClearCandidates drops all candidates before a new segmentation pass.
func (t *TestImage) ClearCandidates() {
	t.Candidates = t.Candidates[:0]
}

// Recognized returns the candidates that are recognized and not fragments.
func (t *TestImage) Recognized() []*CardCandidate {
	var out []*CardCandidate
	for _, c := range t.Candidates {
		if c.IsRecognized && !c.IsFragment {
			out = append(out, c)
		}
	}
	return out
}

// DiscardUnrecognized compacts the candidate list to only the recognized,
// non-fragment candidates.
func (t *TestImage) DiscardUnrecognized() {
	t.Candidates = t.Recognized()
}

// MarkFragments finds doubly segmented cards and marks all but one as a
// fragment. For every pair with more than 50% mutual overlap (relative to
// the smaller quad) where at least one is recognized, the loser is marked:
// the lower recognition score when both are recognized, otherwise the
// unrecognized one. Ties go to the candidate encountered first.
func (t *TestImage) MarkFragments() {
	for _, candidate := range t.Candidates {
		for _, other := range t.Candidates {
			if candidate == other ||
				candidate.IsFragment || other.IsFragment {
				continue
			}
			if !candidate.IsRecognized && !other.IsRecognized {
				continue
			}

			overlap := geometry.IntersectionArea(candidate.BoundingQuad, other.BoundingQuad)
			minArea := candidate.QuadArea()
			if a := other.QuadArea(); a < minArea {
				minArea = a
			}
			if overlap <= 0.5*minArea {
				continue
			}

			switch {
			case candidate.IsRecognized && other.IsRecognized:
				if candidate.RecognitionScore < other.RecognitionScore {
					candidate.IsFragment = true
				} else {
					other.IsFragment = true
				}
			case candidate.IsRecognized:
				other.IsFragment = true
			default:
				candidate.IsFragment = true
			}
		}
	}
}

// MayContainMoreCards reports whether another segmentation pass could
// plausibly find an additional card. The already recognized area plus a
// 50% margin worth of "one more small card" must still fit in the frame.
func (t *TestImage) MayContainMoreCards() bool {
	recognized := t.Recognized()
	if len(recognized) == 0 {
		return true
	}
	totalArea := 0.0
	minArea := 1.0
	for _, c := range recognized {
		totalArea += c.ImageAreaFraction
		if c.ImageAreaFraction < minArea {
			minArea = c.ImageAreaFraction
		}
	}
	return totalArea+1.5*minArea < 1.0
}
