package quadfit

import (
	"mtg-scanner/pkg/geometry"
)

// Criteria holds the shape acceptance thresholds for card contours.
type Criteria struct {
	LengthCutoff  float64 // simplification edge cutoff, fraction of perimeter
	FormFactorMin float64 // card shape acceptance range, lower bound
	FormFactorMax float64 // card shape acceptance range, upper bound
	CornerDiffMax float64 // maximum allowed corner diff
	CropSlope     float64 // crop factor = 1 - CropSlope * corner diff
}

// DefaultCriteria returns thresholds tuned for standard card proportions.
func DefaultCriteria() Criteria {
	return Criteria{
		LengthCutoff:  0.15,
		FormFactorMin: 0.25,
		FormFactorMax: 0.33,
		CornerDiffMax: 0.35,
		CropSlope:     0.22,
	}
}

// Result is the outcome of characterizing one contour.
type Result struct {
	Continue     bool    // false once contours are too small to matter
	IsCandidate  bool    // contour passed all card shape tests
	BoundingQuad []geometry.Point2D
	CropFactor   float64 // shrink factor applied before rectification
}

// Characterize decides whether a contour is a card candidate. Contours
// arrive sorted by size, so a convex hull smaller than either a tenth of
// the largest accepted card or a thousandth of the image (whichever is
// larger) means no useful contours remain and segmentation can stop.
func Characterize(contour []geometry.Point2D, maxSegmentArea, imageArea float64, crit Criteria) Result {
	hull := geometry.ConvexHull(contour)
	hullArea := geometry.ShoelaceArea(hull)

	floor := imageArea / 1000
	if 0.1*maxSegmentArea > floor {
		floor = 0.1 * maxSegmentArea
	}
	if hullArea < floor {
		return Result{Continue: false, CropFactor: 1.0}
	}

	quad, ok := BoundingQuad(hull, crit.LengthCutoff)
	if !ok {
		// Degenerate geometry; skip this contour but keep going
		return Result{Continue: true, CropFactor: 1.0}
	}

	qcDiff := CornerDiff(hull, quad)
	cropFactor := 1.0 - crit.CropSlope*qcDiff
	if cropFactor > 1.0 {
		cropFactor = 1.0
	}

	area := geometry.ShoelaceArea(quad)
	ff := FormFactor(quad)
	isCandidate := 0.1*maxSegmentArea < area &&
		area < 0.99*imageArea &&
		qcDiff < crit.CornerDiffMax &&
		crit.FormFactorMin < ff && ff < crit.FormFactorMax

	return Result{
		Continue:     true,
		IsCandidate:  isCandidate,
		BoundingQuad: quad,
		CropFactor:   cropFactor,
	}
}
