// Package rectify warps card quadrilaterals to a canonical rectangular view.
package rectify

import (
	"fmt"
	"image"

	"mtg-scanner/pkg/geometry"

	"gocv.io/x/gocv"
)

// FourPointTransform warps the region of src bounded by a 4-vertex
// polygon into an axis-aligned rectangle. The vertices are first ordered
// by angle around their centroid, which gives consistent relative
// positions but no canonical top-left corner; the recognizer compensates
// by searching all four rotations. The caller owns the returned mat.
func FourPointTransform(src gocv.Mat, quad []geometry.Point2D) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}
	if len(quad) != 4 {
		return gocv.Mat{}, fmt.Errorf("expected 4 vertices, got %d", len(quad))
	}

	rect := geometry.OrderPolygonPoints(quad)

	// Target size from the longer of each pair of opposing edges
	width := int(rect[0].Distance(rect[1]))
	if w := int(rect[3].Distance(rect[2])); w > width {
		width = w
	}
	height := int(rect[0].Distance(rect[3]))
	if h := int(rect[1].Distance(rect[2])); h > height {
		height = h
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	srcPts := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: float32(rect[0].X), Y: float32(rect[0].Y)},
		{X: float32(rect[1].X), Y: float32(rect[1].Y)},
		{X: float32(rect[2].X), Y: float32(rect[2].Y)},
		{X: float32(rect[3].X), Y: float32(rect[3].Y)},
	})
	defer srcPts.Close()

	dstPts := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: 0, Y: 0},
		{X: float32(width - 1), Y: 0},
		{X: float32(width - 1), Y: float32(height - 1)},
		{X: 0, Y: float32(height - 1)},
	})
	defer dstPts.Close()

	transform := gocv.GetPerspectiveTransform2f(srcPts, dstPts)
	defer transform.Close()

	warped := gocv.NewMat()
	gocv.WarpPerspective(src, &warped, transform, image.Pt(width, height))
	return warped, nil
}
