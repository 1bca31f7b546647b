package geometry

import (
	"math"
	"sort"
)

// OrderPolygonPoints sorts polygon vertices by angle around their centroid,
// ascending. The result traverses the ring in a consistent rotational order;
// the starting vertex is not semantically meaningful.
func OrderPolygonPoints(points []Point2D) []Point2D {
	if len(points) < 3 {
		out := make([]Point2D, len(points))
		copy(out, points)
		return out
	}

	center := Centroid(points)
	out := make([]Point2D, len(points))
	copy(out, points)

	sort.SliceStable(out, func(i, j int) bool {
		ai := math.Atan2(out[i].Y-center.Y, out[i].X-center.X)
		aj := math.Atan2(out[j].Y-center.Y, out[j].X-center.X)
		return ai < aj
	})
	return out
}

// ShoelaceArea returns the area of a simple polygon using the shoelace
// formula. The result is always non-negative regardless of winding order.
func ShoelaceArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the total edge length of a closed polygon ring.
func Perimeter(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}
	var total float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		total += polygon[i].Distance(polygon[(i+1)%n])
	}
	return total
}

// MinEdgeLength returns the length of the shortest edge of a closed
// polygon ring, or 0 for degenerate input.
func MinEdgeLength(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}
	minLen := math.Inf(1)
	n := len(polygon)
	for i := 0; i < n; i++ {
		if d := polygon[i].Distance(polygon[(i+1)%n]); d < minLen {
			minLen = d
		}
	}
	return minLen
}

// ContainsPolygon reports whether every vertex of inner lies inside outer.
// This is an approximation of true polygon containment that holds for the
// convex and near-convex rings produced by hull and quad fitting.
func ContainsPolygon(outer, inner []Point2D) bool {
	if len(outer) < 3 || len(inner) == 0 {
		return false
	}
	for _, p := range inner {
		if !PointInPolygon(p, outer) {
			return false
		}
	}
	return true
}

// ScaleAboutCentroid returns the polygon scaled by factor about its centroid.
func ScaleAboutCentroid(polygon []Point2D, factor float64) []Point2D {
	center := Centroid(polygon)
	out := make([]Point2D, len(polygon))
	for i, p := range polygon {
		out[i] = Point2D{
			X: center.X + factor*(p.X-center.X),
			Y: center.Y + factor*(p.Y-center.Y),
		}
	}
	return out
}

// IntersectionArea returns the overlap area of two convex polygons.
// Returns 0 when the polygons do not overlap.
func IntersectionArea(a, b []Point2D) float64 {
	overlap := IntersectPolygons(a, b)
	if overlap == nil {
		return 0
	}
	return ShoelaceArea(overlap)
}
