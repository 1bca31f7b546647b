// Package quadfit reduces noisy card contours to enclosing quadrilaterals
// and decides whether a contour is a plausible card shape.
package quadfit

import (
	"math"

	"mtg-scanner/pkg/geometry"
)

// maxFitVertices caps the simplified polygon size before quad enumeration.
// The 4-subset enumeration is combinatorial in the vertex count, so larger
// polygons are rejected rather than searched.
const maxFitVertices = 15

// Simplify removes short edges from a polygon by extending the two
// neighboring edges to a new point of intersection. The purpose is to
// approximate rounded near-quadrilaterals with sharp-cornered ones.
// Removal continues while the polygon has more than 4 vertices and its
// shortest edge is shorter than lengthCutoff times the perimeter.
// A maxIter of 0 means no iteration cap.
func Simplify(poly []geometry.Point2D, lengthCutoff float64, maxIter int) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(poly))
	copy(pts, poly)

	iter := 0
	for len(pts) > 4 {
		n := len(pts)
		total := 0.0
		shortest := 0
		shortestLen := math.Inf(1)
		for i := 0; i < n; i++ {
			d := pts[i].Distance(pts[(i+1)%n])
			total += d
			if d < shortestLen {
				shortestLen = d
				shortest = i
			}
		}
		if shortestLen >= lengthCutoff*total {
			break
		}

		next, ok := collapseEdge(pts, shortest)
		if !ok {
			break
		}
		pts = next

		iter++
		if maxIter > 0 && iter >= maxIter {
			break
		}
	}
	return pts
}

// SimplifyEdge performs a single simplification step targeting the edge
// at index k instead of the shortest edge. The edge is still subject to
// the length cutoff; a too-long edge leaves the polygon unchanged.
func SimplifyEdge(poly []geometry.Point2D, k int, lengthCutoff float64) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(poly))
	copy(pts, poly)

	n := len(pts)
	if n <= 4 || k < 0 || k >= n {
		return pts
	}
	total := geometry.Perimeter(pts)
	if pts[k].Distance(pts[(k+1)%n]) >= lengthCutoff*total {
		return pts
	}
	if next, ok := collapseEdge(pts, k); ok {
		return next
	}
	return pts
}

// collapseEdge replaces the edge starting at index k with the
// intersection of its two neighboring edges extended as lines. Returns
// false when the neighbors are parallel and no sharp corner exists.
func collapseEdge(pts []geometry.Point2D, k int) ([]geometry.Point2D, bool) {
	n := len(pts)
	prevA := pts[(k-1+n)%n]
	prevB := pts[k]
	nextA := pts[(k+1)%n]
	nextB := pts[(k+2)%n]
	ip, ok := geometry.LineIntersection(prevA, prevB, nextA, nextB)
	if !ok {
		return nil, false
	}

	pts[k] = ip
	drop := (k + 1) % n
	return append(pts[:drop], pts[drop+1:]...), true
}

// BoundingQuad returns the minimum-area quadrilateral that encloses the
// given convex hull. The hull is first simplified, then all 4-subsets of
// its edges are extended to lines and intersected to form candidate
// quads; candidates that fail to enclose the (slightly shrunk) hull are
// discarded. Returns false when no enclosing quad exists.
func BoundingQuad(hull []geometry.Point2D, lengthCutoff float64) ([]geometry.Point2D, bool) {
	simple := geometry.OrderPolygonPoints(Simplify(hull, lengthCutoff, 0))
	n := len(simple)
	if n < 4 || n > maxFitVertices {
		return nil, false
	}

	// Shrink the hull a hair about its centroid so candidate quads whose
	// edges coincide with hull edges still count as enclosing.
	shrunk := geometry.ScaleAboutCentroid(simple, 0.9999)

	edge := func(i int) (geometry.Point2D, geometry.Point2D) {
		return simple[i], simple[(i+1)%n]
	}

	var best []geometry.Point2D
	bestArea := math.Inf(1)
	for i := 0; i < n-3; i++ {
		for j := i + 1; j < n-2; j++ {
			for k := j + 1; k < n-1; k++ {
				for l := k + 1; l < n; l++ {
					quad, ok := quadFromEdges(edge, [4]int{i, j, k, l})
					if !ok {
						continue
					}
					if !geometry.ContainsPolygon(quad, shrunk) {
						continue
					}
					if area := geometry.ShoelaceArea(quad); area < bestArea {
						bestArea = area
						best = quad
					}
				}
			}
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// quadFromEdges intersects consecutive pairs of the four chosen edges,
// treated as infinite lines, to produce an ordered candidate quad.
// Returns false when any adjacent pair is parallel.
func quadFromEdges(edge func(int) (geometry.Point2D, geometry.Point2D), idx [4]int) ([]geometry.Point2D, bool) {
	corners := make([]geometry.Point2D, 4)
	for m := 0; m < 4; m++ {
		a1, a2 := edge(idx[m])
		b1, b2 := edge(idx[(m+1)%4])
		ip, ok := geometry.LineIntersection(a1, a2, b1, b2)
		if !ok {
			return nil, false
		}
		corners[m] = ip
	}
	return geometry.OrderPolygonPoints(corners), true
}

// CornerDiff measures how poorly the hull fills the four corner regions
// of its bounding quad, as a fraction in [0, 1]. Each corner region is
// the triangle cut off by a line through the "0.9 toward center" interior
// point, orthogonal to the corner-to-center direction. Cards fill their
// corners almost completely; rounded or irregular shapes do not.
func CornerDiff(hull, quad []geometry.Point2D) float64 {
	const regionSize = 0.9

	center := geometry.Centroid(quad)
	var quadCornerArea, hullCornerArea float64
	for _, corner := range quad {
		d := corner.Sub(center)
		interior := geometry.Point2D{
			X: center.X + regionSize*d.X,
			Y: center.Y + regionSize*d.Y,
		}
		// Segment through the interior point, orthogonal to corner-center
		perp := geometry.Point2D{X: d.Y, Y: -d.X}
		p0 := interior.Add(perp)
		p1 := interior.Sub(perp)

		crossings := clipSegmentToRing(p0, p1, quad)
		if len(crossings) < 2 {
			continue
		}
		tri := []geometry.Point2D{crossings[0], crossings[1], corner}
		quadCornerArea += geometry.ShoelaceArea(tri)
		hullCornerArea += geometry.IntersectionArea(geometry.OrderPolygonPoints(tri), hull)
	}

	if quadCornerArea <= 0 {
		return 1.0
	}
	return 1.0 - hullCornerArea/quadCornerArea
}

// clipSegmentToRing returns the points where segment a-b crosses the
// edges of a closed polygon ring.
func clipSegmentToRing(a, b geometry.Point2D, ring []geometry.Point2D) []geometry.Point2D {
	var crossings []geometry.Point2D
	n := len(ring)
	for i := 0; i < n; i++ {
		e1, e2 := ring[i], ring[(i+1)%n]
		ip, ok := geometry.LineIntersection(a, b, e1, e2)
		if !ok {
			continue
		}
		if !onSegment(ip, a, b) || !onSegment(ip, e1, e2) {
			continue
		}
		duplicate := false
		for _, c := range crossings {
			if c.Distance(ip) < 1e-9 {
				duplicate = true
				break
			}
		}
		if !duplicate {
			crossings = append(crossings, ip)
		}
	}
	return crossings
}

// onSegment reports whether p, already known to be on the line through
// a-b, lies within the segment a-b.
func onSegment(p, a, b geometry.Point2D) bool {
	const eps = 1e-9
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

// FormFactor returns area / (perimeter * shortest edge) for a polygon.
// A rectangle with the card aspect ratio of 63:88 scores about 0.29.
func FormFactor(poly []geometry.Point2D) float64 {
	perimeter := geometry.Perimeter(poly)
	minEdge := geometry.MinEdgeLength(poly)
	if perimeter <= 0 || minEdge <= 0 {
		return 0
	}
	return geometry.ShoelaceArea(poly) / (perimeter * minEdge)
}
