package lanemap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// zeroLengthEpsilon is the threshold below which a vector is treated as
// degenerate for angle computations. Dividing by norms smaller than this
// would amplify coordinate noise into meaningless judgments.
const zeroLengthEpsilon = 1e-9

// Vec returns the point as a gonum 3D vector.
func (p Point) Vec() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// Direction returns the start-to-end vector of the linestring. An error is
// returned when the linestring has fewer than two points.
func Direction(ls LineString) (r3.Vec, error) {
	if len(ls.Points) < 2 {
		return r3.Vec{}, fmt.Errorf("linestring %d must have at least two points to compute a direction", ls.ID)
	}
	return r3.Sub(ls.Back().Vec(), ls.Front().Vec()), nil
}

// Midpoint returns the arithmetic mean of the first and last point of the
// linestring. An error is returned when the linestring has fewer than two
// points.
func Midpoint(ls LineString) (r3.Vec, error) {
	if len(ls.Points) < 2 {
		return r3.Vec{}, fmt.Errorf("linestring %d must have at least two points to compute a midpoint", ls.ID)
	}
	return r3.Scale(0.5, r3.Add(ls.Front().Vec(), ls.Back().Vec())), nil
}

// SineBetween2D computes the sine of the angle from a to b in the X-Y plane
// (the signed-sine formula: 2D cross product over the product of magnitudes).
// An error is returned when either vector has near-zero planar length; the
// angle is undefined there and continuing would propagate NaN.
func SineBetween2D(a, b r3.Vec) (float64, error) {
	na := math.Hypot(a.X, a.Y)
	nb := math.Hypot(b.X, b.Y)
	if na < zeroLengthEpsilon || nb < zeroLengthEpsilon {
		return 0, fmt.Errorf("cannot compute angle between zero-length vectors (|a|=%g, |b|=%g)", na, nb)
	}
	cross := a.X*b.Y - a.Y*b.X
	return cross / (na * nb), nil
}

// CosineBetween computes the cosine of the angle between a and b in 3D.
// An error is returned when either vector has near-zero length.
func CosineBetween(a, b r3.Vec) (float64, error) {
	na := r3.Norm(a)
	nb := r3.Norm(b)
	if na < zeroLengthEpsilon || nb < zeroLengthEpsilon {
		return 0, fmt.Errorf("cannot compute angle between zero-length vectors (|a|=%g, |b|=%g)", na, nb)
	}
	return r3.Dot(a, b) / (na * nb), nil
}

// BoundingBox2D is an axis-aligned rectangle in the X-Y plane.
type BoundingBox2D struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// PolygonBoundingBox computes the 2D bounding box of a polygon's points.
// The second return value is false for polygons with no points.
func PolygonBoundingBox(poly Polygon) (BoundingBox2D, bool) {
	if len(poly.Points) == 0 {
		return BoundingBox2D{}, false
	}
	b := BoundingBox2D{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range poly.Points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b, true
}

// Contains reports whether the point lies inside the box (borders included).
func (b BoundingBox2D) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// LaneletWithinBox reports whether every point of both lanelet bounds lies
// inside the box.
func LaneletWithinBox(b BoundingBox2D, ll Lanelet) bool {
	for _, p := range ll.LeftBound.Points {
		if !b.Contains(p) {
			return false
		}
	}
	for _, p := range ll.RightBound.Points {
		if !b.Contains(p) {
			return false
		}
	}
	return len(ll.LeftBound.Points) > 0 && len(ll.RightBound.Points) > 0
}
