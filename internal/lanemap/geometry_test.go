package lanemap

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const floatTolerance = 1e-12

func line(id ID, attrs Attributes, pts ...Point) LineString {
	return LineString{ID: id, Attributes: attrs, Points: pts}
}

func TestMidpoint(t *testing.T) {
	ls := line(1, nil, Point{ID: 10, X: 0, Y: 0}, Point{ID: 11, X: 10, Y: 4, Z: 2})
	mid, err := Midpoint(ls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := r3.Vec{X: 5, Y: 2, Z: 1}
	if math.Abs(mid.X-want.X) > floatTolerance ||
		math.Abs(mid.Y-want.Y) > floatTolerance ||
		math.Abs(mid.Z-want.Z) > floatTolerance {
		t.Errorf("Midpoint = %+v, want %+v", mid, want)
	}
}

func TestMidpointIgnoresInteriorPoints(t *testing.T) {
	// Only the first and last point feed the midpoint.
	ls := line(2, nil,
		Point{ID: 10, X: 0, Y: 0},
		Point{ID: 11, X: 100, Y: 100},
		Point{ID: 12, X: 10, Y: 0},
	)
	mid, err := Midpoint(ls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mid.X != 5 || mid.Y != 0 {
		t.Errorf("Midpoint = %+v, want (5, 0)", mid)
	}
}

func TestMidpointTooFewPoints(t *testing.T) {
	for _, pts := range [][]Point{nil, {{ID: 10, X: 1, Y: 2}}} {
		ls := LineString{ID: 3, Points: pts}
		if _, err := Midpoint(ls); err == nil {
			t.Errorf("Midpoint with %d points: expected error, got nil", len(pts))
		}
	}
}

func TestDirection(t *testing.T) {
	ls := line(4, nil, Point{ID: 10, X: 1, Y: 1}, Point{ID: 11, X: 4, Y: 5})
	dir, err := Direction(ls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir.X != 3 || dir.Y != 4 || dir.Z != 0 {
		t.Errorf("Direction = %+v, want (3, 4, 0)", dir)
	}

	if _, err := Direction(LineString{ID: 5}); err == nil {
		t.Error("Direction of empty linestring: expected error, got nil")
	}
}

func TestSineBetween2D(t *testing.T) {
	tests := []struct {
		name string
		a, b r3.Vec
		want float64
	}{
		{"perpendicular ccw", r3.Vec{X: 1}, r3.Vec{Y: 1}, 1},
		{"perpendicular cw", r3.Vec{X: 1}, r3.Vec{Y: -1}, -1},
		{"parallel", r3.Vec{X: 2}, r3.Vec{X: 5}, 0},
		{"antiparallel", r3.Vec{X: 2}, r3.Vec{X: -5}, 0},
		{"45 degrees", r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, math.Sqrt2 / 2},
		{"z component ignored", r3.Vec{X: 1, Z: 100}, r3.Vec{Y: 1, Z: -3}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SineBetween2D(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("SineBetween2D = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSineBetween2DZeroLength(t *testing.T) {
	if _, err := SineBetween2D(r3.Vec{}, r3.Vec{X: 1}); err == nil {
		t.Error("zero-length a: expected error, got nil")
	}
	if _, err := SineBetween2D(r3.Vec{X: 1}, r3.Vec{}); err == nil {
		t.Error("zero-length b: expected error, got nil")
	}
	// A vector with only a Z component has zero planar length.
	if _, err := SineBetween2D(r3.Vec{Z: 5}, r3.Vec{X: 1}); err == nil {
		t.Error("z-only vector: expected error, got nil")
	}
}

func TestCosineBetween(t *testing.T) {
	cos, err := CosineBetween(r3.Vec{X: 1}, r3.Vec{X: -2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(cos+1) > 1e-9 {
		t.Errorf("CosineBetween = %v, want -1", cos)
	}

	if _, err := CosineBetween(r3.Vec{}, r3.Vec{X: 1}); err == nil {
		t.Error("zero-length vector: expected error, got nil")
	}
}

func TestPolygonBoundingBox(t *testing.T) {
	poly := Polygon{ID: 1, Points: []Point{
		{ID: 10, X: 0, Y: 0},
		{ID: 11, X: 10, Y: 2},
		{ID: 12, X: 4, Y: 8},
	}}
	bbox, ok := PolygonBoundingBox(poly)
	if !ok {
		t.Fatal("expected bounding box for non-empty polygon")
	}
	want := BoundingBox2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 8}
	if bbox != want {
		t.Errorf("bbox = %+v, want %+v", bbox, want)
	}

	if _, ok := PolygonBoundingBox(Polygon{ID: 2}); ok {
		t.Error("expected no bounding box for empty polygon")
	}
}

func TestLaneletWithinBox(t *testing.T) {
	bbox := BoundingBox2D{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	inside := Lanelet{
		ID:         1,
		LeftBound:  line(10, nil, Point{ID: 100, X: 1, Y: 1}, Point{ID: 101, X: 9, Y: 1}),
		RightBound: line(11, nil, Point{ID: 102, X: 1, Y: 3}, Point{ID: 103, X: 9, Y: 3}),
	}
	if !LaneletWithinBox(bbox, inside) {
		t.Error("lanelet fully inside the box reported outside")
	}

	straddling := inside
	straddling.RightBound = line(12, nil, Point{ID: 104, X: 1, Y: 3}, Point{ID: 105, X: 15, Y: 3})
	if LaneletWithinBox(bbox, straddling) {
		t.Error("lanelet crossing the box border reported inside")
	}

	empty := Lanelet{ID: 2}
	if LaneletWithinBox(bbox, empty) {
		t.Error("lanelet with empty bounds reported inside")
	}
}
