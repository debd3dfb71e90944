package resources

import (
	"testing"

	"github.com/spaghettifunk/lumo/engine/math"
)

func indicesInRange(t *testing.T, g *Geometry) {
	t.Helper()
	if len(g.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(g.Indices))
	}
	for i, index := range g.Indices {
		if index >= uint32(len(g.Vertices)) {
			t.Fatalf("index %d at position %d out of range (vertex count %d)", index, i, len(g.Vertices))
		}
	}
}

func TestCubeGeometryCounts(t *testing.T) {
	g := NewCubeGeometry(2, 2, 2)

	if len(g.Vertices) != 24 {
		t.Errorf("vertex count = %d, want 24", len(g.Vertices))
	}
	if len(g.Indices) != 36 {
		t.Errorf("index count = %d, want 36", len(g.Indices))
	}
	indicesInRange(t, g)

	// Every vertex sits on the surface and its normal points away from
	// the center.
	for i, v := range g.Vertices {
		if v.Position.Dot(v.Normal) <= 0 {
			t.Errorf("vertex %d: normal %v does not face outward from %v", i, v.Normal, v.Position)
		}
	}
}

func TestCornellBoxGeometry(t *testing.T) {
	g := NewCornellBoxGeometry(2)

	if len(g.Vertices) != 20 {
		t.Errorf("vertex count = %d, want 20 (5 walls)", len(g.Vertices))
	}
	if len(g.Indices) != 30 {
		t.Errorf("index count = %d, want 30", len(g.Indices))
	}
	indicesInRange(t, g)

	red := math.NewVec3(0.63, 0.065, 0.05)
	green := math.NewVec3(0.14, 0.45, 0.091)

	var sawRed, sawGreen bool
	for i, v := range g.Vertices {
		// Normals point back into the box interior.
		if v.Position.Dot(v.Normal) >= 0 {
			t.Errorf("vertex %d: normal %v does not face inward from %v", i, v.Normal, v.Position)
		}
		switch v.Color {
		case red:
			sawRed = true
			if v.Position.X != -1 {
				t.Errorf("red vertex %d on X=%v, want the left wall", i, v.Position.X)
			}
		case green:
			sawGreen = true
			if v.Position.X != 1 {
				t.Errorf("green vertex %d on X=%v, want the right wall", i, v.Position.X)
			}
		}
	}
	if !sawRed || !sawGreen {
		t.Errorf("missing colored walls: red=%v green=%v", sawRed, sawGreen)
	}
}

func TestSphereGeometry(t *testing.T) {
	const rings, segments = 8, 16
	g := NewSphereGeometry(3, rings, segments)

	want := (rings + 1) * (segments + 1)
	if len(g.Vertices) != want {
		t.Errorf("vertex count = %d, want %d", len(g.Vertices), want)
	}
	if len(g.Indices) != rings*segments*6 {
		t.Errorf("index count = %d, want %d", len(g.Indices), rings*segments*6)
	}
	indicesInRange(t, g)

	for i, v := range g.Vertices {
		if r := v.Position.Length(); math.Abs(r-3) > 0.001 {
			t.Fatalf("vertex %d at radius %v, want 3", i, r)
		}
		if l := v.Normal.Length(); math.Abs(l-1) > 0.001 {
			t.Fatalf("vertex %d normal length %v, want 1", i, l)
		}
	}
}

func TestCylinderGeometry(t *testing.T) {
	const segments = 12
	g := NewCylinderGeometry(1, 4, segments)

	// Side ring pairs plus two cap fans with their own centers.
	wantVertices := (segments+1)*2 + 2*(segments+2)
	if len(g.Vertices) != wantVertices {
		t.Errorf("vertex count = %d, want %d", len(g.Vertices), wantVertices)
	}
	indicesInRange(t, g)

	for i, v := range g.Vertices {
		if v.Position.Y > 2.001 || v.Position.Y < -2.001 {
			t.Fatalf("vertex %d outside height bounds: Y=%v", i, v.Position.Y)
		}
	}
}

func TestBezierCurveEndpoints(t *testing.T) {
	curve := &BezierCurve{ControlPoints: []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 2, 0),
		math.NewVec3(3, 2, 1),
		math.NewVec3(4, 0, 1),
	}}

	if got := curve.ValueAt(0); got != curve.ControlPoints[0] {
		t.Errorf("ValueAt(0) = %v, want first control point %v", got, curve.ControlPoints[0])
	}
	if got := curve.ValueAt(1); got != curve.ControlPoints[3] {
		t.Errorf("ValueAt(1) = %v, want last control point %v", got, curve.ControlPoints[3])
	}

	// The start tangent of a cubic is 3*(P1-P0).
	wantTangent := curve.ControlPoints[1].Sub(curve.ControlPoints[0]).MulScalar(3)
	got := curve.TangentAt(0)
	if math.Abs(got.X-wantTangent.X) > 0.001 ||
		math.Abs(got.Y-wantTangent.Y) > 0.001 ||
		math.Abs(got.Z-wantTangent.Z) > 0.001 {
		t.Errorf("TangentAt(0) = %v, want %v", got, wantTangent)
	}
}

func TestBinomialCoefficients(t *testing.T) {
	cases := []struct {
		n, k int
		want float32
	}{
		{0, 0, 1},
		{3, 0, 1},
		{3, 1, 3},
		{3, 2, 3},
		{3, 3, 1},
		{5, 2, 10},
		{3, 4, 0},
		{3, -1, 0},
	}
	for _, c := range cases {
		if got := binomial(c.n, c.k); got != c.want {
			t.Errorf("binomial(%d, %d) = %v, want %v", c.n, c.k, got, c.want)
		}
	}
}

func TestBezierTubeGeometry(t *testing.T) {
	curve := &BezierCurve{ControlPoints: []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(2, 1, 0),
		math.NewVec3(4, 0, 0),
	}}
	const segments, radial = 10, 6
	g := NewBezierTubeGeometry(curve, segments, radial, 0.25)

	want := (segments + 1) * (radial + 1)
	if len(g.Vertices) != want {
		t.Errorf("vertex count = %d, want %d", len(g.Vertices), want)
	}
	if len(g.Indices) != segments*radial*6 {
		t.Errorf("index count = %d, want %d", len(g.Indices), segments*radial*6)
	}
	indicesInRange(t, g)

	// Every ring vertex sits at tube radius from its ring center.
	for segment := 0; segment <= segments; segment++ {
		center := curve.ValueAt(float32(segment) / float32(segments))
		for r := 0; r <= radial; r++ {
			v := g.Vertices[segment*(radial+1)+r]
			if d := v.Position.Sub(center).Length(); math.Abs(d-0.25) > 0.001 {
				t.Fatalf("segment %d vertex %d at distance %v from ring center, want 0.25", segment, r, d)
			}
		}
	}
}
