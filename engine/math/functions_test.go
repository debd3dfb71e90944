package math

import "testing"

const testTolerance = 1e-5

func floatNear(a, b float32) bool {
	return Abs(a-b) <= testTolerance
}

func TestWrapRadians(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{0, 0},
		{K_PI, K_PI},
		{K_PI_2 + 0.5, 0.5},
		{-0.5, K_PI_2 - 0.5},
		{3 * K_HALF_PI, 3 * K_HALF_PI},
		{-K_PI_2 - 1, K_PI_2 - 1},
	}
	for _, c := range cases {
		if got := WrapRadians(c.in); !floatNear(got, c.want) {
			t.Errorf("WrapRadians(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float32{0, 45, 90, 180, 270, 360} {
		if got := RadToDeg(DegToRad(deg)); !floatNear(got, deg) {
			t.Errorf("round trip of %v degrees gave %v", deg, got)
		}
	}
	if !floatNear(DegToRad(180), K_PI) {
		t.Errorf("DegToRad(180) = %v, want pi", DegToRad(180))
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5, 0, 10) = %v", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp(-3, 0, 10) = %v", got)
	}
	if got := Clamp(float32(12.5), 0, 10); got != 10 {
		t.Errorf("Clamp(12.5, 0, 10) = %v", got)
	}
}

func TestVec3Operations(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)

	if got := x.Cross(y); !got.Compare(NewVec3(0, 0, 1), testTolerance) {
		t.Errorf("x cross y = %+v, want +z", got)
	}
	if got := y.Cross(x); !got.Compare(NewVec3(0, 0, -1), testTolerance) {
		t.Errorf("y cross x = %+v, want -z", got)
	}
	if got := x.Dot(y); got != 0 {
		t.Errorf("x dot y = %v, want 0", got)
	}

	v := NewVec3(3, 0, 4)
	if !floatNear(v.Length(), 5) {
		t.Errorf("|(3,0,4)| = %v, want 5", v.Length())
	}
	if n := v.Normalized(); !floatNear(n.Length(), 1) {
		t.Errorf("normalized length = %v, want 1", n.Length())
	}
}

func TestMat4TranslationMoves(t *testing.T) {
	m := NewMat4Translation(NewVec3(2, -3, 5))
	got := m.MulVec4(NewVec4(1, 1, 1, 1))
	want := NewVec4(3, -2, 6, 1)
	if !floatNear(got.X, want.X) || !floatNear(got.Y, want.Y) || !floatNear(got.Z, want.Z) {
		t.Errorf("translated point = %+v, want %+v", got, want)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4EulerXYZ(0.3, -0.7, 1.1).Mul(NewMat4Translation(NewVec3(1, 2, 3)))
	got := m.Mul(NewMat4Identity())
	for i := range got.Data {
		if !floatNear(got.Data[i], m.Data[i]) {
			t.Fatalf("m * identity differs at element %d: %v != %v", i, got.Data[i], m.Data[i])
		}
	}
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3)).Mul(NewMat4EulerY(0.5))
	product := m.Mul(m.Inverse())
	identity := NewMat4Identity()
	for i := range product.Data {
		if !floatNear(product.Data[i], identity.Data[i]) {
			t.Fatalf("m * m^-1 differs from identity at element %d: %v", i, product.Data[i])
		}
	}
}

func TestMat4EulerYRotates(t *testing.T) {
	// A quarter turn around Y maps +x onto -z for a column-vector convention
	// (or +z for a row-vector one); either way the x component must vanish
	// and length must be preserved.
	m := NewMat4EulerY(K_HALF_PI)
	got := m.MulVec4(NewVec4(1, 0, 0, 0))
	if !floatNear(got.X, 0) || !floatNear(got.Y, 0) || !floatNear(Abs(got.Z), 1) {
		t.Errorf("quarter turn of +x = %+v", got)
	}
}
