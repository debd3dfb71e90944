package components

import (
	"testing"
	"unsafe"

	"github.com/spaghettifunk/lumo/engine/math"
)

func TestCameraUniformBlockSize(t *testing.T) {
	if size := unsafe.Sizeof(CameraUniformBlock{}); size != 80 {
		t.Fatalf("camera uniform block is %d bytes, want 80", size)
	}
}

func TestOrbitAzimuthWraps(t *testing.T) {
	oc := NewOrbitControls(nil, math.NewVec3Zero(), 5)

	// Drag far enough to the left to go around several times.
	oc.apply(true, -10000, 0, 0)
	if oc.azimuth < 0 || oc.azimuth >= math.K_PI_2 {
		t.Errorf("azimuth %f escaped [0, 2*PI)", oc.azimuth)
	}

	oc.apply(true, 10000, 0, 0)
	if oc.azimuth < 0 || oc.azimuth >= math.K_PI_2 {
		t.Errorf("azimuth %f escaped [0, 2*PI) after reverse drag", oc.azimuth)
	}
}

func TestOrbitElevationStopsAtPoles(t *testing.T) {
	oc := NewOrbitControls(nil, math.NewVec3Zero(), 5)

	oc.apply(true, 0, 100000, 0)
	if oc.elevation > math.K_HALF_PI {
		t.Errorf("elevation %f exceeded +PI/2", oc.elevation)
	}
	oc.apply(true, 0, -200000, 0)
	if oc.elevation < -math.K_HALF_PI {
		t.Errorf("elevation %f exceeded -PI/2", oc.elevation)
	}
}

func TestOrbitDistanceClamped(t *testing.T) {
	oc := NewOrbitControls(nil, math.NewVec3Zero(), 5)

	// Zoom all the way in.
	oc.apply(false, 0, 0, 1e6)
	if oc.distance != minOrbitDistance {
		t.Errorf("distance = %f, want clamp at %f", oc.distance, minOrbitDistance)
	}

	// And all the way out.
	oc.apply(false, 0, 0, -1e6)
	if oc.distance != maxOrbitDistance {
		t.Errorf("distance = %f, want clamp at %f", oc.distance, maxOrbitDistance)
	}
}

func TestOrbitInitialDistanceClamped(t *testing.T) {
	oc := NewOrbitControls(nil, math.NewVec3Zero(), 1e9)
	if oc.distance != maxOrbitDistance {
		t.Errorf("construction should clamp distance, got %f", oc.distance)
	}
}

func TestOrbitPositionStaysOnSphere(t *testing.T) {
	center := math.NewVec3(1, 2, 3)
	oc := NewOrbitControls(nil, center, 7)

	for i := 0; i < 10; i++ {
		oc.apply(true, 137, 59, 0)
		radius := oc.position().Sub(center).Length()
		if math.Abs(radius-7) > 1e-3 {
			t.Fatalf("orbit radius drifted to %f, want 7", radius)
		}
	}
}

func TestOrbitSetAngles(t *testing.T) {
	oc := NewOrbitControls(nil, math.NewVec3Zero(), 5)

	oc.SetAngles(-math.K_HALF_PI, math.K_PI)
	if oc.azimuth < 0 || oc.azimuth >= math.K_PI_2 {
		t.Errorf("SetAngles should wrap the azimuth, got %f", oc.azimuth)
	}
	if oc.elevation != math.K_HALF_PI {
		t.Errorf("SetAngles should clamp the elevation to the pole, got %f", oc.elevation)
	}
}

func TestOrbitIgnoresDragWithoutButton(t *testing.T) {
	oc := NewOrbitControls(nil, math.NewVec3Zero(), 5)
	before := oc.azimuth
	oc.apply(false, 500, 500, 0)
	if oc.azimuth != before || oc.elevation != 0 {
		t.Errorf("orbit moved while the button was up")
	}
}
