package resources

import (
	"github.com/spaghettifunk/lumo/engine/math"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

// Geometry is a CPU-side mesh: interleaved vertices plus a triangle index
// list, ready to be handed to the renderer.
type Geometry struct {
	Vertices []metadata.Vertex
	Indices  []uint32
}

var white = math.NewVec3One()

func quad(geometry *Geometry, a, b, c, d metadata.Vertex) {
	base := uint32(len(geometry.Vertices))
	geometry.Vertices = append(geometry.Vertices, a, b, c, d)
	geometry.Indices = append(geometry.Indices,
		base, base+1, base+2,
		base, base+2, base+3)
}

// NewCubeGeometry builds an axis-aligned cube centered at the origin with
// outward normals: 4 vertices and 2 triangles per face.
func NewCubeGeometry(width, height, depth float32) *Geometry {
	hw, hh, hd := width/2, height/2, depth/2
	g := &Geometry{}

	faces := []struct {
		normal  math.Vec3
		corners [4]math.Vec3
	}{
		// +Z
		{math.NewVec3(0, 0, 1), [4]math.Vec3{{X: -hw, Y: -hh, Z: hd}, {X: hw, Y: -hh, Z: hd}, {X: hw, Y: hh, Z: hd}, {X: -hw, Y: hh, Z: hd}}},
		// -Z
		{math.NewVec3(0, 0, -1), [4]math.Vec3{{X: hw, Y: -hh, Z: -hd}, {X: -hw, Y: -hh, Z: -hd}, {X: -hw, Y: hh, Z: -hd}, {X: hw, Y: hh, Z: -hd}}},
		// +X
		{math.NewVec3(1, 0, 0), [4]math.Vec3{{X: hw, Y: -hh, Z: hd}, {X: hw, Y: -hh, Z: -hd}, {X: hw, Y: hh, Z: -hd}, {X: hw, Y: hh, Z: hd}}},
		// -X
		{math.NewVec3(-1, 0, 0), [4]math.Vec3{{X: -hw, Y: -hh, Z: -hd}, {X: -hw, Y: -hh, Z: hd}, {X: -hw, Y: hh, Z: hd}, {X: -hw, Y: hh, Z: -hd}}},
		// +Y
		{math.NewVec3(0, 1, 0), [4]math.Vec3{{X: -hw, Y: hh, Z: hd}, {X: hw, Y: hh, Z: hd}, {X: hw, Y: hh, Z: -hd}, {X: -hw, Y: hh, Z: -hd}}},
		// -Y
		{math.NewVec3(0, -1, 0), [4]math.Vec3{{X: -hw, Y: -hh, Z: -hd}, {X: hw, Y: -hh, Z: -hd}, {X: hw, Y: -hh, Z: hd}, {X: -hw, Y: -hh, Z: hd}}},
	}

	uvs := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for _, face := range faces {
		var verts [4]metadata.Vertex
		for i := range face.corners {
			verts[i] = metadata.Vertex{
				Position: face.corners[i],
				Color:    white,
				Normal:   face.normal,
				Texcoord: uvs[i],
			}
		}
		quad(g, verts[0], verts[1], verts[2], verts[3])
	}
	return g
}

// NewCornellBoxGeometry builds the classic five-walled box: open toward
// +Z, normals pointing inward, red left wall, green right wall, white
// everywhere else.
func NewCornellBoxGeometry(size float32) *Geometry {
	h := size / 2
	g := &Geometry{}

	red := math.NewVec3(0.63, 0.065, 0.05)
	green := math.NewVec3(0.14, 0.45, 0.091)

	walls := []struct {
		color   math.Vec3
		normal  math.Vec3
		corners [4]math.Vec3
	}{
		// Floor, normal up.
		{white, math.NewVec3(0, 1, 0), [4]math.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}}},
		// Ceiling, normal down.
		{white, math.NewVec3(0, -1, 0), [4]math.Vec3{{X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		// Back wall, normal toward the viewer.
		{white, math.NewVec3(0, 0, 1), [4]math.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		// Left wall, normal right.
		{red, math.NewVec3(1, 0, 0), [4]math.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: -h, Y: h, Z: h}, {X: -h, Y: -h, Z: h}}},
		// Right wall, normal left.
		{green, math.NewVec3(-1, 0, 0), [4]math.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: h, Y: -h, Z: -h}}},
	}

	uvs := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	for _, wall := range walls {
		var verts [4]metadata.Vertex
		for i := range wall.corners {
			verts[i] = metadata.Vertex{
				Position: wall.corners[i],
				Color:    wall.color,
				Normal:   wall.normal,
				Texcoord: uvs[i],
			}
		}
		quad(g, verts[0], verts[1], verts[2], verts[3])
	}
	return g
}

// NewSphereGeometry builds a UV sphere: rings latitude bands, segments
// longitude slices. Normals point out of the center, so it lights
// smoothly at any tessellation.
func NewSphereGeometry(radius float32, rings, segments int) *Geometry {
	g := &Geometry{}

	for ring := 0; ring <= rings; ring++ {
		v := float32(ring) / float32(rings)
		phi := v * math.K_PI
		for segment := 0; segment <= segments; segment++ {
			u := float32(segment) / float32(segments)
			theta := u * math.K_PI_2

			normal := math.NewVec3(
				math.Sin(phi)*math.Cos(theta),
				math.Cos(phi),
				math.Sin(phi)*math.Sin(theta),
			)
			g.Vertices = append(g.Vertices, metadata.Vertex{
				Position: normal.MulScalar(radius),
				Color:    white,
				Normal:   normal,
				Texcoord: math.NewVec2(u, v),
			})
		}
	}

	stride := uint32(segments + 1)
	for ring := uint32(0); ring < uint32(rings); ring++ {
		for segment := uint32(0); segment < uint32(segments); segment++ {
			i0 := ring*stride + segment
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			g.Indices = append(g.Indices,
				i0, i2, i1,
				i1, i2, i3)
		}
	}
	return g
}

// NewCylinderGeometry builds a capped cylinder around the Y axis. The
// side uses smooth radial normals; the caps are flat fans.
func NewCylinderGeometry(radius, height float32, segments int) *Geometry {
	g := &Geometry{}
	hh := height / 2

	// Side.
	for segment := 0; segment <= segments; segment++ {
		u := float32(segment) / float32(segments)
		theta := u * math.K_PI_2
		normal := math.NewVec3(math.Cos(theta), 0, math.Sin(theta))

		top := metadata.Vertex{
			Position: math.NewVec3(normal.X*radius, hh, normal.Z*radius),
			Color:    white,
			Normal:   normal,
			Texcoord: math.NewVec2(u, 0),
		}
		bottom := metadata.Vertex{
			Position: math.NewVec3(normal.X*radius, -hh, normal.Z*radius),
			Color:    white,
			Normal:   normal,
			Texcoord: math.NewVec2(u, 1),
		}
		g.Vertices = append(g.Vertices, top, bottom)
	}
	for segment := uint32(0); segment < uint32(segments); segment++ {
		i0 := segment * 2
		g.Indices = append(g.Indices,
			i0, i0+1, i0+2,
			i0+2, i0+1, i0+3)
	}

	// Caps: a center vertex plus the rim.
	for _, lid := range []struct {
		y      float32
		normal math.Vec3
	}{
		{hh, math.NewVec3Up()},
		{-hh, math.NewVec3(0, -1, 0)},
	} {
		center := uint32(len(g.Vertices))
		g.Vertices = append(g.Vertices, metadata.Vertex{
			Position: math.NewVec3(0, lid.y, 0),
			Color:    white,
			Normal:   lid.normal,
			Texcoord: math.NewVec2(0.5, 0.5),
		})
		for segment := 0; segment <= segments; segment++ {
			theta := float32(segment) / float32(segments) * math.K_PI_2
			x, z := math.Cos(theta), math.Sin(theta)
			g.Vertices = append(g.Vertices, metadata.Vertex{
				Position: math.NewVec3(x*radius, lid.y, z*radius),
				Color:    white,
				Normal:   lid.normal,
				Texcoord: math.NewVec2(0.5+x/2, 0.5+z/2),
			})
		}
		for segment := uint32(0); segment < uint32(segments); segment++ {
			rim := center + 1 + segment
			if lid.normal.Y > 0 {
				g.Indices = append(g.Indices, center, rim+1, rim)
			} else {
				g.Indices = append(g.Indices, center, rim, rim+1)
			}
		}
	}
	return g
}

// BezierCurve is a Bezier curve of arbitrary degree over its control
// points.
type BezierCurve struct {
	ControlPoints []math.Vec3
}

func binomial(n, k int) float32 {
	if k < 0 || k > n {
		return 0
	}
	result := float32(1)
	for i := 0; i < k; i++ {
		result = result * float32(n-i) / float32(i+1)
	}
	return result
}

// ValueAt evaluates the curve at t in [0, 1] via the Bernstein form.
func (bc *BezierCurve) ValueAt(t float32) math.Vec3 {
	n := len(bc.ControlPoints) - 1
	point := math.NewVec3Zero()
	for i, control := range bc.ControlPoints {
		weight := binomial(n, i) * powf(1-t, n-i) * powf(t, i)
		point = point.Add(control.MulScalar(weight))
	}
	return point
}

// TangentAt evaluates the curve's derivative at t. The result is not
// normalized.
func (bc *BezierCurve) TangentAt(t float32) math.Vec3 {
	n := len(bc.ControlPoints) - 1
	tangent := math.NewVec3Zero()
	for i := 0; i < n; i++ {
		delta := bc.ControlPoints[i+1].Sub(bc.ControlPoints[i])
		weight := binomial(n-1, i) * powf(1-t, n-1-i) * powf(t, i) * float32(n)
		tangent = tangent.Add(delta.MulScalar(weight))
	}
	return tangent
}

func powf(base float32, exp int) float32 {
	result := float32(1)
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// NewBezierTubeGeometry sweeps a circle of the given radius along the
// curve, producing a tube with segments slices along the curve and
// radial vertices around it.
func NewBezierTubeGeometry(curve *BezierCurve, segments, radial int, radius float32) *Geometry {
	g := &Geometry{}

	for segment := 0; segment <= segments; segment++ {
		t := float32(segment) / float32(segments)
		center := curve.ValueAt(t)
		tangent := curve.TangentAt(t).Normalized()

		// Build a frame around the tangent. Fall back when the tangent
		// is parallel to the reference up vector.
		up := math.NewVec3Up()
		if math.Abs(tangent.Dot(up)) > 0.99 {
			up = math.NewVec3(1, 0, 0)
		}
		side := tangent.Cross(up).Normalized()
		lift := side.Cross(tangent)

		for r := 0; r <= radial; r++ {
			theta := float32(r) / float32(radial) * math.K_PI_2
			normal := side.MulScalar(math.Cos(theta)).Add(lift.MulScalar(math.Sin(theta)))
			g.Vertices = append(g.Vertices, metadata.Vertex{
				Position: center.Add(normal.MulScalar(radius)),
				Color:    white,
				Normal:   normal,
				Texcoord: math.NewVec2(t, float32(r)/float32(radial)),
			})
		}
	}

	stride := uint32(radial + 1)
	for segment := uint32(0); segment < uint32(segments); segment++ {
		for r := uint32(0); r < uint32(radial); r++ {
			i0 := segment*stride + r
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			g.Indices = append(g.Indices,
				i0, i1, i2,
				i1, i3, i2)
		}
	}
	return g
}
