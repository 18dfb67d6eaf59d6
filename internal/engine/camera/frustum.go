package camera

import "github.com/go-gl/mathgl/mgl32"

// Plane is Normal·p + D = 0 with the normal pointing into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

func (p *Plane) normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Mul(1 / l)
	p.D /= l
}

// Distance returns the signed distance from the plane to point.
func (p Plane) Distance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six clip planes: left, right, bottom, top, near, far.
type Frustum [6]Plane

// NewFrustum extracts the clip planes of a column-major view-projection
// matrix (Gribb/Hartmann).
func NewFrustum(m mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return m.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]mgl32.Vec4{
		r3.Add(r0), r3.Sub(r0),
		r3.Add(r1), r3.Sub(r1),
		r3.Add(r2), r3.Sub(r2),
	}

	var f Frustum
	for i, p := range planes {
		f[i] = Plane{Normal: p.Vec3(), D: p.W()}
		f[i].normalize()
	}
	return f
}

// FrustumOf returns the frustum of a camera.
func FrustumOf(c Camera) Frustum {
	return NewFrustum(ViewProjection(c))
}

// Contains reports whether point is inside all six planes.
func (f Frustum) Contains(point mgl32.Vec3) bool {
	for _, p := range f {
		if p.Distance(point) < 0 {
			return false
		}
	}
	return true
}
