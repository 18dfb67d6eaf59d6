// Package camera provides the viewer's cameras, the trackball controller and
// the named camera set that switches between them.
package camera

import "github.com/go-gl/mathgl/mgl32"

// Camera is a viewpoint with a projection.
type Camera interface {
	// Transform returns the camera placement. Changes take effect immediately.
	Transform() *Transform
	View() mgl32.Mat4
	// Projection returns the matrix computed by the last UpdateProjection.
	Projection() mgl32.Mat4
	UpdateProjection()
	SetNearFar(near, far float32)
}

// Transform places a camera in the world.
type Transform struct {
	Position mgl32.Vec3
	Up       mgl32.Vec3
	Target   mgl32.Vec3
}

// NewTransform returns a transform at the origin looking down -Z with +Y up.
func NewTransform() Transform {
	return Transform{
		Up:     mgl32.Vec3{0, 1, 0},
		Target: mgl32.Vec3{0, 0, -1},
	}
}

// LookAt points the camera at target.
func (t *Transform) LookAt(target mgl32.Vec3) {
	t.Target = target
}

// View returns the world-to-camera matrix.
func (t *Transform) View() mgl32.Mat4 {
	up := t.Up
	// Looking straight along up would make the basis degenerate.
	dir := t.Target.Sub(t.Position)
	if dir.Len() > 0 && up.Len() > 0 && dir.Normalize().Cross(up.Normalize()).Len() < 1e-6 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(t.Position, t.Target, up)
}

// Perspective is a pinhole camera.
type Perspective struct {
	tr Transform

	Fov    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	proj mgl32.Mat4
}

// NewPerspective creates a perspective camera and computes its projection.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	c := &Perspective{tr: NewTransform(), Fov: fov, Aspect: aspect, Near: near, Far: far}
	c.UpdateProjection()
	return c
}

func (c *Perspective) Transform() *Transform  { return &c.tr }
func (c *Perspective) View() mgl32.Mat4       { return c.tr.View() }
func (c *Perspective) Projection() mgl32.Mat4 { return c.proj }

// UpdateProjection recomputes the projection from Fov, Aspect, Near and Far.
func (c *Perspective) UpdateProjection() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// SetNearFar sets the clip distances and recomputes the projection.
func (c *Perspective) SetNearFar(near, far float32) {
	c.Near, c.Far = near, far
	c.UpdateProjection()
}

// Orthographic is a parallel projection camera.
type Orthographic struct {
	tr Transform

	Left, Right float32
	Top, Bottom float32
	Near, Far   float32

	proj mgl32.Mat4
}

// NewOrthographic creates an orthographic camera and computes its projection.
func NewOrthographic(left, right, top, bottom, near, far float32) *Orthographic {
	c := &Orthographic{
		tr:   NewTransform(),
		Left: left, Right: right,
		Top: top, Bottom: bottom,
		Near: near, Far: far,
	}
	c.UpdateProjection()
	return c
}

func (c *Orthographic) Transform() *Transform  { return &c.tr }
func (c *Orthographic) View() mgl32.Mat4       { return c.tr.View() }
func (c *Orthographic) Projection() mgl32.Mat4 { return c.proj }

// UpdateProjection recomputes the projection from the planes.
func (c *Orthographic) UpdateProjection() {
	c.proj = mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
}

// SetNearFar sets the clip distances and recomputes the projection.
func (c *Orthographic) SetNearFar(near, far float32) {
	c.Near, c.Far = near, far
	c.UpdateProjection()
}

// SetPlanes sets the four side planes and recomputes the projection.
func (c *Orthographic) SetPlanes(left, right, top, bottom float32) {
	c.Left, c.Right, c.Top, c.Bottom = left, right, top, bottom
	c.UpdateProjection()
}

// ViewProjection returns projection * view for c.
func ViewProjection(c Camera) mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Project maps a world point to window coordinates with the origin at the
// top-left corner. The returned depth is the NDC z; points behind the camera
// have w <= 0 and are reported with ok=false.
func Project(c Camera, p mgl32.Vec3, width, height int) (screen mgl32.Vec2, depth float32, ok bool) {
	clip := ViewProjection(c).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec2{}, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	screen = mgl32.Vec2{
		(ndc.X() + 1) / 2 * float32(width),
		(1 - ndc.Y()) / 2 * float32(height),
	}
	return screen, ndc.Z(), true
}
