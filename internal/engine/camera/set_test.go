package camera

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSet(t *testing.T) *Set {
	t.Helper()
	s := NewSet(800, 600, DefaultOptions())
	require.NoError(t, s.Add("perspective", NewPerspective(60, 800.0/600.0, 1, 10000), Locks{}))
	require.NoError(t, s.Add("ortho", NewOrthographic(-400, 400, 300, -300, 1, 10000), Locks{}))
	require.NoError(t, s.Add("top", NewOrthographic(-400, 400, 300, -300, 1, 100000), Locks{Rotate: true}))
	return s
}

func TestSetFirstAddedIsActive(t *testing.T) {
	s := newTestSet(t)

	assert.Equal(t, "perspective", s.ActiveName())
	assert.Equal(t, []string{"perspective", "ortho", "top"}, s.Names())

	enabled := 0
	s.Each(func(r *Rig) {
		if r.Controls.Enabled {
			enabled++
		}
	})
	assert.Equal(t, 1, enabled)
}

func TestSetAddDuplicate(t *testing.T) {
	s := newTestSet(t)
	err := s.Add("ortho", NewOrthographic(-1, 1, 1, -1, 1, 10), Locks{})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestSetAddConfiguresController(t *testing.T) {
	s := newTestSet(t)

	persp, err := s.Rig("perspective")
	require.NoError(t, err)
	assert.False(t, persp.Controls.NoZoom)

	top, err := s.Rig("top")
	require.NoError(t, err)
	assert.True(t, top.Controls.NoZoom, "orthographic rigs never zoom through the controller")
	assert.True(t, top.Controls.NoRotate)
	assert.False(t, top.Controls.NoPan)
	assert.Equal(t, float32(1), top.ZoomLevel())
}

func TestSetMakeActive(t *testing.T) {
	s := newTestSet(t)

	require.NoError(t, s.MakeActive("top"))
	assert.Equal(t, "top", s.ActiveName())
	s.Each(func(r *Rig) {
		assert.Equal(t, r.Name == "top", r.Controls.Enabled, r.Name)
	})
}

func TestSetMakeActiveUnknown(t *testing.T) {
	s := newTestSet(t)
	require.NoError(t, s.MakeActive("ortho"))

	err := s.MakeActive("fisheye")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "ortho", s.ActiveName())

	rig, _ := s.Rig("ortho")
	assert.True(t, rig.Controls.Enabled)
}

func TestSetUpdateWithoutRigs(t *testing.T) {
	s := NewSet(10, 10, DefaultOptions())
	assert.False(t, s.Update())
	assert.Nil(t, s.Active())
}

func TestSetUpdateStepsOnlyActive(t *testing.T) {
	s := NewSet(100, 100, DefaultOptions())
	a := NewPerspective(60, 1, 1, 100)
	b := NewPerspective(60, 1, 1, 100)
	for _, c := range []*Perspective{a, b} {
		c.Transform().Position = mgl32.Vec3{0, 0, 10}
		c.Transform().LookAt(mgl32.Vec3{})
	}
	require.NoError(t, s.Add("a", a, Locks{}))
	require.NoError(t, s.Add("b", b, Locks{}))

	rb, _ := s.Rig("b")
	rb.Controls.zoomStart[1] = 0.5 // pending motion on an inactive rig

	ra, _ := s.Rig("a")
	ra.Controls.Wheel(10)

	changes := 0
	s.OnChange(func() { changes++ })
	assert.True(t, s.Update())

	assert.InDelta(t, 8.8, a.Transform().Position.Z(), 1e-4)
	assert.Equal(t, float32(10), b.Transform().Position.Z())
	assert.Equal(t, 1, changes)
}

func TestSetResize(t *testing.T) {
	s := newTestSet(t)
	s.Resize(1000, 500)

	persp, _ := s.Rig("perspective")
	assert.InDelta(t, 2.0, persp.Camera.(*Perspective).Aspect, 1e-6)

	ortho, _ := s.Rig("ortho")
	c := ortho.Camera.(*Orthographic)
	assert.Equal(t, float32(-500), c.Left)
	assert.Equal(t, float32(500), c.Right)
	assert.Equal(t, float32(250), c.Top)
	assert.Equal(t, float32(-250), c.Bottom)

	assert.Equal(t, float32(1000), ortho.Controls.width)
}

func TestSetResizeKeepsZoomLevel(t *testing.T) {
	s := newTestSet(t)
	require.NoError(t, s.SetZoomLevel("ortho", 2))

	s.Resize(800, 600)

	ortho, _ := s.Rig("ortho")
	c := ortho.Camera.(*Orthographic)
	assert.Equal(t, float32(-800), c.Left)
	assert.Equal(t, float32(800), c.Right)
	assert.Equal(t, float32(600), c.Top)
	assert.Equal(t, float32(-600), c.Bottom)

	top, _ := s.Rig("top")
	assert.Equal(t, float32(400), top.Camera.(*Orthographic).Right)

	persp, _ := s.Rig("perspective")
	assert.InDelta(t, 800.0/600.0, persp.Camera.(*Perspective).Aspect, 1e-6)

	require.Error(t, s.MakeActive("nope"))
	assert.Equal(t, "perspective", s.ActiveName())
}

func TestSetPlanesUsesZoomLevel(t *testing.T) {
	s := newTestSet(t)
	require.NoError(t, s.SetZoomLevel("top", 2))

	s.SetPlanes(-10, 10, 10, -10)

	ortho, _ := s.Rig("ortho")
	assert.Equal(t, float32(10), ortho.Camera.(*Orthographic).Right)

	top, _ := s.Rig("top")
	assert.Equal(t, float32(20), top.Camera.(*Orthographic).Right)
	assert.Equal(t, float32(-20), top.Camera.(*Orthographic).Bottom)

	persp, _ := s.Rig("perspective")
	assert.Equal(t, float32(1), persp.ZoomLevel())
}

func TestSetZoomLevelUnknown(t *testing.T) {
	s := newTestSet(t)
	assert.True(t, errors.Is(s.SetZoomLevel("nope", 2), ErrNotFound))
}

func TestSetNearFarAndFov(t *testing.T) {
	s := newTestSet(t)
	s.SetNearFar(2, 400)
	s.SetFov(45)

	s.Each(func(r *Rig) {
		switch c := r.Camera.(type) {
		case *Perspective:
			assert.Equal(t, float32(2), c.Near)
			assert.Equal(t, float32(400), c.Far)
			assert.Equal(t, float32(45), c.Fov)
		case *Orthographic:
			assert.Equal(t, float32(2), c.Near)
			assert.Equal(t, float32(400), c.Far)
		}
	})
}

func TestSetReset(t *testing.T) {
	s := newTestSet(t)
	rig, _ := s.Rig("perspective")
	start := rig.Camera.Transform().Position

	rig.Controls.Wheel(10)
	rig.Camera.Transform().Position = mgl32.Vec3{0, 0, 50}
	s.Update()

	s.Reset()
	assert.Equal(t, start, rig.Camera.Transform().Position)
}
