package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrackball() (*Perspective, *Trackball) {
	cam := NewPerspective(60, 1, 1, 1000)
	cam.Transform().Position = mgl32.Vec3{0, 0, 10}
	cam.Transform().LookAt(mgl32.Vec3{})

	tb := NewTrackball(cam, DefaultOptions())
	tb.HandleResize(100, 100)
	return cam, tb
}

func TestTrackballZoomDrag(t *testing.T) {
	cam, tb := newTestTrackball()

	tb.PointerDown(ButtonZoom, 50, 50)
	tb.PointerMove(50, 60)
	require.True(t, tb.Update())

	// factor = 1 + 0.1 * 1.2
	assert.InDelta(t, 11.2, cam.Transform().Position.Z(), 1e-4)
}

func TestTrackballWheelZoomsIn(t *testing.T) {
	cam, tb := newTestTrackball()

	tb.Wheel(10)
	tb.Update()

	// factor = 1 - 0.1 * 1.2
	assert.InDelta(t, 8.8, cam.Transform().Position.Z(), 1e-4)
}

func TestTrackballPan(t *testing.T) {
	cam, tb := newTestTrackball()

	tb.PointerDown(ButtonPan, 50, 50)
	tb.PointerMove(60, 50)
	tb.Update()

	tr := cam.Transform()
	assert.InDelta(t, -0.8, tr.Position.X(), 1e-4)
	assert.InDelta(t, -0.8, tr.Target.X(), 1e-4)
	assert.InDelta(t, 10, tr.Position.Z(), 1e-4)
}

func TestTrackballRotateKeepsDistance(t *testing.T) {
	cam, tb := newTestTrackball()

	tb.PointerDown(ButtonRotate, 50, 50)
	tb.PointerMove(60, 50)
	tb.Update()

	tr := cam.Transform()
	assert.Less(t, tr.Position.X(), float32(-1))
	assert.InDelta(t, 10, tr.Position.Len(), 1e-3)
	assert.Equal(t, mgl32.Vec3{}, tr.Target)
}

func TestTrackballDampingDecays(t *testing.T) {
	cam, tb := newTestTrackball()

	tb.PointerDown(ButtonRotate, 50, 50)
	tb.PointerMove(70, 50)
	tb.PointerUp()

	prev := cam.Transform().Position
	tb.Update()
	first := cam.Transform().Position.Sub(prev).Len()

	prev = cam.Transform().Position
	tb.Update()
	second := cam.Transform().Position.Sub(prev).Len()

	assert.Greater(t, first, float32(0))
	assert.Greater(t, second, float32(0), "motion continues after release")
	assert.Less(t, second, first)
}

func TestTrackballDisabledIgnoresInput(t *testing.T) {
	cam, tb := newTestTrackball()
	tb.Enabled = false

	tb.PointerDown(ButtonZoom, 50, 50)
	tb.PointerMove(50, 90)
	tb.Wheel(20)
	assert.False(t, tb.Update())
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, cam.Transform().Position)
}

func TestTrackballLocks(t *testing.T) {
	cam, tb := newTestTrackball()
	tb.NoRotate = true
	tb.NoPan = true

	tb.PointerDown(ButtonRotate, 50, 50)
	tb.PointerMove(90, 50)
	tb.PointerUp()
	tb.PointerDown(ButtonPan, 50, 50)
	tb.PointerMove(90, 50)

	assert.False(t, tb.Update())
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, cam.Transform().Position)
}

func TestTrackballResetAndChange(t *testing.T) {
	cam, tb := newTestTrackball()
	changes := 0
	tb.OnChange(func() { changes++ })

	tb.Wheel(10)
	tb.Update()
	require.Equal(t, 1, changes)

	tb.Reset()
	assert.Equal(t, 2, changes)
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, cam.Transform().Position)

	// No pending motion after reset
	assert.False(t, tb.Update())
}

func TestTrackballSaveState(t *testing.T) {
	cam, tb := newTestTrackball()

	cam.Transform().Position = mgl32.Vec3{5, 5, 5}
	tb.SaveState()
	cam.Transform().Position = mgl32.Vec3{1, 2, 3}

	tb.Reset()
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, cam.Transform().Position)
}
