package picking

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/events"
)

type pixel struct{ x, y int }

type fakeTarget struct {
	w, h      int
	pixels    map[pixel][4]byte
	destroyed bool
	readErr   error
	reads     []pixel
}

func (t *fakeTarget) Size() (int, int) { return t.w, t.h }

func (t *fakeTarget) ReadPixel(x, y int) ([4]byte, error) {
	t.reads = append(t.reads, pixel{x, y})
	if t.readErr != nil {
		return [4]byte{}, t.readErr
	}
	return t.pixels[pixel{x, y}], nil
}

func (t *fakeTarget) Destroy() { t.destroyed = true }

type fakeSurface struct {
	targets []*fakeTarget
}

func (s *fakeSurface) NewTarget(w, h int) (Target, error) {
	t := &fakeTarget{w: w, h: h}
	s.targets = append(s.targets, t)
	return t, nil
}

type plainMaterial struct{}

func (plainMaterial) MaterialName() string { return "plain" }

// fakeScene draws display-space points at target pixels (bottom-left origin).
type fakeScene struct {
	points   map[pixel]mgl32.Vec3
	override Material
	renders  int
	seenMat  []Material
}

func (s *fakeScene) Ready() bool                    { return len(s.points) > 0 }
func (s *fakeScene) OverrideMaterial() Material     { return s.override }
func (s *fakeScene) SetOverrideMaterial(m Material) { s.override = m }

func (s *fakeScene) RenderTo(cam camera.Camera, target Target) {
	s.renders++
	s.seenMat = append(s.seenMat, s.override)

	ft := target.(*fakeTarget)
	ft.pixels = make(map[pixel][4]byte)
	mat, ok := s.override.(*EncodingMaterial)
	if !ok {
		return
	}
	for px, p := range s.points {
		ft.pixels[px] = Encode(p.Dot(mat.Axis))
	}
}

func testCamera() camera.Camera {
	return camera.NewPerspective(60, 1, 1, 100)
}

func TestPickReturnsPoint(t *testing.T) {
	surf := &fakeSurface{}
	enc := New(surf, Options{Downsample: 1})
	require.NoError(t, enc.Resize(100, 50))

	// Window (10, 20) maps to target (10, 50-1-20).
	scene := &fakeScene{
		points:   map[pixel]mgl32.Vec3{{10, 29}: {1.5, -2.25, 300.125}},
		override: plainMaterial{},
	}

	res := enc.Pick(scene, testCamera(), 10, 20)
	assert.True(t, res.Hit)
	assert.Equal(t, mgl32.Vec3{1.5, -2.25, 300.125}, res.Point)
	assert.Equal(t, 3, scene.renders)

	// The encoding material was used for every pass and then restored.
	for _, m := range scene.seenMat {
		assert.Same(t, enc.Material(), m)
	}
	assert.Equal(t, plainMaterial{}, scene.override)
	assert.Equal(t, float32(10), enc.Material().PointSize)
}

func TestPickBackgroundIsMiss(t *testing.T) {
	enc := New(&fakeSurface{}, Options{})
	require.NoError(t, enc.Resize(64, 64))

	scene := &fakeScene{points: map[pixel]mgl32.Vec3{{0, 0}: {1, 2, 3}}}
	res := enc.Pick(scene, testCamera(), 40, 40)

	assert.False(t, res.Hit)
	assert.Equal(t, mgl32.Vec3{}, res.Point)
}

func TestPickUnreadyScene(t *testing.T) {
	enc := New(&fakeSurface{}, Options{})
	require.NoError(t, enc.Resize(64, 64))

	scene := &fakeScene{}
	res := enc.Pick(scene, testCamera(), 1, 1)

	assert.False(t, res.Hit)
	assert.Zero(t, scene.renders)
}

func TestPickWithoutTarget(t *testing.T) {
	enc := New(&fakeSurface{}, Options{})
	scene := &fakeScene{points: map[pixel]mgl32.Vec3{{0, 0}: {1, 2, 3}}}

	assert.False(t, enc.Pick(scene, testCamera(), 0, 0).Hit)
	assert.Zero(t, scene.renders)
}

func TestPickDownsample(t *testing.T) {
	surf := &fakeSurface{}
	enc := New(surf, Options{Downsample: 4})
	require.NoError(t, enc.Resize(400, 200))

	target := surf.targets[0]
	assert.Equal(t, 100, target.w)
	assert.Equal(t, 50, target.h)

	// Window (41, 83) -> target (10, 50-1-20)
	scene := &fakeScene{points: map[pixel]mgl32.Vec3{{10, 29}: {7, 8, 9}}}
	res := enc.Pick(scene, testCamera(), 41, 83)

	assert.True(t, res.Hit)
	assert.Equal(t, mgl32.Vec3{7, 8, 9}, res.Point)
}

func TestPickClampsToTarget(t *testing.T) {
	surf := &fakeSurface{}
	enc := New(surf, Options{})
	require.NoError(t, enc.Resize(10, 10))

	scene := &fakeScene{points: map[pixel]mgl32.Vec3{{9, 0}: {1, 1, 1}}}
	res := enc.Pick(scene, testCamera(), 15, 10)

	assert.True(t, res.Hit)
	assert.Equal(t, pixel{9, 0}, surf.targets[0].reads[0])
}

func TestPickReadbackError(t *testing.T) {
	surf := &fakeSurface{}
	enc := New(surf, Options{})
	require.NoError(t, enc.Resize(10, 10))
	surf.targets[0].readErr = errors.New("lost context")

	scene := &fakeScene{points: map[pixel]mgl32.Vec3{{0, 9}: {1, 1, 1}}, override: plainMaterial{}}
	res := enc.Pick(scene, testCamera(), 0, 0)

	assert.False(t, res.Hit)
	assert.Equal(t, plainMaterial{}, scene.override)
}

func TestResizeReplacesTarget(t *testing.T) {
	surf := &fakeSurface{}
	enc := New(surf, Options{Downsample: 2})

	require.NoError(t, enc.Resize(100, 100))
	require.NoError(t, enc.Resize(1, 1))

	require.Len(t, surf.targets, 2)
	assert.True(t, surf.targets[0].destroyed)
	assert.Equal(t, 1, surf.targets[1].w, "size never drops below one pixel")

	enc.Destroy()
	assert.True(t, surf.targets[1].destroyed)
}

func TestSubscribeUpdatesMaterial(t *testing.T) {
	bus := events.NewBus()
	enc := New(&fakeSurface{}, Options{Encoding: EncodingEmulated})
	enc.Subscribe(bus)

	events.Publish(bus, events.OffsetsChanged, mgl64.Vec3{10, 20, 30})
	events.Publish(bus, events.ScaleChanged, mgl64.Vec3{2, 2, 0.5})

	m := enc.Material()
	assert.Equal(t, mgl32.Vec3{10, 20, 30}, m.Offsets)
	assert.Equal(t, mgl32.Vec3{2, 2, 0.5}, m.Scale)
	assert.Equal(t, "pick-emulated", m.MaterialName())
}
