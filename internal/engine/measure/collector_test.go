package measure

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/events"
)

func newTestCollector() (*Collector, *events.Bus) {
	bus := events.NewBus()
	c := NewCollector(bus, Options{Rand: rand.New(rand.NewPCG(1, 2))})
	return c, bus
}

func TestPushGroups(t *testing.T) {
	c, _ := newTestCollector()

	require.Equal(t, Added, c.Push(100, 100, mgl32.Vec3{1, 0, 0}, false))
	require.Equal(t, Added, c.Push(200, 100, mgl32.Vec3{2, 0, 0}, false))
	require.Equal(t, Added, c.Push(300, 100, mgl32.Vec3{3, 0, 0}, true))
	require.Equal(t, Added, c.Push(400, 100, mgl32.Vec3{4, 0, 0}, false))

	var groups []int
	for _, p := range c.Points() {
		groups = append(groups, p.Group)
	}
	assert.Equal(t, []int{1, 1, 2, 2}, groups)
}

func TestFirstPointStartsGroupOne(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(10, 10, mgl32.Vec3{1, 1, 1}, true)
	assert.Equal(t, 1, c.Points()[0].Group)
}

func TestPushMissIgnored(t *testing.T) {
	c, bus := newTestCollector()
	added := 0
	events.Subscribe(bus, PointAdded, func(Point) { added++ })

	assert.Equal(t, Ignored, c.Push(50, 50, mgl32.Vec3{}, false))
	assert.Empty(t, c.Points())
	assert.Zero(t, added)
}

func TestPushNearMarkerRemoves(t *testing.T) {
	c, bus := newTestCollector()
	var removed []Point
	events.Subscribe(bus, PointRemoved, func(p Point) { removed = append(removed, p) })
	refresh := 0
	events.Subscribe(bus, events.NeedRefresh, func(struct{}) { refresh++ })

	c.Push(100, 100, mgl32.Vec3{1, 2, 3}, false)
	c.Push(300, 300, mgl32.Vec3{4, 5, 6}, false)

	// Within 16 pixels of the first marker; the pick result does not matter.
	assert.Equal(t, Removed, c.Push(110, 108, mgl32.Vec3{}, false))
	require.Len(t, removed, 1)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, removed[0].World)
	require.Len(t, c.Points(), 1)
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, c.Points()[0].World)
	assert.Equal(t, 3, refresh)
}

func TestPushOutsideRadiusAdds(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(100, 100, mgl32.Vec3{1, 2, 3}, false)
	assert.Equal(t, Added, c.Push(116, 100, mgl32.Vec3{1, 2, 4}, false))
}

func TestPushPublishesAdded(t *testing.T) {
	c, bus := newTestCollector()
	var got Point
	events.Subscribe(bus, PointAdded, func(p Point) { got = p })

	c.Push(1, 2, mgl32.Vec3{7, 8, 9}, false)
	assert.Equal(t, mgl32.Vec3{7, 8, 9}, got.World)
	assert.Equal(t, mgl32.Vec2{1, 2}, got.Screen)
	assert.NotEqual(t, [16]byte{}, [16]byte(got.ID))

	// Lightness 0.8 at saturation 0.8 keeps every channel in [0.64, 0.96].
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0.8, got.Color[i], 0.16+1e-5)
	}
}

func TestSegmentsStayWithinGroups(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(0, 0, mgl32.Vec3{1, 0, 0}, false)
	c.Push(100, 0, mgl32.Vec3{2, 0, 0}, false)
	c.Push(200, 0, mgl32.Vec3{3, 0, 0}, false)
	c.Push(300, 0, mgl32.Vec3{4, 0, 0}, true)
	c.Push(400, 0, mgl32.Vec3{5, 0, 0}, false)

	segs := c.Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, segs[0].From)
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, segs[1].To)
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, segs[2].From)
}

func testCamera() *camera.Perspective {
	cam := camera.NewPerspective(90, 1, 1, 100)
	cam.Transform().Position = mgl32.Vec3{0, 0, 10}
	cam.Transform().LookAt(mgl32.Vec3{})
	return cam
}

func TestUpdateReprojects(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(5, 5, mgl32.Vec3{0.001, 0, 0}, false)
	c.Push(50, 50, mgl32.Vec3{0, 0, 50}, false) // behind the camera

	cam := testCamera()
	require.True(t, c.Update(cam, 200, 100))
	assert.False(t, c.Update(cam, 200, 100), "nothing changed")

	p := c.Points()[0]
	assert.InDelta(t, 100, p.Screen.X(), 0.1)
	assert.InDelta(t, 50, p.Screen.Y(), 0.1)
	assert.InDelta(t, 0, p.Overlay.X(), 0.1)
	assert.True(t, p.Visible)
	assert.False(t, c.Points()[1].Visible)

	// The overlay camera spans the window in pixels.
	ov := c.OverlayCamera().(*camera.Orthographic)
	assert.Equal(t, float32(100), ov.Right)
	assert.Equal(t, float32(50), ov.Top)

	assert.True(t, c.Update(cam, 300, 100), "resize revalidates")
	assert.True(t, c.Update(testCamera(), 300, 100), "camera switch revalidates")
}

func TestRemoveUsesReprojectedPosition(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(5, 5, mgl32.Vec3{0.001, 0, 0}, false)
	c.Update(testCamera(), 200, 100)

	// The marker now sits at the window center.
	assert.Equal(t, Removed, c.Push(100, 50, mgl32.Vec3{}, false))
}

func TestMarkerBehindCameraNotHit(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(5, 5, mgl32.Vec3{0, 0, 50}, false)
	c.Update(testCamera(), 200, 100)

	p := c.Points()[0]
	assert.False(t, p.Visible)
	assert.Equal(t, mgl32.Vec2{5, 5}, p.Screen, "position kept")

	// The window center is where a mirrored projection would land.
	assert.Equal(t, Added, c.Push(100, 50, mgl32.Vec3{1, 1, 1}, false))
	assert.Equal(t, Added, c.Push(5, 5, mgl32.Vec3{2, 2, 2}, false))
	assert.Len(t, c.Points(), 3)
}

func TestPixelRatioScalesHitRadius(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(100, 100, mgl32.Vec3{1, 0, 0}, false)

	// 20 surface pixels is 10 window units on a 2x display.
	assert.Equal(t, Added, c.Push(120, 100, mgl32.Vec3{2, 0, 0}, false))

	c.SetPixelRatio(2)
	assert.Equal(t, float32(2*DefaultHitRadius), c.HitRadius())
	assert.Equal(t, Removed, c.Push(100, 125, mgl32.Vec3{}, false))

	c.SetPixelRatio(0)
	assert.Equal(t, float32(DefaultHitRadius), c.HitRadius())
}

func TestNilBus(t *testing.T) {
	c := NewCollector(nil, Options{Rand: rand.New(rand.NewPCG(1, 2))})

	require.NotPanics(t, func() {
		assert.Equal(t, Added, c.Push(10, 10, mgl32.Vec3{1, 0, 0}, false))
		assert.Equal(t, Removed, c.Push(12, 10, mgl32.Vec3{}, false))
	})
	assert.Empty(t, c.Points())
}

type fakeOverlay struct {
	calls   []string
	segs    []Segment
	markers []Point
	size    float32
}

func (o *fakeOverlay) DrawLines(segs []Segment, cam camera.Camera) {
	o.calls = append(o.calls, "lines")
	o.segs = segs
}

func (o *fakeOverlay) ClearDepth() { o.calls = append(o.calls, "clear") }

func (o *fakeOverlay) DrawMarkers(points []Point, size float32, ov camera.Camera) {
	o.calls = append(o.calls, "markers")
	o.markers = points
	o.size = size
}

func TestRenderOrder(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(0, 0, mgl32.Vec3{1, 0, 0}, false)
	c.Push(100, 0, mgl32.Vec3{2, 0, 0}, false)

	o := &fakeOverlay{}
	c.Render(o, testCamera())

	assert.Equal(t, []string{"lines", "clear", "markers"}, o.calls)
	assert.Len(t, o.segs, 1)
	assert.Len(t, o.markers, 2)
}

func TestRenderScalesMarkers(t *testing.T) {
	c := NewCollector(nil, Options{MarkerSize: 8, Rand: rand.New(rand.NewPCG(1, 2))})
	c.Push(0, 0, mgl32.Vec3{1, 0, 0}, false)
	c.SetPixelRatio(2)

	o := &fakeOverlay{}
	c.Render(o, testCamera())
	assert.Equal(t, float32(16), o.size)
}

func TestRenderEmpty(t *testing.T) {
	c, _ := newTestCollector()
	o := &fakeOverlay{}
	c.Render(o, testCamera())
	assert.Equal(t, []string{"clear"}, o.calls)
}

func TestClearAndReset(t *testing.T) {
	c, _ := newTestCollector()
	c.Push(0, 0, mgl32.Vec3{1, 0, 0}, false)
	cam := testCamera()
	c.Update(cam, 10, 10)

	c.Clear()
	assert.Empty(t, c.Points())
	assert.False(t, c.Update(cam, 10, 10))

	c.Reset()
	assert.True(t, c.Update(cam, 10, 10))

	// Group numbering restarts.
	c.Push(0, 0, mgl32.Vec3{1, 0, 0}, true)
	assert.Equal(t, 1, c.Points()[0].Group)
}

func TestHSL(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, hslToRGB(0.3, 0, 0.5))

	red := hslToRGB(0, 1, 0.5)
	assert.InDelta(t, 1, red[0], 1e-6)
	assert.InDelta(t, 0, red[1], 1e-6)
	assert.InDelta(t, 0, red[2], 1e-6)
}
