// Package measure collects mensuration markers picked on the point cloud and
// draws them as grouped polylines in an overlay pass.
package measure

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
)

var (
	// PointAdded is published with every new marker.
	PointAdded = events.NewTopic[Point]("point-added")
	// PointRemoved is published when a click lands on an existing marker.
	PointRemoved = events.NewTopic[Point]("point-removed")
)

// DefaultHitRadius is the click distance in pixels that selects a marker.
const DefaultHitRadius = 16

// Point is one marker.
type Point struct {
	ID     uuid.UUID
	World  mgl32.Vec3 // display space
	Screen mgl32.Vec2 // window pixels, origin top-left
	// Overlay is the marker position for the orthographic overlay camera.
	Overlay mgl32.Vec3
	Color   mgl32.Vec3
	// Group numbers consecutive points joined by one polyline.
	Group   int
	Visible bool
}

// Segment is a line between two consecutive markers of one group.
type Segment struct {
	From, To mgl32.Vec3
	Color    mgl32.Vec3
}

// Action reports what Push did.
type Action int

const (
	Ignored Action = iota
	Added
	Removed
)

func (a Action) String() string {
	switch a {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "ignored"
	}
}

// Overlay draws measurement geometry on top of the scene.
type Overlay interface {
	// DrawLines draws segments with cam, without depth testing.
	DrawLines(segs []Segment, cam camera.Camera)
	ClearDepth()
	// DrawMarkers draws a billboard for every visible point using its
	// Overlay position and the overlay camera.
	DrawMarkers(points []Point, size float32, overlay camera.Camera)
}

// Options configures a Collector.
type Options struct {
	HitRadius  float32
	MarkerSize float32
	// Rand picks marker hues. Nil uses a time-seeded source.
	Rand *rand.Rand
}

// Collector owns the ordered markers.
type Collector struct {
	bus    *events.Bus
	opts   Options
	points []Point
	// ratio is drawable pixels per window unit.
	ratio float32

	from          camera.Camera
	width, height int
	overlay       *camera.Orthographic
}

// NewCollector creates an empty collector. A nil bus publishes nothing.
func NewCollector(bus *events.Bus, opts Options) *Collector {
	if opts.HitRadius <= 0 {
		opts.HitRadius = DefaultHitRadius
	}
	if opts.MarkerSize <= 0 {
		opts.MarkerSize = 16
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	ov := camera.NewOrthographic(-1, 1, 1, -1, 1, 10)
	ov.Transform().Position = mgl32.Vec3{0, 0, 10}
	ov.Transform().LookAt(mgl32.Vec3{})

	return &Collector{bus: bus, opts: opts, overlay: ov, ratio: 1}
}

// SetPixelRatio scales the hit radius and marker size for surfaces whose
// pixels are denser than window units, so both keep their on-screen size.
func (c *Collector) SetPixelRatio(r float32) {
	if r <= 0 {
		r = 1
	}
	c.ratio = r
}

// HitRadius returns the marker hit radius in surface pixels.
func (c *Collector) HitRadius() float32 { return c.opts.HitRadius * c.ratio }

// Points returns the markers in insertion order.
func (c *Collector) Points() []Point { return c.points }

// OverlayCamera returns the camera markers are drawn with.
func (c *Collector) OverlayCamera() camera.Camera { return c.overlay }

// Push handles a click at window position x, y that picked world.
// A click within the hit radius of a visible marker removes that marker. Otherwise a
// miss (all-zero world) is ignored and anything else appends a marker.
func (c *Collector) Push(x, y float32, world mgl32.Vec3, startNew bool) Action {
	at := mgl32.Vec2{x, y}
	for i, p := range c.points {
		if p.Visible && at.Sub(p.Screen).Len() < c.HitRadius() {
			c.points = append(c.points[:i], c.points[i+1:]...)
			logger.Debug("measure point removed", zap.Stringer("id", p.ID))
			c.publish(PointRemoved, p)
			return Removed
		}
	}

	if world == (mgl32.Vec3{}) {
		return Ignored
	}

	group := 1
	if n := len(c.points); n > 0 {
		group = c.points[n-1].Group
		if startNew {
			group++
		}
	}

	p := Point{
		ID:      uuid.New(),
		World:   world,
		Screen:  at,
		Color:   hslToRGB(c.opts.Rand.Float32(), 0.8, 0.8),
		Group:   group,
		Visible: true,
	}
	c.points = append(c.points, p)

	logger.Debug("measure point added",
		zap.Stringer("id", p.ID),
		zap.Int("group", group),
		zap.Float32s("world", world[:]))

	c.publish(PointAdded, p)
	return Added
}

func (c *Collector) publish(topic events.Topic[Point], p Point) {
	if c.bus == nil {
		return
	}
	events.Publish(c.bus, topic, p)
	events.Signal(c.bus, events.NeedRefresh)
}

// Update revalidates marker positions when the active camera or the surface
// size changed and reports whether a redraw is needed.
func (c *Collector) Update(cam camera.Camera, width, height int) bool {
	if cam == c.from && width == c.width && height == c.height {
		return false
	}
	c.from = cam
	c.width, c.height = width, height

	w, h := float32(width), float32(height)
	c.overlay.SetPlanes(-w/2, w/2, h/2, -h/2)
	c.reproject()
	return true
}

// reproject recomputes screen and overlay positions and frustum visibility.
func (c *Collector) reproject() {
	if c.from == nil {
		return
	}
	frustum := camera.NewFrustum(camera.ViewProjection(c.from))
	w, h := float32(c.width), float32(c.height)

	for i := range c.points {
		p := &c.points[i]
		// Points behind the camera keep their last positions and are hidden.
		screen, _, ok := camera.Project(c.from, p.World, c.width, c.height)
		if ok {
			p.Screen = screen
			p.Overlay = mgl32.Vec3{screen.X() - w/2, h/2 - screen.Y(), 1}
		}
		p.Visible = ok && frustum.Contains(p.World)
	}
}

// Segments returns the lines joining consecutive markers of the same group.
func (c *Collector) Segments() []Segment {
	var segs []Segment
	for i := 0; i+1 < len(c.points); i++ {
		a, b := c.points[i], c.points[i+1]
		if a.Group != b.Group {
			continue
		}
		segs = append(segs, Segment{From: a.World, To: b.World, Color: a.Color})
	}
	return segs
}

// Render draws the group polylines with cam, then the markers on top.
func (c *Collector) Render(o Overlay, cam camera.Camera) {
	if cam != nil && cam != c.from {
		c.from = cam
	}
	c.reproject()

	if segs := c.Segments(); len(segs) > 0 {
		o.DrawLines(segs, cam)
	}
	o.ClearDepth()
	if len(c.points) > 0 {
		o.DrawMarkers(c.points, c.opts.MarkerSize*c.ratio, c.overlay)
	}
}

// Clear removes every marker.
func (c *Collector) Clear() {
	c.points = nil
}

// Reset removes every marker and forgets the last camera and size.
func (c *Collector) Reset() {
	c.points = nil
	c.from = nil
	c.width, c.height = 0, 0
}

// hslToRGB converts hue, saturation and lightness in [0, 1] to RGB.
func hslToRGB(h, s, l float32) mgl32.Vec3 {
	if s == 0 {
		return mgl32.Vec3{l, l, l}
	}
	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return mgl32.Vec3{
		hueToRGB(p, q, h+1.0/3),
		hueToRGB(p, q, h),
		hueToRGB(p, q, h-1.0/3),
	}
}

func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}
