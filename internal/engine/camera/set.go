package camera

import (
	"errors"
	"fmt"

	"cogentcore.org/core/base/ordmap"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/logger"
)

var (
	// ErrNotFound is returned when a rig name is not registered.
	ErrNotFound = errors.New("camera: rig not found")
	// ErrDuplicate is returned when a rig name is registered twice.
	ErrDuplicate = errors.New("camera: rig already registered")
)

// Locks disables trackball gestures for a rig.
type Locks struct {
	Rotate bool
	Pan    bool
}

// Rig pairs a camera with its controller.
type Rig struct {
	Name     string
	Camera   Camera
	Controls *Trackball

	// zoom multiplies the orthographic planes. Always 1 for perspective rigs.
	zoom float32
}

// ZoomLevel returns the plane multiplier of an orthographic rig.
func (r *Rig) ZoomLevel() float32 { return r.zoom }

// Set keeps named camera rigs in registration order with at most one active.
// Only the active rig's controller receives input and updates.
type Set struct {
	rigs   *ordmap.Map[string, *Rig]
	active *Rig
	opts   Options

	width, height int
	// planes holds the last SetPlanes arguments before zoom.
	planes [4]float32

	onChange []func()
}

// NewSet creates an empty set for a surface of the given size.
func NewSet(width, height int, opts Options) *Set {
	return &Set{
		rigs:   ordmap.New[string, *Rig](),
		opts:   opts,
		width:  width,
		height: height,
		planes: [4]float32{-float32(width) / 2, float32(width) / 2, float32(height) / 2, -float32(height) / 2},
	}
}

// Add registers cam under name with a fresh, disabled controller.
// Orthographic rigs never zoom through the controller. The first rig added
// becomes active.
func (s *Set) Add(name string, cam Camera, locks Locks) error {
	if _, ok := s.rigs.IndexByKeyTry(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	tb := NewTrackball(cam, s.opts)
	tb.Enabled = false
	tb.NoRotate = locks.Rotate
	tb.NoPan = locks.Pan
	tb.HandleResize(s.width, s.height)
	tb.OnChange(s.fireChange)

	rig := &Rig{Name: name, Camera: cam, Controls: tb, zoom: 1}
	if _, ok := cam.(*Orthographic); ok {
		tb.NoZoom = true
	}
	s.rigs.Add(name, rig)

	logger.Debug("camera rig added", zap.String("rig", name))

	if s.rigs.Len() == 1 {
		return s.MakeActive(name)
	}
	return nil
}

// OnChange registers fn to run whenever any controller moves its camera.
func (s *Set) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *Set) fireChange() {
	for _, fn := range s.onChange {
		fn()
	}
}

// MakeActive disables every controller and enables the one named.
// An unknown name leaves the set unchanged.
func (s *Set) MakeActive(name string) error {
	rig, ok := s.rigs.ValueByKeyTry(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, r := range s.rigs.Values() {
		r.Controls.Enabled = false
	}
	rig.Controls.Enabled = true
	s.active = rig

	logger.Info("camera rig activated", zap.String("rig", name))
	return nil
}

// Active returns the active camera or nil.
func (s *Set) Active() Camera {
	if s.active == nil {
		return nil
	}
	return s.active.Camera
}

// ActiveRig returns the active rig or nil.
func (s *Set) ActiveRig() *Rig { return s.active }

// ActiveName returns the active rig name or "".
func (s *Set) ActiveName() string {
	if s.active == nil {
		return ""
	}
	return s.active.Name
}

// Rig looks up a rig by name.
func (s *Set) Rig(name string) (*Rig, error) {
	rig, ok := s.rigs.ValueByKeyTry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rig, nil
}

// Names returns rig names in registration order.
func (s *Set) Names() []string { return s.rigs.Keys() }

// Each calls fn for every rig in registration order.
func (s *Set) Each(fn func(*Rig)) {
	for _, r := range s.rigs.Values() {
		fn(r)
	}
}

// Update steps the active controller. Inactive rigs keep their state.
func (s *Set) Update() bool {
	if s.active == nil {
		return false
	}
	return s.active.Controls.Update()
}

// Size returns the surface size last given to NewSet or Resize.
func (s *Set) Size() (width, height int) { return s.width, s.height }

// Resize adapts every rig to a new surface size.
func (s *Set) Resize(width, height int) {
	s.width, s.height = width, height
	w, h := float32(width), float32(height)

	s.Each(func(r *Rig) {
		switch c := r.Camera.(type) {
		case *Orthographic:
			c.SetPlanes(-w/2*r.zoom, w/2*r.zoom, h/2*r.zoom, -h/2*r.zoom)
		case *Perspective:
			if height > 0 {
				c.Aspect = w / h
			}
			c.UpdateProjection()
		default:
			c.UpdateProjection()
		}
		r.Controls.HandleResize(width, height)
	})
	s.planes = [4]float32{-w / 2, w / 2, h / 2, -h / 2}

	logger.Debug("camera set resized", zap.Int("width", width), zap.Int("height", height))
}

// SetPlanes sets the side planes of every orthographic rig, scaled by the
// rig's own zoom level.
func (s *Set) SetPlanes(left, right, top, bottom float32) {
	s.planes = [4]float32{left, right, top, bottom}
	s.Each(func(r *Rig) {
		if c, ok := r.Camera.(*Orthographic); ok {
			c.SetPlanes(left*r.zoom, right*r.zoom, top*r.zoom, bottom*r.zoom)
		}
	})
}

// SetZoomLevel changes the plane multiplier of an orthographic rig and
// reapplies the last planes. Smaller levels magnify.
func (s *Set) SetZoomLevel(name string, level float32) error {
	rig, err := s.Rig(name)
	if err != nil {
		return err
	}
	c, ok := rig.Camera.(*Orthographic)
	if !ok || level <= 0 {
		return nil
	}
	rig.zoom = level
	p := s.planes
	c.SetPlanes(p[0]*level, p[1]*level, p[2]*level, p[3]*level)
	s.fireChange()
	return nil
}

// SetNearFar sets the clip distances of every rig.
func (s *Set) SetNearFar(near, far float32) {
	s.Each(func(r *Rig) { r.Camera.SetNearFar(near, far) })
}

// SetFov sets the field of view of every perspective rig.
func (s *Set) SetFov(fov float32) {
	s.Each(func(r *Rig) {
		if c, ok := r.Camera.(*Perspective); ok {
			c.Fov = fov
			c.UpdateProjection()
		}
	})
}

// Reset returns every controller to its reset point.
func (s *Set) Reset() {
	s.Each(func(r *Rig) { r.Controls.Reset() })
}
