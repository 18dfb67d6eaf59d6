package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pointer buttons understood by the trackball.
const (
	ButtonRotate = 0 // primary
	ButtonZoom   = 1 // middle
	ButtonPan    = 2 // secondary
)

const stateNone = -1

// Options holds trackball tuning.
type Options struct {
	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32
	// Damping is the fraction of the remaining motion consumed per update.
	Damping float32
}

// DefaultOptions returns the stock trackball tuning.
func DefaultOptions() Options {
	return Options{
		RotateSpeed: 1.0,
		ZoomSpeed:   1.2,
		PanSpeed:    0.8,
		Damping:     0.3,
	}
}

// Trackball turns pointer drags into camera rotation, zoom and pan around the
// camera target, with motion that decays over subsequent updates.
type Trackball struct {
	cam Camera
	Options

	Enabled  bool
	NoRotate bool
	NoZoom   bool
	NoPan    bool

	width, height float32

	state int

	eye         mgl32.Vec3
	rotateStart mgl32.Vec3
	rotateEnd   mgl32.Vec3
	zoomStart   mgl32.Vec2
	zoomEnd     mgl32.Vec2
	panStart    mgl32.Vec2
	panEnd      mgl32.Vec2

	target0, position0, up0 mgl32.Vec3
	lastPosition            mgl32.Vec3

	onChange []func()
}

// NewTrackball binds a controller to cam. The camera's current placement
// becomes the reset point.
func NewTrackball(cam Camera, opts Options) *Trackball {
	tr := cam.Transform()
	t := &Trackball{
		cam:          cam,
		Options:      opts,
		Enabled:      true,
		state:        stateNone,
		target0:      tr.Target,
		position0:    tr.Position,
		up0:          tr.Up,
		lastPosition: tr.Position,
	}
	return t
}

// Camera returns the controlled camera.
func (t *Trackball) Camera() Camera { return t.cam }

// OnChange registers fn to run whenever an update moves the camera.
func (t *Trackball) OnChange(fn func()) {
	t.onChange = append(t.onChange, fn)
}

func (t *Trackball) fireChange() {
	for _, fn := range t.onChange {
		fn()
	}
}

// HandleResize records the surface size used to normalize pointer positions.
func (t *Trackball) HandleResize(width, height int) {
	t.width = float32(width)
	t.height = float32(height)
}

// Dragging reports whether a pointer gesture is in progress.
func (t *Trackball) Dragging() bool { return t.state != stateNone }

func (t *Trackball) mouseOnScreen(x, y float32) mgl32.Vec2 {
	if t.width == 0 || t.height == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{x / t.width, y / t.height}
}

// mouseOnBall projects a window position onto the virtual trackball sphere
// expressed in world space around the current eye vector.
func (t *Trackball) mouseOnBall(x, y float32) mgl32.Vec3 {
	if t.width == 0 || t.height == 0 {
		return mgl32.Vec3{}
	}
	halfW, halfH := t.width*0.5, t.height*0.5
	ball := mgl32.Vec3{(x - halfW) / halfW, (halfH - y) / halfH, 0}

	l := ball.Len()
	if l > 1 {
		ball = ball.Normalize()
	} else {
		ball[2] = float32(math.Sqrt(float64(1 - l*l)))
	}

	tr := t.cam.Transform()
	eye := tr.Position.Sub(tr.Target)

	p := setLength(tr.Up, ball.Y())
	p = p.Add(setLength(tr.Up.Cross(eye), ball.X()))
	p = p.Add(setLength(eye, ball.Z()))
	return p
}

// PointerDown starts a gesture for button at window position x, y.
func (t *Trackball) PointerDown(button int, x, y float32) {
	if !t.Enabled || t.state != stateNone {
		return
	}
	t.state = button

	switch {
	case button == ButtonRotate && !t.NoRotate:
		t.rotateStart = t.mouseOnBall(x, y)
		t.rotateEnd = t.rotateStart
	case button == ButtonZoom && !t.NoZoom:
		t.zoomStart = t.mouseOnScreen(x, y)
		t.zoomEnd = t.zoomStart
	case button == ButtonPan && !t.NoPan:
		t.panStart = t.mouseOnScreen(x, y)
		t.panEnd = t.panStart
	}
}

// PointerMove continues the current gesture.
func (t *Trackball) PointerMove(x, y float32) {
	if !t.Enabled {
		return
	}

	switch {
	case t.state == ButtonRotate && !t.NoRotate:
		t.rotateEnd = t.mouseOnBall(x, y)
	case t.state == ButtonZoom && !t.NoZoom:
		t.zoomEnd = t.mouseOnScreen(x, y)
	case t.state == ButtonPan && !t.NoPan:
		t.panEnd = t.mouseOnScreen(x, y)
	}
}

// PointerUp ends the current gesture. Damped motion continues in Update.
func (t *Trackball) PointerUp() {
	if !t.Enabled {
		return
	}
	t.state = stateNone
}

// Wheel zooms by delta notches; positive values zoom in.
func (t *Trackball) Wheel(delta float32) {
	if !t.Enabled || t.NoZoom {
		return
	}
	t.zoomStart[1] += delta * 0.01
}

func (t *Trackball) rotate() {
	sl, el := t.rotateStart.Len(), t.rotateEnd.Len()
	if sl == 0 || el == 0 {
		return
	}
	cos := float64(t.rotateStart.Dot(t.rotateEnd) / sl / el)
	angle := float32(math.Acos(math.Max(-1, math.Min(1, cos))))
	if angle == 0 {
		return
	}

	axis := t.rotateStart.Cross(t.rotateEnd)
	if axis.Len() == 0 {
		return
	}
	axis = axis.Normalize()

	angle *= t.RotateSpeed
	q := mgl32.QuatRotate(-angle, axis)

	tr := t.cam.Transform()
	t.eye = q.Rotate(t.eye)
	tr.Up = q.Rotate(tr.Up)
	t.rotateEnd = q.Rotate(t.rotateEnd)

	q = mgl32.QuatRotate(angle*(t.Damping-1), axis)
	t.rotateStart = q.Rotate(t.rotateStart)
}

func (t *Trackball) zoom() {
	factor := 1 + (t.zoomEnd.Y()-t.zoomStart.Y())*t.ZoomSpeed
	if factor != 1 && factor > 0 {
		t.eye = t.eye.Mul(factor)
		t.zoomStart[1] += (t.zoomEnd.Y() - t.zoomStart.Y()) * t.Damping
	}
}

func (t *Trackball) pan() {
	change := t.panEnd.Sub(t.panStart)
	if change.LenSqr() == 0 {
		return
	}

	tr := t.cam.Transform()
	change = change.Mul(t.eye.Len() * t.PanSpeed)
	offset := setLength(t.eye.Cross(tr.Up), change.X())
	offset = offset.Add(setLength(tr.Up, change.Y()))

	tr.Position = tr.Position.Add(offset)
	tr.Target = tr.Target.Add(offset)

	t.panStart = t.panStart.Add(t.panEnd.Sub(t.panStart).Mul(t.Damping))
}

// Update advances the controller by one damped step and reports whether the
// camera moved. Callers step it once per frame whether or not it is enabled.
func (t *Trackball) Update() bool {
	tr := t.cam.Transform()
	t.eye = tr.Position.Sub(tr.Target)

	if !t.NoRotate {
		t.rotate()
	}
	if !t.NoZoom {
		t.zoom()
	}
	if !t.NoPan {
		t.pan()
	}

	tr.Position = tr.Target.Add(t.eye)
	tr.LookAt(tr.Target)

	if tr.Position.Sub(t.lastPosition).LenSqr() > 0 {
		t.lastPosition = tr.Position
		t.fireChange()
		return true
	}
	return false
}

// Reset restores the placement captured at construction or by SaveState and
// cancels any motion in progress.
func (t *Trackball) Reset() {
	t.state = stateNone
	t.rotateStart, t.rotateEnd = mgl32.Vec3{}, mgl32.Vec3{}
	t.zoomStart, t.zoomEnd = mgl32.Vec2{}, mgl32.Vec2{}
	t.panStart, t.panEnd = mgl32.Vec2{}, mgl32.Vec2{}

	tr := t.cam.Transform()
	tr.Target = t.target0
	tr.Position = t.position0
	tr.Up = t.up0
	t.eye = tr.Position.Sub(tr.Target)
	tr.LookAt(tr.Target)

	t.lastPosition = tr.Position
	t.fireChange()
}

// SaveState makes the camera's current placement the reset point.
func (t *Trackball) SaveState() {
	tr := t.cam.Transform()
	t.target0 = tr.Target
	t.position0 = tr.Position
	t.up0 = tr.Up
}

func setLength(v mgl32.Vec3, l float32) mgl32.Vec3 {
	n := v.Len()
	if n == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(l / n)
}
