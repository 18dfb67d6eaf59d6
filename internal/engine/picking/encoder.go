package picking

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
)

// Material is drawn in place of every object material while set as a
// scene's override.
type Material interface {
	MaterialName() string
}

// Scene is what the encoder renders.
type Scene interface {
	// Ready reports whether there is anything to draw.
	Ready() bool
	OverrideMaterial() Material
	SetOverrideMaterial(Material)
	// RenderTo draws into target after clearing it to transparent black.
	RenderTo(cam camera.Camera, target Target)
}

// Target is an off-screen color buffer.
type Target interface {
	Size() (width, height int)
	// ReadPixel returns the RGBA bytes at x, y with the origin at the bottom-left.
	ReadPixel(x, y int) ([4]byte, error)
	Destroy()
}

// Surface creates off-screen targets.
type Surface interface {
	NewTarget(width, height int) (Target, error)
}

// EncodingMaterial writes one display-space coordinate per pass.
type EncodingMaterial struct {
	Encoding  Encoding
	PointSize float32
	Scale     mgl32.Vec3
	Offsets   mgl32.Vec3
	// Axis is a one-hot selector of the coordinate written.
	Axis mgl32.Vec3
}

// MaterialName implements Material.
func (m *EncodingMaterial) MaterialName() string { return "pick-" + m.Encoding.String() }

// Options configures an Encoder.
type Options struct {
	// Downsample divides the window size to get the target size.
	Downsample int
	// PointSize is the oversized point diameter used while picking.
	PointSize float32
	Encoding  Encoding
}

// Result is the outcome of a pick. Hit is false for background pixels,
// an unready scene or a missing target.
type Result struct {
	Point mgl32.Vec3
	Hit   bool
}

// Encoder owns the off-screen target and the encoding material.
type Encoder struct {
	surface Surface
	opts    Options
	target  Target
	mat     *EncodingMaterial

	width, height int // target size
}

// New creates an encoder. Call Resize before the first Pick.
func New(surface Surface, opts Options) *Encoder {
	if opts.Downsample < 1 {
		opts.Downsample = 1
	}
	if opts.PointSize <= 0 {
		opts.PointSize = 10
	}
	return &Encoder{
		surface: surface,
		opts:    opts,
		mat: &EncodingMaterial{
			Encoding:  opts.Encoding,
			PointSize: opts.PointSize,
			Scale:     mgl32.Vec3{1, 1, 1},
		},
	}
}

// Material returns the encoding material.
func (e *Encoder) Material() *EncodingMaterial { return e.mat }

// Downsample returns the divisor between window and target size.
func (e *Encoder) Downsample() int { return e.opts.Downsample }

// Subscribe keeps the material's placement uniforms in step with the loaded data.
func (e *Encoder) Subscribe(bus *events.Bus) {
	events.Subscribe(bus, events.OffsetsChanged, func(v mgl64.Vec3) {
		e.mat.Offsets = vec3f(v)
	})
	events.Subscribe(bus, events.ScaleChanged, func(v mgl64.Vec3) {
		e.mat.Scale = vec3f(v)
	})
}

// Resize replaces the target with one sized for a window of width x height.
func (e *Encoder) Resize(width, height int) error {
	if e.target != nil {
		e.target.Destroy()
		e.target = nil
	}

	w := width / e.opts.Downsample
	h := height / e.opts.Downsample
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	t, err := e.surface.NewTarget(w, h)
	if err != nil {
		return err
	}
	e.target = t
	e.width, e.height = w, h

	logger.Debug("pick target resized", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// Pick returns the display-space position of the nearest point drawn at
// window pixel x, y (origin top-left).
func (e *Encoder) Pick(scene Scene, cam camera.Camera, x, y int) Result {
	if e.target == nil || scene == nil || cam == nil || !scene.Ready() {
		return Result{}
	}

	tx := clamp(x/e.opts.Downsample, 0, e.width-1)
	ty := clamp(e.height-1-y/e.opts.Downsample, 0, e.height-1)

	prev := scene.OverrideMaterial()
	scene.SetOverrideMaterial(e.mat)
	defer scene.SetOverrideMaterial(prev)

	e.mat.PointSize = e.opts.PointSize

	var out mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		var sel mgl32.Vec3
		sel[axis] = 1
		e.mat.Axis = sel

		scene.RenderTo(cam, e.target)
		px, err := e.target.ReadPixel(tx, ty)
		if err != nil {
			logger.Warn("pick readback failed", zap.Error(err))
			return Result{}
		}
		out[axis] = Decode(px)
	}

	hit := out != (mgl32.Vec3{})
	logger.Debug("pick",
		zap.Int("x", x), zap.Int("y", y),
		zap.Bool("hit", hit),
		zap.Float32s("point", out[:]))

	return Result{Point: out, Hit: hit}
}

// Destroy releases the target.
func (e *Encoder) Destroy() {
	if e.target != nil {
		e.target.Destroy()
		e.target = nil
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func vec3f(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
