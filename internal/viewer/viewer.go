// Package viewer is the frame-driven context that ties cameras, picking,
// point data, measurements and models together.
package viewer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/assets"
	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/engine/measure"
	"github.com/Faultbox/lidarview/internal/engine/picking"
	"github.com/Faultbox/lidarview/internal/engine/pointcloud"
	"github.com/Faultbox/lidarview/internal/engine/shading"
	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
	"github.com/Faultbox/lidarview/internal/sched"
)

// Rig names.
const (
	RigPerspective = "perspective"
	RigOrtho       = "ortho"
	RigTop         = "top"
)

// Backend is the rendering side of the viewer.
type Backend interface {
	picking.Scene
	pointcloud.Graph
	measure.Overlay

	Render(cam camera.Camera)
	Resize(width, height int)

	PlaceModel(m *assets.Model, pos mgl32.Vec3, scale float32)
	ClearModels()
	ScaleModels(scale float32)
}

// Options configures a Viewer.
type Options struct {
	Width, Height int

	Fov       float32 // degrees
	Near, Far float32
	Trackball camera.Options

	Picking picking.Options
	Measure measure.Options
	Shading shading.Settings
	Models  assets.Options
}

// view is what SetupView needs to frame a data set.
type view struct {
	min, max, centroid, scale mgl64.Vec3
}

// Viewer owns all per-window state. Every method must be called from the
// frame thread; other goroutines hand work over through Queue.
type Viewer struct {
	bus     *events.Bus
	queue   *sched.Queue
	backend Backend

	cameras   *camera.Set
	picker    *picking.Encoder
	collector *measure.Collector
	models    *assets.Cache
	shading   *shading.State

	loaded    []*pointcloud.Aggregator
	restore   *view
	measuring bool
	dirty     bool

	log *zap.Logger
}

// New builds a viewer around backend and creates the pick target.
func New(opts Options, backend Backend, surface picking.Surface) (*Viewer, error) {
	bus := events.NewBus()
	queue := sched.NewQueue()

	v := &Viewer{
		bus:       bus,
		queue:     queue,
		backend:   backend,
		cameras:   camera.NewSet(opts.Width, opts.Height, opts.Trackball),
		picker:    picking.New(surface, opts.Picking),
		collector: measure.NewCollector(bus, opts.Measure),
		models:    assets.NewCache(bus, queue, opts.Models),
		shading:   shading.New(opts.Shading),
		log:       logger.Named("viewer"),
	}

	w, h := float32(opts.Width), float32(opts.Height)
	aspect := float32(1)
	if opts.Height > 0 {
		aspect = w / h
	}
	rigs := []struct {
		name string
		cam  camera.Camera
	}{
		{RigPerspective, camera.NewPerspective(opts.Fov, aspect, opts.Near, opts.Far)},
		{RigOrtho, camera.NewOrthographic(-w/2, w/2, h/2, -h/2, opts.Near, opts.Far)},
		{RigTop, camera.NewOrthographic(-w/2, w/2, h/2, -h/2, opts.Near, opts.Far*10)},
	}
	for _, r := range rigs {
		if err := v.cameras.Add(r.name, r.cam, camera.Locks{}); err != nil {
			return nil, err
		}
	}
	v.cameras.OnChange(v.MarkDirty)

	v.shading.Subscribe(bus)
	v.picker.Subscribe(bus)
	events.Subscribe(bus, events.NeedRefresh, func(struct{}) { v.MarkDirty() })
	events.Subscribe(bus, events.PointsReset, func(struct{}) {
		v.collector.Clear()
		v.MarkDirty()
	})
	events.Subscribe(bus, pointcloud.StatsChanged, func(pointcloud.Stats) { v.MarkDirty() })

	if err := v.Resize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	return v, nil
}

// Bus returns the event bus.
func (v *Viewer) Bus() *events.Bus { return v.bus }

// Queue returns the frame-thread work queue.
func (v *Viewer) Queue() *sched.Queue { return v.queue }

// Cameras returns the camera set.
func (v *Viewer) Cameras() *camera.Set { return v.cameras }

// Collector returns the measurement collector.
func (v *Viewer) Collector() *measure.Collector { return v.collector }

// Shading returns the shading state.
func (v *Viewer) Shading() *shading.State { return v.shading }

// Models returns the model cache.
func (v *Viewer) Models() *assets.Cache { return v.models }

// MarkDirty requests a render on the next tick.
func (v *Viewer) MarkDirty() { v.dirty = true }

// Dirty reports whether the next tick renders.
func (v *Viewer) Dirty() bool { return v.dirty }

// Tick runs one frame: queued work, controller step, marker update and a
// render when something changed. It reports whether a frame was drawn.
func (v *Viewer) Tick() bool {
	v.queue.Drain()

	v.cameras.Update()
	w, h := v.cameras.Size()
	if v.collector.Update(v.cameras.Active(), w, h) {
		v.dirty = true
	}

	if !v.dirty {
		return false
	}
	v.render()
	v.dirty = false
	return true
}

func (v *Viewer) render() {
	cam := v.cameras.Active()
	if cam == nil {
		return
	}
	v.backend.Render(cam)
	v.collector.Render(v.backend, cam)
}

// Resize rebuilds everything sized to the surface before the next render.
func (v *Viewer) Resize(width, height int) error {
	v.cameras.Resize(width, height)
	if err := v.picker.Resize(width, height); err != nil {
		return fmt.Errorf("resizing pick target: %w", err)
	}
	v.backend.Resize(width, height)
	v.dirty = true
	return nil
}

// ActivateCamera switches the active rig.
func (v *Viewer) ActivateCamera(name string) error {
	if err := v.cameras.MakeActive(name); err != nil {
		return err
	}
	if v.measuring {
		v.cameras.ActiveRig().Controls.Enabled = false
	}
	events.Publish(v.bus, events.CameraChanged, name)
	v.dirty = true
	return nil
}

// Pick resolves window pixel x, y with the active camera.
func (v *Viewer) Pick(x, y int) picking.Result {
	return v.picker.Pick(v.backend, v.cameras.Active(), x, y)
}

// AddMeasurePoint picks at x, y and hands the result to the collector, which
// adds a marker, removes the one under the cursor, or ignores a miss.
func (v *Viewer) AddMeasurePoint(x, y int, startNew bool) measure.Action {
	res := v.Pick(x, y)
	return v.collector.Push(float32(x), float32(y), res.Point, startNew)
}

// PlaceModel picks at x, y and places the model at url there once it is
// loaded. A miss places nothing. Load errors are logged.
func (v *Viewer) PlaceModel(x, y int, url string, scale float32) bool {
	res := v.Pick(x, y)
	if !res.Hit {
		return false
	}
	if scale <= 0 {
		scale = 1
	}

	at := res.Point
	v.models.GetModel(url, func(m *assets.Model, err error) {
		if err != nil {
			v.log.Warn("model not placed", zap.String("url", url), zap.Error(err))
			return
		}
		v.backend.PlaceModel(m, at, scale)
		v.dirty = true
	})
	return true
}

// ResetModels removes every placed model.
func (v *Viewer) ResetModels() {
	v.backend.ClearModels()
	v.dirty = true
}

// ScaleModels sets the scale of every placed model.
func (v *Viewer) ScaleModels(scale float32) {
	v.backend.ScaleModels(scale)
	v.dirty = true
}

// EnableMensuration disables camera navigation so clicks place markers.
func (v *Viewer) EnableMensuration() {
	if v.measuring {
		return
	}
	v.measuring = true
	if rig := v.cameras.ActiveRig(); rig != nil {
		rig.Controls.Enabled = false
	}
	v.dirty = true
}

// DisableMensuration gives the pointer back to the camera controller.
func (v *Viewer) DisableMensuration() {
	if !v.measuring {
		return
	}
	v.measuring = false
	if rig := v.cameras.ActiveRig(); rig != nil {
		rig.Controls.Enabled = true
	}
	v.dirty = true
}

// Measuring reports whether mensuration mode is on.
func (v *Viewer) Measuring() bool { return v.measuring }

// Load replaces the displayed data with aggs. When resetCamera is set the
// cameras are framed on the new data and that framing becomes the target
// of ResetCamera. A non-nil centroid overrides the computed one.
func (v *Viewer) Load(aggs []*pointcloud.Aggregator, resetCamera bool, centroid *mgl64.Vec3) error {
	if len(aggs) == 0 {
		return fmt.Errorf("load: no point data")
	}

	for _, a := range v.loaded {
		a.RemoveFromScene(v.backend)
	}
	for _, a := range aggs {
		a.AddToScene(v.backend)
	}
	v.loaded = aggs

	stats := pointcloud.Combine(aggs...)
	cg := stats.Centroid
	if centroid != nil {
		cg = *centroid
	}
	scale := aggs[0].Scale

	if resetCamera {
		vw := &view{min: stats.Min, max: stats.Max, centroid: cg, scale: scale}
		v.setupView(vw)
		v.restore = vw
	}

	events.Publish(v.bus, events.OffsetsChanged, cg)
	events.Publish(v.bus, events.ZRangeChanged, events.ZRange{Min: stats.Min.Z(), Max: stats.Max.Z()})
	events.Publish(v.bus, pointcloud.StatsChanged, stats)
	events.Signal(v.bus, events.IntensityClampChanged)
	events.Publish(v.bus, events.ScaleChanged, scale)

	v.log.Info("point data loaded",
		zap.Int("sources", len(aggs)),
		zap.Int("points", stats.Count),
		zap.Bool("reset_camera", resetCamera))

	v.dirty = true
	return nil
}

// SetupView frames every rig on a bounding box.
func (v *Viewer) SetupView(min, max, centroid, scale mgl64.Vec3) {
	v.setupView(&view{min: min, max: max, centroid: centroid, scale: scale})
}

func (v *Viewer) setupView(vw *view) {
	v.cameras.Reset()

	rng := mgl64.Vec3{
		(vw.max[0] - vw.min[0]) * vw.scale[0],
		(vw.max[1] - vw.min[1]) * vw.scale[1],
		(vw.max[2] - vw.min[2]) * vw.scale[2],
	}
	far := math.Max(rng[0], math.Max(rng[1], rng[2]))
	limits := float32(math.Ceil(math.Sqrt(2 * far * far)))

	v.cameras.SetNearFar(1, float32(far*4))

	v.cameras.Each(func(r *camera.Rig) {
		tr := r.Camera.Transform()
		if r.Name == RigTop {
			tr.Position = mgl32.Vec3{0, float32(far / 2), 0}
			// Looking straight down needs an up vector off the view axis.
			tr.Up = mgl32.Vec3{0, 0, -1}
		} else {
			tr.Position = mgl32.Vec3{
				float32(-rng[0] / 2),
				float32(vw.centroid[2] + rng[2]),
				float32(-rng[1] / 2),
			}
			tr.Up = mgl32.Vec3{0, 1, 0}
		}
		tr.LookAt(mgl32.Vec3{})
		r.Controls.SaveState()
	})

	v.cameras.SetPlanes(-limits/2, limits/2, limits/2, -limits/2)

	v.log.Debug("view set up",
		zap.Float64("far", far),
		zap.Float32("limits", limits))
	v.dirty = true
}

// ResetCamera restores the framing of the last Load that reset the camera.
// It is a no-op before any such load.
func (v *Viewer) ResetCamera() {
	if v.restore == nil {
		return
	}
	v.setupView(v.restore)
}

// Loaded returns the aggregators currently displayed.
func (v *Viewer) Loaded() []*pointcloud.Aggregator { return v.loaded }

// Destroy releases the pick target.
func (v *Viewer) Destroy() {
	v.picker.Destroy()
}
