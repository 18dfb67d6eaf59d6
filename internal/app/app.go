// Package app implements the viewer window and its frame loop.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/assets"
	"github.com/Faultbox/lidarview/internal/config"
	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/engine/capture"
	"github.com/Faultbox/lidarview/internal/engine/framebuffer"
	"github.com/Faultbox/lidarview/internal/engine/input"
	"github.com/Faultbox/lidarview/internal/engine/lighting"
	"github.com/Faultbox/lidarview/internal/engine/pointcloud"
	"github.com/Faultbox/lidarview/internal/engine/scene"
	"github.com/Faultbox/lidarview/internal/engine/window"
	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
	"github.com/Faultbox/lidarview/internal/viewer"
)

const title = "LidarView"

// Options holds what the command line adds to the config.
type Options struct {
	// ConfigPath is watched for shading changes when set.
	ConfigPath string
	Files      []string
	// ModelURL is placed on click while placement mode is on.
	ModelURL   string
	ModelScale float32
	ChunkSize  int
}

// App is the running viewer.
type App struct {
	cfg  *config.Config
	opts Options

	window  *window.Window
	input   *input.Input
	scene   *scene.Scene
	viewer  *viewer.Viewer
	loader  *Loader
	watcher *config.Watcher
	capture *capture.Capturer

	ctx        context.Context
	running    bool
	placing    bool
	shot       bool
	modelScale float32

	log *zap.Logger
}

// New opens the window and builds the scene and viewer.
func New(cfg *config.Config, opts Options) (*App, error) {
	a := &App{
		cfg:        cfg,
		opts:       opts,
		modelScale: opts.ModelScale,
		log:        logger.Named("app"),
	}
	if a.modelScale <= 0 {
		a.modelScale = 1
	}

	a.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Int("files", len(opts.Files)))

	var err error
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Scene needs the GL context the window just made current.
	w, h := a.window.DrawableSize()
	a.scene, err = scene.New(int32(w), int32(h))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	fetcher := &assets.SchemeFetcher{
		HTTP: &assets.HTTPFetcher{Client: &http.Client{}, BaseURL: cfg.Models.BaseURL},
		File: &assets.FileFetcher{},
	}
	a.viewer, err = viewer.New(viewer.OptionsFromConfig(cfg, w, h, fetcher), a.scene, framebuffer.Surface{})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}
	a.updatePixelRatio()
	a.scene.SetShading(a.viewer.Shading())
	a.scene.SetModelLight(lighting.SunDirection(cfg.Models.LightAzimuth, cfg.Models.LightElevation))

	a.capture, err = capture.New(cfg.Graphics.ScreenshotDir, "lidarview", cfg.Graphics.ScreenshotFormat)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.input = input.New()
	a.loader = NewLoader(a.viewer.Bus(), a.viewer.Queue(), opts.ChunkSize)

	bus := a.viewer.Bus()
	events.Subscribe(bus, events.ProgressUpdate, func(pct float64) {
		a.window.SetTitle(fmt.Sprintf("%s - loading model %.0f%%", title, pct))
	})
	events.Subscribe(bus, events.ProgressEnd, func(struct{}) {
		a.window.SetTitle(title)
	})

	if opts.ConfigPath != "" {
		a.watcher, err = config.Watch(opts.ConfigPath, 200*time.Millisecond, a.onConfigChange)
		if err != nil {
			// Live reload is optional.
			a.log.Warn("config watch disabled", zap.Error(err))
		}
	}

	a.log.Info("viewer initialized")
	return a, nil
}

// onConfigChange runs on the watcher goroutine.
func (a *App) onConfigChange(c *config.Config) {
	settings := viewer.ShadingFromConfig(c.Shading)
	a.viewer.Queue().Post(func() {
		a.log.Info("shading reloaded")
		a.viewer.Shading().Apply(a.viewer.Bus(), settings)
	})
}

// Run loads the files given in Options and runs the frame loop until the
// window is closed.
func (a *App) Run() error {
	a.running = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.ctx = ctx

	if len(a.opts.Files) > 0 {
		a.window.SetTitle(title + " - loading")
		a.loader.Load(ctx, a.opts.Files, a.onLoaded)
	}

	frame := time.Second / 120
	if a.cfg.Graphics.FPSLimit > 0 {
		frame = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	frames := 0
	fpsTimer := time.Now()

	a.log.Info("starting frame loop")

	for a.running {
		start := time.Now()

		if a.input.Update() {
			a.running = false
			break
		}
		for _, e := range a.input.Events() {
			a.handle(e)
		}

		if a.viewer.Tick() {
			if a.shot {
				a.saveScreenshot()
			}
			a.window.SwapBuffers()
			frames++
		}

		if time.Since(fpsTimer) >= time.Second {
			if frames > 0 {
				a.log.Debug("fps", zap.Int("count", frames))
			}
			frames = 0
			fpsTimer = time.Now()
		}

		if d := frame - time.Since(start); d > 0 {
			time.Sleep(d)
		}
	}

	return nil
}

// saveScreenshot writes the frame just drawn, before it is swapped away.
func (a *App) saveScreenshot() {
	a.shot = false
	w, h := a.window.DrawableSize()
	pixels, err := framebuffer.ReadScreen(w, h)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.capture.SavePixels(pixels, w, h)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) onLoaded(aggs []*pointcloud.Aggregator, err error) {
	a.window.SetTitle(title)
	if err != nil {
		a.log.Error("loading point files failed", zap.Error(err))
		return
	}
	if err := a.viewer.Load(aggs, true, nil); err != nil {
		a.log.Error("displaying point files failed", zap.Error(err))
	}
}

// handle dispatches one input event.
func (a *App) handle(e input.Event) {
	switch e.Type {
	case input.EventWindowResize:
		w, h := a.window.DrawableSize()
		if err := a.viewer.Resize(w, h); err != nil {
			a.log.Error("resize failed", zap.Error(err))
		}
		a.updatePixelRatio()
	case input.EventKeyDown:
		a.handleKey(e.Key)
	case input.EventMouseDown:
		a.handlePointerDown(e)
	case input.EventMouseMove:
		if rig := a.viewer.Cameras().ActiveRig(); rig != nil {
			x, y := a.toPixels(e.MouseX, e.MouseY)
			rig.Controls.PointerMove(x, y)
		}
	case input.EventMouseUp:
		if rig := a.viewer.Cameras().ActiveRig(); rig != nil {
			rig.Controls.PointerUp()
		}
	case input.EventWheel:
		a.handleWheel(e.Wheel)
	}
}

func (a *App) handleKey(key sdl.Keycode) {
	v := a.viewer
	switch key {
	case sdl.K_ESCAPE:
		a.running = false
	case sdl.K_1:
		a.activate(viewer.RigPerspective)
	case sdl.K_2:
		a.activate(viewer.RigOrtho)
	case sdl.K_3:
		a.activate(viewer.RigTop)
	case sdl.K_m:
		if v.Measuring() {
			v.DisableMensuration()
		} else {
			v.EnableMensuration()
		}
		a.log.Info("mensuration", zap.Bool("on", v.Measuring()))
	case sdl.K_c:
		events.Signal(v.Bus(), events.PointsReset)
	case sdl.K_r:
		v.ResetCamera()
	case sdl.K_p:
		a.placing = !a.placing && a.opts.ModelURL != ""
		a.log.Info("model placement", zap.Bool("on", a.placing))
	case sdl.K_x:
		v.ResetModels()
	case sdl.K_LEFTBRACKET:
		a.modelScale /= 1.25
		v.ScaleModels(a.modelScale)
	case sdl.K_RIGHTBRACKET:
		a.modelScale *= 1.25
		v.ScaleModels(a.modelScale)
	case sdl.K_o:
		a.openPointFiles(a.ctx)
	case sdl.K_l:
		a.chooseModel()
	case sdl.K_s:
		a.shot = true
		v.MarkDirty()
	case sdl.K_f:
		if err := a.window.ToggleFullscreen(); err != nil {
			a.log.Warn("fullscreen toggle failed", zap.Error(err))
		}
	}
}

func (a *App) activate(name string) {
	if err := a.viewer.ActivateCamera(name); err != nil {
		a.log.Warn("camera switch failed", zap.Error(err))
	}
}

func (a *App) handlePointerDown(e input.Event) {
	v := a.viewer
	x, y := a.toPixels(e.MouseX, e.MouseY)

	if e.Button == input.ButtonLeft {
		switch {
		case v.Measuring():
			action := v.AddMeasurePoint(int(x), int(y), e.Shift)
			a.log.Debug("measure click", zap.Stringer("action", action))
			return
		case a.placing:
			if !v.PlaceModel(int(x), int(y), a.opts.ModelURL, a.modelScale) {
				a.log.Debug("no point under cursor")
			}
			return
		}
	}

	if rig := v.Cameras().ActiveRig(); rig != nil {
		rig.Controls.PointerDown(e.Button, x, y)
	}
}

// handleWheel zooms perspective rigs through the controller and scales the
// planes of orthographic ones.
func (a *App) handleWheel(delta float32) {
	rig := a.viewer.Cameras().ActiveRig()
	if rig == nil {
		return
	}
	if _, ok := rig.Camera.(*camera.Orthographic); ok {
		level := rig.ZoomLevel() * (1 - delta*0.1)
		if err := a.viewer.Cameras().SetZoomLevel(rig.Name, max(level, 0.01)); err != nil {
			a.log.Warn("zoom failed", zap.Error(err))
		}
		return
	}
	rig.Controls.Wheel(delta)
}

// updatePixelRatio keeps marker hit testing in step with the display density.
func (a *App) updatePixelRatio() {
	ww, _ := a.window.GetSize()
	dw, _ := a.window.DrawableSize()
	a.viewer.Collector().SetPixelRatio(pixelRatio(ww, dw))
}

// pixelRatio returns drawable pixels per window unit.
func pixelRatio(windowWidth, drawableWidth int) float32 {
	if windowWidth <= 0 || drawableWidth <= 0 {
		return 1
	}
	return float32(drawableWidth) / float32(windowWidth)
}

// toPixels converts window coordinates to drawable pixels.
func (a *App) toPixels(x, y int) (float32, float32) {
	ww, wh := a.window.GetSize()
	dw, dh := a.window.DrawableSize()
	if ww == 0 || wh == 0 {
		return float32(x), float32(y)
	}
	return float32(x) * float32(dw) / float32(ww), float32(y) * float32(dh) / float32(wh)
}

// Close releases everything New created.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing config watcher", zap.Error(err))
		}
	}
	if a.viewer != nil {
		a.viewer.Destroy()
	}
	if a.scene != nil {
		a.scene.Destroy()
	}
	if a.window != nil {
		a.window.Close()
	}
}
