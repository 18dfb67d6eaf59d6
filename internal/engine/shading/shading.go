// Package shading keeps the uniform values of the point display material in
// step with the loaded data and the user's shading controls.
package shading

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/engine/pointcloud"
	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
)

// Color sources.
const (
	ColorRGB            = "rgb"
	ColorClassification = "classification"
	ColorHeightmap      = "heightmap-color"
	ColorHeightmapInv   = "heightmap-color-inv"
	ColorNone           = "none"
)

// Intensity sources.
const (
	IntensityNone         = "none"
	IntensityValue        = "intensity"
	IntensityHeightmap    = "heightmap"
	IntensityHeightmapInv = "heightmap-inv"
)

// clampEpsilon keeps every clamp range non-empty.
const clampEpsilon = 0.001

// minMaxColorComponent keeps color normalization away from zero.
const minMaxColorComponent = 0.0001

// Settings are the user-facing shading controls.
type Settings struct {
	PointSize float32
	// IntensityClamp is a [lower, upper] pair in percent of the loaded intensity range.
	IntensityClamp [2]float64
	// ColorClamp is a [lower, upper] pair of normalized color values.
	ColorClamp [2]float64
	// IntensityBlend is in percent.
	IntensityBlend    float32
	ColorSource       string
	IntensitySource   string
	MaxColorComponent float32
}

// DefaultSettings returns the stock shading controls.
func DefaultSettings() Settings {
	return Settings{
		PointSize:         1,
		IntensityClamp:    [2]float64{0, 100},
		ColorClamp:        [2]float64{0, 1},
		ColorSource:       ColorRGB,
		IntensitySource:   IntensityNone,
		MaxColorComponent: 1,
	}
}

// Uniforms are the values uploaded to the point display program.
type Uniforms struct {
	PointSize         float32
	IntensityBlend    float32 // [0, 1]
	MaxColorComponent float32

	// Color source selectors, exactly one is 1 unless the source is none.
	RGB, Class, Map, IMap float32
	// Intensity source selectors.
	Intensity, Height, IHeight float32

	Scale   mgl32.Vec3
	Offsets mgl32.Vec3
	ZRange  mgl32.Vec2

	ClampLower, ClampHigher           float32
	ColorClampLower, ColorClampHigher float32
}

// State derives Uniforms from Settings, data statistics and bus events.
// Access it from the frame thread only.
type State struct {
	settings Settings
	u        Uniforms

	intensityMin, intensityMax float64
	haveStats                  bool
}

// New creates a state with uniforms computed from s.
func New(s Settings) *State {
	st := &State{settings: s}
	st.u.Scale = mgl32.Vec3{1, 1, 1}
	st.u.PointSize = s.PointSize
	st.u.IntensityBlend = s.IntensityBlend / 100
	st.u.MaxColorComponent = max(minMaxColorComponent, s.MaxColorComponent)
	st.setColorSource(s.ColorSource)
	st.setIntensitySource(s.IntensitySource)
	st.updateIntensityClamp()
	st.updateColorClamp()
	return st
}

// Uniforms returns the current uniform values.
func (s *State) Uniforms() Uniforms { return s.u }

// Settings returns the current controls.
func (s *State) Settings() Settings { return s.settings }

// Subscribe wires the state to the bus.
func (s *State) Subscribe(bus *events.Bus) {
	events.Subscribe(bus, events.OffsetsChanged, func(v mgl64.Vec3) {
		s.u.Offsets = mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
	})
	events.Subscribe(bus, events.ZRangeChanged, func(z events.ZRange) {
		s.u.ZRange = mgl32.Vec2{float32(z.Min), float32(z.Max)}
	})
	events.Subscribe(bus, events.ScaleChanged, func(v mgl64.Vec3) {
		s.u.Scale = mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
	})
	events.Subscribe(bus, pointcloud.StatsChanged, func(st pointcloud.Stats) {
		s.SetIntensityRange(st.IntensityMin, st.IntensityMax, !st.Empty())
	})
	events.Subscribe(bus, events.IntensityClampChanged, func(struct{}) {
		s.updateIntensityClamp()
	})
	events.Subscribe(bus, events.ColorClampChanged, func(struct{}) {
		s.updateColorClamp()
	})
	events.Subscribe(bus, events.PointSizeChanged, func(v float32) {
		s.settings.PointSize = v
		s.u.PointSize = v
	})
	events.Subscribe(bus, events.ColorSourceChanged, func(v string) {
		s.settings.ColorSource = v
		s.setColorSource(v)
	})
	events.Subscribe(bus, events.IntensitySourceChanged, func(v string) {
		s.settings.IntensitySource = v
		s.setIntensitySource(v)
	})
	events.Subscribe(bus, events.IntensityBlendChanged, func(v float32) {
		s.settings.IntensityBlend = v
		s.u.IntensityBlend = v / 100
	})
	events.Subscribe(bus, events.MaxColorComponentChanged, func(v float32) {
		s.settings.MaxColorComponent = v
		s.u.MaxColorComponent = max(minMaxColorComponent, v)
	})
}

// SetIntensityClamp stores new clamp percentages. Publish
// IntensityClampChanged to apply them.
func (s *State) SetIntensityClamp(lower, upper float64) {
	s.settings.IntensityClamp = [2]float64{lower, upper}
}

// SetColorClamp stores new color clamp values. Publish ColorClampChanged to
// apply them.
func (s *State) SetColorClamp(lower, upper float64) {
	s.settings.ColorClamp = [2]float64{lower, upper}
}

// SetIntensityRange sets the data intensity range the clamp percentages refer to.
func (s *State) SetIntensityRange(lo, hi float64, ok bool) {
	s.intensityMin, s.intensityMax, s.haveStats = lo, hi, ok
	s.updateIntensityClamp()
}

// Apply replaces every control and publishes the matching events so other
// subscribers see the change.
func (s *State) Apply(bus *events.Bus, next Settings) {
	s.settings.IntensityClamp = next.IntensityClamp
	s.settings.ColorClamp = next.ColorClamp

	events.Publish(bus, events.PointSizeChanged, next.PointSize)
	events.Publish(bus, events.ColorSourceChanged, next.ColorSource)
	events.Publish(bus, events.IntensitySourceChanged, next.IntensitySource)
	events.Publish(bus, events.IntensityBlendChanged, next.IntensityBlend)
	events.Publish(bus, events.MaxColorComponentChanged, next.MaxColorComponent)
	events.Signal(bus, events.IntensityClampChanged)
	events.Signal(bus, events.ColorClampChanged)
	events.Signal(bus, events.NeedRefresh)
}

func (s *State) updateIntensityClamp() {
	lo, hi := s.settings.IntensityClamp[0], s.settings.IntensityClamp[1]

	// Without data the percentages are used as-is.
	if s.haveStats {
		n, x := s.intensityMin, s.intensityMax
		lo = n + (x-n)*lo/100
		hi = n + (x-n)*hi/100
	}

	s.u.ClampLower, s.u.ClampHigher = clampRange(lo, hi)

	logger.Debug("intensity clamp",
		zap.Float32("lower", s.u.ClampLower),
		zap.Float32("higher", s.u.ClampHigher))
}

func (s *State) updateColorClamp() {
	lo, hi := s.settings.ColorClamp[0], s.settings.ColorClamp[1]
	s.u.ColorClampLower, s.u.ColorClampHigher = clampRange(lo, hi)
}

// clampRange converts a clamp to uniform precision. The returned span is
// always positive in float32, even where lower+clampEpsilon rounds to lower.
func clampRange(lo, hi float64) (lower, higher float32) {
	lower, higher = float32(lo), float32(hi)
	if higher-lower < clampEpsilon {
		higher = max(lower+clampEpsilon, math.Nextafter32(lower, float32(math.Inf(1))))
	}
	return lower, higher
}

func (s *State) setColorSource(src string) {
	s.u.RGB, s.u.Class, s.u.Map, s.u.IMap = 0, 0, 0, 0
	switch src {
	case ColorRGB:
		s.u.RGB = 1
	case ColorClassification:
		s.u.Class = 1
	case ColorHeightmap:
		s.u.Map = 1
	case ColorHeightmapInv:
		s.u.IMap = 1
	}
}

func (s *State) setIntensitySource(src string) {
	s.u.Intensity, s.u.Height, s.u.IHeight = 0, 0, 0
	switch src {
	case IntensityValue:
		s.u.Intensity = 1
	case IntensityHeightmap:
		s.u.Height = 1
	case IntensityHeightmapInv:
		s.u.IHeight = 1
	}
}
