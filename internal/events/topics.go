package events

import "github.com/go-gl/mathgl/mgl64"

// ZRange is the vertical extent of the loaded data in display units.
type ZRange struct {
	Min, Max float64
}

// Loaded data.
var (
	OffsetsChanged = NewTopic[mgl64.Vec3]("offsets-changed")
	ZRangeChanged  = NewTopic[ZRange]("zrange-changed")
	ScaleChanged   = NewTopic[mgl64.Vec3]("scale-changed")
)

// Shading controls.
var (
	IntensityClampChanged    = NewTopic[struct{}]("intensity-clamp-changed")
	ColorClampChanged        = NewTopic[struct{}]("color-clamp-changed")
	PointSizeChanged         = NewTopic[float32]("point-size-changed")
	ColorSourceChanged       = NewTopic[string]("color-source-changed")
	IntensitySourceChanged   = NewTopic[string]("intensity-source-changed")
	IntensityBlendChanged    = NewTopic[float32]("intensity-blend-changed")
	MaxColorComponentChanged = NewTopic[float32]("max-color-component-changed")
)

// PointsReset asks the measurement collector to drop every marker.
// PointAdded and PointRemoved live in the measure package with their payload.
var PointsReset = NewTopic[struct{}]("points-reset")

// Model loading progress. ProgressUpdate carries a percentage in [0, 100].
var (
	ProgressStart  = NewTopic[struct{}]("progress-start")
	ProgressUpdate = NewTopic[float64]("progress-update")
	ProgressEnd    = NewTopic[struct{}]("progress-end")
)

// Frame loop.
var (
	NeedRefresh   = NewTopic[struct{}]("need-refresh")
	CameraChanged = NewTopic[string]("camera-changed")
)
