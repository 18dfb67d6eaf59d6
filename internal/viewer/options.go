package viewer

import (
	"github.com/Faultbox/lidarview/internal/assets"
	"github.com/Faultbox/lidarview/internal/config"
	"github.com/Faultbox/lidarview/internal/engine/camera"
	"github.com/Faultbox/lidarview/internal/engine/measure"
	"github.com/Faultbox/lidarview/internal/engine/picking"
	"github.com/Faultbox/lidarview/internal/engine/shading"
)

// OptionsFromConfig builds viewer options for a surface of width x height.
// fetcher loads placed models.
func OptionsFromConfig(cfg *config.Config, width, height int, fetcher assets.Fetcher) Options {
	return Options{
		Width:  width,
		Height: height,
		Fov:    cfg.Camera.Fov,
		Near:   cfg.Camera.Near,
		Far:    cfg.Camera.Far,
		Trackball: camera.Options{
			RotateSpeed: cfg.Camera.RotateSpeed,
			ZoomSpeed:   cfg.Camera.ZoomSpeed,
			PanSpeed:    cfg.Camera.PanSpeed,
			Damping:     cfg.Camera.Damping,
		},
		Picking: picking.Options{
			Downsample: cfg.Picking.Downsample,
			PointSize:  cfg.Picking.PointSize,
			Encoding:   picking.ParseEncoding(cfg.Picking.Encoding),
		},
		Measure: measure.Options{
			HitRadius:  cfg.Measure.HitRadius,
			MarkerSize: cfg.Measure.MarkerSize,
		},
		Shading: ShadingFromConfig(cfg.Shading),
		Models: assets.Options{
			Fetcher: fetcher,
			Timeout: cfg.Models.Timeout,
		},
	}
}

// ShadingFromConfig converts the shading section of a config.
func ShadingFromConfig(sc config.ShadingConfig) shading.Settings {
	return shading.Settings{
		PointSize:         sc.PointSize,
		IntensityClamp:    sc.IntensityClamp,
		ColorClamp:        sc.ColorClamp,
		IntensityBlend:    sc.IntensityBlend,
		ColorSource:       sc.ColorSource,
		IntensitySource:   sc.IntensitySource,
		MaxColorComponent: sc.MaxColorComponent,
	}
}
