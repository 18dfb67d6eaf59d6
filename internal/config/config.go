// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Picking  PickingConfig  `yaml:"picking"`
	Shading  ShadingConfig  `yaml:"shading"`
	Measure  MeasureConfig  `yaml:"measure"`
	Models   ModelsConfig   `yaml:"models"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`

	ScreenshotDir    string `yaml:"screenshot_dir"`
	ScreenshotFormat string `yaml:"screenshot_format"` // png, bmp or tiff
}

// CameraConfig holds projection and trackball settings.
type CameraConfig struct {
	Fov         float32 `yaml:"fov"` // degrees
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	RotateSpeed float32 `yaml:"rotate_speed"`
	ZoomSpeed   float32 `yaml:"zoom_speed"`
	PanSpeed    float32 `yaml:"pan_speed"`
	Damping     float32 `yaml:"damping"`
}

// Encoding names accepted by PickingConfig.Encoding.
const (
	EncodingNative   = "native"
	EncodingEmulated = "emulated"
)

// PickingConfig holds the picking pass settings.
type PickingConfig struct {
	Downsample int     `yaml:"downsample"`
	PointSize  float32 `yaml:"point_size"`
	Encoding   string  `yaml:"encoding"`
}

// ShadingConfig holds the point shading settings.
type ShadingConfig struct {
	PointSize         float32    `yaml:"point_size"`
	IntensityClamp    [2]float64 `yaml:"intensity_clamp"` // percent of the intensity range
	ColorClamp        [2]float64 `yaml:"color_clamp"`
	IntensityBlend    float32    `yaml:"intensity_blend"` // percent
	ColorSource       string     `yaml:"color_source"`
	IntensitySource   string     `yaml:"intensity_source"`
	MaxColorComponent float32    `yaml:"max_color_component"`
}

// MeasureConfig holds mensuration settings.
type MeasureConfig struct {
	HitRadius  float32 `yaml:"hit_radius"` // pixels
	MarkerSize float32 `yaml:"marker_size"`
}

// ModelsConfig holds model loading settings.
type ModelsConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// Sun position lighting placed models, in degrees.
	LightAzimuth   float32 `yaml:"light_azimuth"`
	LightElevation float32 `yaml:"light_elevation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	FileFormat string `yaml:"file_format"` // text or json
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,

			ScreenshotDir:    "screenshots",
			ScreenshotFormat: "png",
		},
		Camera: CameraConfig{
			Fov:         75,
			Near:        1,
			Far:         10000,
			RotateSpeed: 1.0,
			ZoomSpeed:   1.2,
			PanSpeed:    0.8,
			Damping:     0.3,
		},
		Picking: PickingConfig{
			Downsample: 1,
			PointSize:  10,
			Encoding:   EncodingNative,
		},
		Shading: ShadingConfig{
			PointSize:         1,
			IntensityClamp:    [2]float64{0, 100},
			ColorClamp:        [2]float64{0, 1},
			IntensityBlend:    0,
			ColorSource:       "rgb",
			IntensitySource:   "none",
			MaxColorComponent: 1,
		},
		Measure: MeasureConfig{
			HitRadius:  16,
			MarkerSize: 8,
		},
		Models: ModelsConfig{
			BaseURL: "",
			Timeout: 30 * time.Second,

			LightAzimuth:   90,
			LightElevation: 60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			FileFormat: "text",
		},
	}
}
