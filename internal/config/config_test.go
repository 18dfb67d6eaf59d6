package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	// Test trackball defaults
	if cfg.Camera.RotateSpeed != 1.0 {
		t.Errorf("expected rotate speed 1.0, got %f", cfg.Camera.RotateSpeed)
	}
	if cfg.Camera.ZoomSpeed != 1.2 {
		t.Errorf("expected zoom speed 1.2, got %f", cfg.Camera.ZoomSpeed)
	}
	if cfg.Camera.PanSpeed != 0.8 {
		t.Errorf("expected pan speed 0.8, got %f", cfg.Camera.PanSpeed)
	}
	if cfg.Camera.Damping != 0.3 {
		t.Errorf("expected damping 0.3, got %f", cfg.Camera.Damping)
	}

	// Test picking defaults
	if cfg.Picking.Downsample != 1 {
		t.Errorf("expected downsample 1, got %d", cfg.Picking.Downsample)
	}
	if cfg.Picking.PointSize != 10 {
		t.Errorf("expected pick point size 10, got %f", cfg.Picking.PointSize)
	}
	if cfg.Picking.Encoding != EncodingNative {
		t.Errorf("expected native encoding, got %s", cfg.Picking.Encoding)
	}

	if cfg.Measure.HitRadius != 16 {
		t.Errorf("expected hit radius 16, got %f", cfg.Measure.HitRadius)
	}
	if cfg.Models.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Models.Timeout)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

camera:
  fov: 60
  damping: 0.5

picking:
  downsample: 2
  encoding: emulated

shading:
  point_size: 3
  intensity_clamp: [10, 90]
  color_source: classification

models:
  base_url: "https://models.example.com/"
  timeout: 5s

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Camera.Fov != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Camera.Fov)
	}
	if cfg.Camera.Damping != 0.5 {
		t.Errorf("expected damping 0.5, got %f", cfg.Camera.Damping)
	}
	// Untouched keys keep their defaults
	if cfg.Camera.ZoomSpeed != 1.2 {
		t.Errorf("expected default zoom speed 1.2, got %f", cfg.Camera.ZoomSpeed)
	}

	if cfg.Picking.Downsample != 2 {
		t.Errorf("expected downsample 2, got %d", cfg.Picking.Downsample)
	}
	if cfg.Picking.Encoding != EncodingEmulated {
		t.Errorf("expected emulated encoding, got %s", cfg.Picking.Encoding)
	}

	if cfg.Shading.IntensityClamp != [2]float64{10, 90} {
		t.Errorf("expected intensity clamp [10 90], got %v", cfg.Shading.IntensityClamp)
	}
	if cfg.Shading.ColorSource != "classification" {
		t.Errorf("expected color source classification, got %s", cfg.Shading.ColorSource)
	}

	if cfg.Models.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Models.Timeout)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestOverrides(t *testing.T) {
	tests := []struct {
		name   string
		ov     Overrides
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug",
			ov:   Overrides{Debug: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "fullscreen",
			ov:   Overrides{Fullscreen: true},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
		},
		{
			name: "windowed",
			ov:   Overrides{Windowed: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
		},
		{
			name: "size",
			ov:   Overrides{Width: 2560, Height: 1440},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
		},
		{
			name: "downsample",
			ov:   Overrides{Downsample: 4},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Picking.Downsample != 4 {
					t.Errorf("expected downsample 4, got %d", cfg.Picking.Downsample)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.ov.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
picking:
  downsample: 0
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, used, err := Load(Overrides{ConfigPath: configPath, Width: 1920})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if used != configPath {
		t.Errorf("expected config path %s, got %s", configPath, used)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	// Invalid downsample is normalized
	if cfg.Picking.Downsample != 1 {
		t.Errorf("expected downsample normalized to 1, got %d", cfg.Picking.Downsample)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Shading.ColorClamp = [2]float64{0.2, 0.8}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := Reload(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if loaded.Shading.ColorClamp != cfg.Shading.ColorClamp {
		t.Errorf("expected color clamp %v, got %v", cfg.Shading.ColorClamp, loaded.Shading.ColorClamp)
	}
}
