package config

import "github.com/spf13/cobra"

// Overrides holds command-line values that take priority over the config file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Fullscreen bool
	Windowed   bool
	Width      int
	Height     int
	Downsample int
}

// BindFlags registers the override flags on a cobra command.
func (o *Overrides) BindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.ConfigPath, "config", "", "Path to config file")
	f.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
	f.BoolVar(&o.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	f.BoolVar(&o.Windowed, "windowed", false, "Run in windowed mode")
	f.IntVar(&o.Width, "width", 0, "Window width")
	f.IntVar(&o.Height, "height", 0, "Window height")
	f.IntVar(&o.Downsample, "downsample", 0, "Picking target downsample factor")
}

// apply applies CLI overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.Windowed {
		cfg.Graphics.Fullscreen = false
	}
	if o.Fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if o.Width > 0 {
		cfg.Graphics.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Graphics.Height = o.Height
	}
	if o.Downsample > 0 {
		cfg.Picking.Downsample = o.Downsample
	}
}
