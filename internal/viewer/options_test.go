package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/lidarview/internal/config"
	"github.com/Faultbox/lidarview/internal/engine/picking"
	"github.com/Faultbox/lidarview/internal/engine/shading"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Picking.Encoding = config.EncodingEmulated
	cfg.Picking.Downsample = 4
	cfg.Models.Timeout = 5 * time.Second
	fetcher := &memFetcher{}

	opts := OptionsFromConfig(cfg, 1024, 768, fetcher)

	assert.Equal(t, 1024, opts.Width)
	assert.Equal(t, 768, opts.Height)
	assert.Equal(t, float32(75), opts.Fov)
	assert.Equal(t, float32(1), opts.Near)
	assert.Equal(t, float32(10000), opts.Far)
	assert.Equal(t, float32(0.3), opts.Trackball.Damping)
	assert.Equal(t, picking.EncodingEmulated, opts.Picking.Encoding)
	assert.Equal(t, 4, opts.Picking.Downsample)
	assert.Equal(t, float32(16), opts.Measure.HitRadius)
	assert.Equal(t, 5*time.Second, opts.Models.Timeout)
	assert.NotNil(t, opts.Models.Fetcher)
}

func TestShadingFromConfigMatchesDefaults(t *testing.T) {
	got := ShadingFromConfig(config.Default().Shading)
	assert.Equal(t, shading.DefaultSettings(), got)
}
