package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shading:\n  point_size: 1\n"), 0644))

	got := make(chan *Config, 4)
	w, err := Watch(path, 20*time.Millisecond, func(cfg *Config) { got <- cfg })
	require.NoError(t, err)
	defer w.Close()

	// Several quick writes collapse into one reload
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("shading:\n  point_size: 4\n"), 0644))
	}

	select {
	case cfg := <-got:
		assert.Equal(t, float32(4), cfg.Shading.PointSize)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	got := make(chan *Config, 1)
	w, err := Watch(path, 10*time.Millisecond, func(cfg *Config) { got <- cfg })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("{}\n"), 0644))

	select {
	case <-got:
		t.Fatal("unexpected reload for unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}
