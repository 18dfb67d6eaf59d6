// Package main is the entry point for the LidarView point cloud viewer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/app"
	"github.com/Faultbox/lidarview/internal/config"
	"github.com/Faultbox/lidarview/internal/logger"
)

var (
	overrides config.Overrides
	appOpts   app.Options
)

var rootCmd = &cobra.Command{
	Use:   "lidarview [file.las...]",
	Short: "Interactive LIDAR point cloud viewer",
	Long: `lidarview displays one or more LAS point clouds in an OpenGL window.

Keys:
  O        open a point cloud
  1 2 3    perspective, orthographic and top camera
  R        reset the camera
  M        toggle measuring (shift-click starts a new line)
  C        clear measurements
  L        choose a model to place
  P        toggle model placement
  [ ]      scale placed models
  X        remove placed models
  S        save a screenshot
  F        toggle fullscreen
  Esc      quit`,
	Version:      "0.1.0",
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runViewer,
}

func init() {
	overrides.BindFlags(rootCmd)
	f := rootCmd.Flags()
	f.StringVar(&appOpts.ModelURL, "model", "", "Model placed on click in placement mode (STL, path or URL)")
	f.Float32Var(&appOpts.ModelScale, "model-scale", 1, "Initial scale of placed models")
	f.IntVar(&appOpts.ChunkSize, "chunk-size", app.DefaultChunkSize, "Points read per batch")
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.FileFormat); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("=== LidarView ===", zap.String("config", path), zap.Strings("files", args))

	appOpts.ConfigPath = path
	appOpts.Files = args

	a, err := app.New(cfg, appOpts)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return err
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return err
	}

	logger.Info("viewer closed normally")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
