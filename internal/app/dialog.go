package app

import (
	"context"
	"errors"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"
)

// openPointFiles asks for LAS files and loads them in place of the current
// data. The dialog runs on its own goroutine so frames keep drawing; the
// result is handed back through the queue.
func (a *App) openPointFiles(ctx context.Context) {
	go func() {
		path, err := dialog.File().
			Filter("LAS point clouds", "las").
			Filter("All Files", "*").
			Title("Open point cloud").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}

		a.viewer.Queue().Post(func() {
			a.window.SetTitle(title + " - loading")
			a.loader.Load(ctx, []string{path}, a.onLoaded)
		})
	}()
}

// chooseModel asks for an STL file and turns placement mode on with it.
func (a *App) chooseModel() {
	go func() {
		path, err := dialog.File().
			Filter("STL models", "stl").
			Title("Choose model to place").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}

		a.viewer.Queue().Post(func() {
			a.opts.ModelURL = path
			a.placing = true
			a.log.Info("model placement", zap.String("model", path), zap.Bool("on", true))
		})
	}()
}
