package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/lidarview/internal/engine/pointcloud"
	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
	"github.com/Faultbox/lidarview/internal/sched"
	"github.com/Faultbox/lidarview/pkg/las"
)

// DefaultChunkSize is the number of records read per batch.
const DefaultChunkSize = 1 << 16

// Loader streams LAS files into aggregators. Files are read on worker
// goroutines and every chunk is pushed on the frame thread through the queue.
type Loader struct {
	bus       *events.Bus
	queue     *sched.Queue
	chunkSize int
	log       *zap.Logger
}

// NewLoader creates a loader. A chunkSize below one uses DefaultChunkSize.
func NewLoader(bus *events.Bus, queue *sched.Queue, chunkSize int) *Loader {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Loader{
		bus:       bus,
		queue:     queue,
		chunkSize: chunkSize,
		log:       logger.Named("loader"),
	}
}

// Load reads paths concurrently, one aggregator per path. done runs on the
// frame thread after the last chunk was pushed, with the aggregators in path
// order and the first error any reader hit.
func (l *Loader) Load(ctx context.Context, paths []string, done func([]*pointcloud.Aggregator, error)) {
	aggs := make([]*pointcloud.Aggregator, len(paths))
	for i := range paths {
		aggs[i] = pointcloud.NewAggregator(l.bus)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			return l.readFile(ctx, path, aggs[i])
		})
	}

	go func() {
		err := g.Wait()
		l.queue.Post(func() { done(aggs, err) })
	}()
}

func (l *Loader) readFile(ctx context.Context, path string, agg *pointcloud.Aggregator) error {
	r, err := las.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	h := r.Header()
	l.log.Info("reading point file",
		zap.String("path", path),
		zap.Uint64("points", h.PointCount),
		zap.Uint8("format", h.PointFormat),
		zap.String("software", h.Software))

	chunks := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := pointcloud.ReadChunk(r, l.chunkSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		l.queue.Post(func() { agg.Push(c) })
		chunks++
	}

	l.log.Debug("point file read", zap.String("path", path), zap.Int("chunks", chunks))
	return nil
}
