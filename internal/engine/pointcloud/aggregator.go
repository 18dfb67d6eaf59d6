package pointcloud

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
)

// StatsChanged is published with an aggregator's running stats after every Push.
var StatsChanged = events.NewTopic[Stats]("stats-changed")

// Graph is the part of a scene that holds point batches.
type Graph interface {
	AddBatch(*Batch)
	RemoveBatch(*Batch)
}

// Aggregator owns the batches of one data source and their merged stats.
// It is not safe for concurrent use; push from the frame thread.
type Aggregator struct {
	bus     *events.Bus
	batches []*Batch
	stats   Stats

	// Scale is the display scale applied to world positions.
	Scale mgl64.Vec3

	attached Graph
}

// NewAggregator creates an empty aggregator. bus may be nil.
func NewAggregator(bus *events.Bus) *Aggregator {
	return &Aggregator{bus: bus, Scale: mgl64.Vec3{1, 1, 1}}
}

// Push builds a batch from c and folds its stats into the running stats.
// When the aggregator is attached to a graph the batch is added right away.
func (a *Aggregator) Push(c *Chunk) *Batch {
	b := NewBatch(c)
	a.batches = append(a.batches, b)
	a.stats = a.stats.Merge(b.Stats)

	if a.attached != nil {
		a.attached.AddBatch(b)
	}

	logger.Debug("batch pushed",
		zap.Stringer("batch", b.ID),
		zap.Int("points", b.Len()),
		zap.Int("total", a.stats.Count))

	if a.bus != nil {
		events.Publish(a.bus, StatsChanged, a.stats)
	}
	return b
}

// AddToScene attaches every batch to g.
func (a *Aggregator) AddToScene(g Graph) {
	for _, b := range a.batches {
		g.AddBatch(b)
	}
	a.attached = g
}

// RemoveFromScene detaches every batch from g. Stats are kept.
func (a *Aggregator) RemoveFromScene(g Graph) {
	for _, b := range a.batches {
		g.RemoveBatch(b)
	}
	if a.attached == g {
		a.attached = nil
	}
}

// Stats returns the running stats.
func (a *Aggregator) Stats() Stats { return a.stats }

// Batches returns the batches in push order.
func (a *Aggregator) Batches() []*Batch { return a.batches }

// Combine merges the stats of several simultaneously visible aggregators.
func Combine(aggs ...*Aggregator) Stats {
	var s Stats
	for _, a := range aggs {
		s = s.Merge(a.stats)
	}
	return s
}
