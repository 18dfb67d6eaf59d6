// Package assets loads and caches auxiliary 3D models by URL.
package assets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/lidarview/internal/events"
	"github.com/Faultbox/lidarview/internal/logger"
	"github.com/Faultbox/lidarview/internal/sched"
)

// ErrLoadFailed is wrapped by every error delivered to a GetModel callback.
var ErrLoadFailed = errors.New("model load failed")

// Callback receives a loaded model or an error wrapping ErrLoadFailed.
type Callback func(*Model, error)

// Options configures a Cache.
type Options struct {
	Fetcher Fetcher
	Decoder Decoder       // defaults to DecodeSTL
	Timeout time.Duration // per fetch; zero means no timeout
}

// Cache memoizes models by URL and coalesces concurrent requests so at most
// one transfer per URL is in flight. Entries are never evicted.
//
// Cache is not safe for concurrent use. GetModel must be called from the
// frame thread; fetch results and callbacks come back through the queue.
type Cache struct {
	bus     *events.Bus
	queue   *sched.Queue
	fetcher Fetcher
	decode  Decoder
	timeout time.Duration
	log     *zap.Logger

	models  map[string]*Model
	pending map[string][]Callback

	// Stats
	hits   int
	misses int
	loads  int
}

// NewCache creates a cache that posts results to queue and publishes progress on bus.
func NewCache(bus *events.Bus, queue *sched.Queue, opts Options) *Cache {
	if opts.Decoder == nil {
		opts.Decoder = DecodeSTL
	}
	return &Cache{
		bus:     bus,
		queue:   queue,
		fetcher: opts.Fetcher,
		decode:  opts.Decoder,
		timeout: opts.Timeout,
		log:     logger.Named("assets"),
		models:  make(map[string]*Model),
		pending: make(map[string][]Callback),
	}
}

// GetModel delivers the model for url to cb. The callback always runs on a
// later queue drain, even on a cache hit.
func (c *Cache) GetModel(url string, cb Callback) {
	if m, ok := c.models[url]; ok {
		c.hits++
		c.queue.Post(func() { cb(m, nil) })
		return
	}
	c.misses++

	if waiters, ok := c.pending[url]; ok {
		c.pending[url] = append(waiters, cb)
		return
	}
	c.pending[url] = []Callback{cb}
	c.loads++

	c.log.Info("loading model", zap.String("url", url))
	c.signal(events.ProgressStart)
	go c.load(url)
}

// load runs off the frame thread and only touches the queue.
func (c *Cache) load(url string) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	last := -1
	progress := func(read, total int64) {
		if total <= 0 {
			return
		}
		pct := int(math.Min(100, float64(read)*100/float64(total)))
		if pct == last {
			return
		}
		last = pct
		c.queue.Post(func() { c.publishProgress(float64(pct)) })
	}

	var m *Model
	var err error
	if c.fetcher == nil {
		err = errors.New("no fetcher configured")
	} else {
		var data []byte
		data, err = c.fetcher.Fetch(ctx, url, progress)
		if err == nil {
			m, err = c.decode(data)
		}
	}
	c.queue.Post(func() { c.finish(url, m, err) })
}

func (c *Cache) finish(url string, m *Model, err error) {
	waiters := c.pending[url]
	delete(c.pending, url)

	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrLoadFailed, url, err)
		c.log.Warn("model load failed", zap.String("url", url), zap.Error(err))
		m = nil
	} else {
		m.URL = url
		m.whiten()
		c.models[url] = m
		c.log.Info("model loaded",
			zap.String("url", url),
			zap.Int("vertices", m.Geometry.VertexCount()),
			zap.Int("callbacks", len(waiters)))
	}
	c.signal(events.ProgressEnd)

	for _, cb := range waiters {
		c.queue.Post(func() { cb(m, err) })
	}
}

func (c *Cache) signal(topic events.Topic[struct{}]) {
	if c.bus != nil {
		events.Signal(c.bus, topic)
	}
}

func (c *Cache) publishProgress(pct float64) {
	if c.bus != nil {
		events.Publish(c.bus, events.ProgressUpdate, pct)
	}
}

// Has reports whether url is cached.
func (c *Cache) Has(url string) bool {
	_, ok := c.models[url]
	return ok
}

// Pending reports whether a load for url is in flight.
func (c *Cache) Pending(url string) bool {
	_, ok := c.pending[url]
	return ok
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	return len(c.models)
}

// Stats returns cache statistics: lookups served from memory, lookups that
// missed, and fetches started.
func (c *Cache) Stats() (hits, misses, loads int) {
	return c.hits, c.misses, c.loads
}
