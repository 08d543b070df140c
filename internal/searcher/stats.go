package searcher

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkgdepot/registry-search/pkg/kafka"
	"github.com/pkgdepot/registry-search/pkg/logger"
)

// SearchEvent is the per-query analytics record published to kafka.
type SearchEvent struct {
	Query      string    `json:"query"`
	Words      []string  `json:"words"`
	Tags       []string  `json:"tags,omitempty"`
	TotalHits  int       `json:"total_hits"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatsCollector buffers search events and publishes them to kafka in the
// background. Recording never blocks the query path: when the buffer is
// full the event is dropped and the caller told so.
type StatsCollector struct {
	publisher kafka.Publisher
	events    chan SearchEvent
	logger    *slog.Logger
	closed    atomic.Bool
	done      chan struct{}
	dropped   atomic.Int64
}

// NewStatsCollector creates a StatsCollector with the given buffer size.
func NewStatsCollector(publisher kafka.Publisher, bufferSize int) *StatsCollector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &StatsCollector{
		publisher: publisher,
		events:    make(chan SearchEvent, bufferSize),
		logger:    logger.WithComponent("stats-collector"),
		done:      make(chan struct{}),
	}
}

// Start launches the publishing loop. It drains until ctx is cancelled or
// Close is called.
func (c *StatsCollector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-c.events:
				if !ok {
					return
				}
				if err := c.publisher.Publish(ctx, kafka.Event{Key: "search", Value: ev}); err != nil {
					c.logger.Error("failed to publish search event", "error", err)
				}
			}
		}
	}()
}

// Record enqueues an event without blocking. It reports false when the
// event was dropped.
func (c *StatsCollector) Record(ev SearchEvent) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.events <- ev:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of events dropped so far.
func (c *StatsCollector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events and waits for the publishing loop to drain
// the buffer.
func (c *StatsCollector) Close() {
	if c.closed.Swap(true) {
		return
	}
	close(c.events)
	<-c.done
}
