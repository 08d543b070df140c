package searcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgdepot/registry-search/pkg/kafka"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, ev kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) published() []kafka.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kafka.Event(nil), f.events...)
}

func TestStatsCollectorPublishesEvents(t *testing.T) {
	fp := &fakePublisher{}
	c := NewStatsCollector(fp, 16)
	c.Start(context.Background())

	for i := 0; i < 3; i++ {
		assert.True(t, c.Record(SearchEvent{Query: "http"}))
	}
	c.Close()

	events := fp.published()
	require.Len(t, events, 3)
	assert.Equal(t, "search", events[0].Key)
	assert.Zero(t, c.Dropped())
}

func TestStatsCollectorDropsWhenBufferFull(t *testing.T) {
	c := NewStatsCollector(&fakePublisher{}, 1)

	assert.True(t, c.Record(SearchEvent{Query: "first"}))
	assert.False(t, c.Record(SearchEvent{Query: "second"}))
	assert.Equal(t, int64(1), c.Dropped())
}

func TestStatsCollectorRejectsAfterClose(t *testing.T) {
	c := NewStatsCollector(&fakePublisher{}, 4)
	c.Start(context.Background())
	c.Close()

	assert.False(t, c.Record(SearchEvent{Query: "late"}))
}

func TestStatsCollectorCloseIdempotent(t *testing.T) {
	c := NewStatsCollector(&fakePublisher{}, 4)
	c.Start(context.Background())
	c.Close()
	c.Close()
}

func TestStatsCollectorSurvivesPublishErrors(t *testing.T) {
	fp := &fakePublisher{err: errors.New("broker down")}
	c := NewStatsCollector(fp, 4)
	c.Start(context.Background())

	assert.True(t, c.Record(SearchEvent{Query: "http"}))
	c.Close()
}
