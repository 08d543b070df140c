package searcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkgdepot/registry-search/internal/corpus"
	apperrors "github.com/pkgdepot/registry-search/pkg/errors"
	"github.com/pkgdepot/registry-search/pkg/kafka"
	"github.com/pkgdepot/registry-search/pkg/logger"
	"github.com/pkgdepot/registry-search/pkg/resilience"
)

const defaultFetchTimeout = 30 * time.Second

// CorpusUpdateEvent is the payload on the corpus-update topic. Any event on
// the topic triggers a full reload; the fields are informational.
type CorpusUpdateEvent struct {
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexCompleteEvent is published after a successful rebuild.
type IndexCompleteEvent struct {
	Generation uint64    `json:"generation"`
	Documents  int       `json:"documents"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Refresher reloads the corpus and rebuilds the service's index snapshot
// whenever a corpus-update event arrives.
type Refresher struct {
	svc          *Service
	provider     corpus.Provider
	producer     kafka.Publisher
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewRefresher creates a Refresher. producer may be nil to skip publishing
// index-complete events.
func NewRefresher(svc *Service, provider corpus.Provider, producer kafka.Publisher) *Refresher {
	return &Refresher{
		svc:          svc,
		provider:     provider,
		producer:     producer,
		fetchTimeout: defaultFetchTimeout,
		logger:       logger.WithComponent("refresher"),
	}
}

// Handler returns the kafka MessageHandler driving this Refresher.
func (r *Refresher) Handler() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[CorpusUpdateEvent](value)
		if err != nil {
			r.logger.Error("ignoring malformed corpus-update event", "error", err)
			return nil
		}
		r.logger.Info("corpus update received", "reason", event.Reason)
		return r.Reload(ctx)
	}
}

// Reload fetches a fresh corpus snapshot from the provider, rebuilds the
// index, and publishes an index-complete event.
func (r *Refresher) Reload(ctx context.Context) error {
	start := time.Now()
	var docs []corpus.Document
	err := resilience.WithTimeout(ctx, r.fetchTimeout, "corpus fetch", func(ctx context.Context) error {
		var err error
		docs, err = r.provider.Documents(ctx)
		return err
	})
	if err != nil {
		return apperrors.Newf(apperrors.ErrCorpusUnavailable, "fetching corpus: %v", err)
	}

	if err := r.svc.Rebuild(ctx, docs); err != nil {
		return err
	}

	if r.producer != nil {
		event := IndexCompleteEvent{
			Generation: r.svc.Generation(),
			Documents:  len(docs),
			ElapsedMs:  time.Since(start).Milliseconds(),
			Timestamp:  time.Now().UTC(),
		}
		if err := r.producer.Publish(ctx, kafka.Event{Key: "index-complete", Value: event}); err != nil {
			r.logger.Warn("failed to publish index-complete event", "error", err)
		}
	}
	return nil
}
