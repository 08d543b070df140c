// Package searcher hosts the search service built on the in-memory token
// index: snapshot lifecycle with atomic swap, the multi-field query path,
// the redis query cache, the kafka-driven corpus refresher, and the search
// analytics collector.
package searcher

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkgdepot/registry-search/internal/corpus"
	"github.com/pkgdepot/registry-search/internal/search/index"
	"github.com/pkgdepot/registry-search/internal/search/pool"
	"github.com/pkgdepot/registry-search/internal/search/score"
	"github.com/pkgdepot/registry-search/internal/search/tokenizer"
	"github.com/pkgdepot/registry-search/pkg/config"
	apperrors "github.com/pkgdepot/registry-search/pkg/errors"
	"github.com/pkgdepot/registry-search/pkg/logger"
	"github.com/pkgdepot/registry-search/pkg/metrics"
	"github.com/pkgdepot/registry-search/pkg/tracing"
)

// Query is one search request.
type Query struct {
	Text  string
	Tags  []string
	Limit int
}

// ScoredPackage is one ranked search hit.
type ScoredPackage struct {
	Package string  `json:"package"`
	Score   float64 `json:"score"`
}

// Result is the ranked outcome of one query.
type Result struct {
	Query      string          `json:"query"`
	TotalHits  int             `json:"total_hits"`
	Packages   []ScoredPackage `json:"packages"`
	Generation uint64          `json:"generation"`
}

// snapshot bundles the immutable per-corpus state: one token index per
// field over a shared key ordering, tag masks, and the pools that share the
// snapshot's lifetime. Replaced wholesale on every rebuild.
type snapshot struct {
	keys        []string
	name        *index.TokenIndex[string]
	description *index.TokenIndex[string]
	readme      *index.TokenIndex[string]
	tagMasks    map[string]*pool.BitArray
	scores      *pool.Pool[*score.IndexedScore[string]]
	masks       *pool.Pool[*pool.BitArray]
	generation  uint64
	builtAt     time.Time
}

// Service answers ranked package-search queries against the active corpus
// snapshot. Queries are read-only and safe for unbounded concurrency; the
// snapshot reference is swapped atomically on rebuild.
type Service struct {
	cfg        config.SearchConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics
	cache      *QueryCache
	stats      *StatsCollector
	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCache attaches a redis-backed query cache.
func WithCache(c *QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithStats attaches a search analytics collector.
func WithStats(c *StatsCollector) Option {
	return func(s *Service) { s.stats = c }
}

// New creates a Service. It is not ready to answer queries until the first
// Rebuild.
func New(cfg config.SearchConfig, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg,
		logger: logger.WithComponent("searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether an index snapshot is active.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Generation returns the generation counter of the active snapshot, or 0
// when none is active.
func (s *Service) Generation() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.generation
	}
	return 0
}

// Rebuild constructs a fresh snapshot from the given corpus and atomically
// swaps it in. The three field indexes build concurrently; queries keep
// running against the previous snapshot until the swap.
func (s *Service) Rebuild(ctx context.Context, docs []corpus.Document) error {
	start := time.Now()
	if err := corpus.Validate(docs); err != nil {
		s.recordRebuild("invalid", start)
		return err
	}

	keys := make([]string, len(docs))
	nameValues := make([][]string, len(docs))
	descValues := make([]string, len(docs))
	readmeValues := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.Name
		nameValues[i] = d.NameTexts()
		descValues[i] = d.Description
		readmeValues[i] = d.Readme
	}

	snap := &snapshot{
		keys:       keys,
		builtAt:    start,
		generation: s.generation.Add(1),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		// Package names are short and focused; length dampening would
		// only distort them.
		snap.name = index.NewMulti(keys, nameValues, index.WithoutDocumentWeight())
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snap.description = index.New(keys, descValues)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		snap.readme = index.New(keys, readmeValues)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.recordRebuild("cancelled", start)
		return err
	}

	snap.tagMasks = buildTagMasks(docs)
	snap.scores = pool.NewScorePool(keys)
	snap.masks = pool.NewBitArrayPool(len(keys))

	s.current.Store(snap)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation after rebuild failed", "error", err)
		}
	}
	s.recordRebuild("ok", start)
	if s.metrics != nil {
		s.metrics.IndexDocuments.Set(float64(len(keys)))
		s.metrics.SnapshotGeneration.Set(float64(snap.generation))
		s.metrics.IndexTokens.WithLabelValues("name").Set(float64(snap.name.TokenCount()))
		s.metrics.IndexTokens.WithLabelValues("description").Set(float64(snap.description.TokenCount()))
		s.metrics.IndexTokens.WithLabelValues("readme").Set(float64(snap.readme.TokenCount()))
	}
	s.logger.Info("index snapshot swapped",
		"generation", snap.generation,
		"documents", len(keys),
		"tags", len(snap.tagMasks),
		"elapsed", time.Since(start),
	)
	return nil
}

func (s *Service) recordRebuild(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.IndexRebuildsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		s.metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	}
}

func buildTagMasks(docs []corpus.Document) map[string]*pool.BitArray {
	masks := make(map[string]*pool.BitArray)
	for i, d := range docs {
		for _, tag := range d.Tags {
			mask, ok := masks[tag]
			if !ok {
				mask = pool.NewBitArray(len(docs))
				mask.ClearAll()
				masks[tag] = mask
			}
			mask.Set(i)
		}
	}
	return masks
}

// Search answers one query against the active snapshot, consulting the
// query cache when one is attached.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, apperrors.ErrNotReady
	}
	words := tokenizer.SplitForQuery(q.Text)
	if len(words) == 0 {
		return nil, apperrors.ErrEmptyQuery
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "search")
	span.SetAttr("query", q.Text)
	span.SetAttr("generation", snap.generation)
	defer func() {
		span.End()
		span.Log()
	}()

	var (
		result      *Result
		cacheStatus = "bypass"
	)
	if s.cache != nil {
		cached, hit, err := s.cache.GetOrCompute(ctx, snap.generation, words, q.Tags, limit, func() (*Result, error) {
			return s.executeQuery(ctx, snap, words, q, limit), nil
		})
		if err != nil {
			s.countQuery("error")
			return nil, err
		}
		result = cached
		if hit {
			cacheStatus = "hit"
		} else {
			cacheStatus = "miss"
		}
	} else {
		result = s.executeQuery(ctx, snap, words, q, limit)
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
		s.metrics.SearchResultsCount.Observe(float64(len(result.Packages)))
		switch cacheStatus {
		case "hit":
			s.metrics.CacheHitsTotal.Inc()
		case "miss":
			s.metrics.CacheMissesTotal.Inc()
		}
	}
	if result.TotalHits == 0 {
		s.countQuery("zero_results")
	} else {
		s.countQuery("ok")
	}
	s.recordEvent(SearchEvent{
		Query:      q.Text,
		Words:      words,
		Tags:       q.Tags,
		TotalHits:  result.TotalHits,
		Returned:   len(result.Packages),
		LatencyMs:  elapsed.Milliseconds(),
		CacheHit:   cacheStatus == "hit",
		Generation: snap.generation,
		Timestamp:  time.Now().UTC(),
	})
	return result, nil
}

func (s *Service) countQuery(outcome string) {
	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) recordEvent(ev SearchEvent) {
	if s.stats == nil {
		return
	}
	if !s.stats.Record(ev) && s.metrics != nil {
		s.metrics.SearchEventsDropped.Inc()
	}
}

// executeQuery runs the ranking pipeline: per-field AND-across-words
// evaluation, cross-field max combine, tag masking, then top-K extraction.
func (s *Service) executeQuery(ctx context.Context, snap *snapshot, words []string, q Query, limit int) *Result {
	combined := snap.scores.Acquire()
	defer snap.scores.Release(combined)

	fields := []struct {
		name   string
		idx    *index.TokenIndex[string]
		weight float64
	}{
		{"name", snap.name, s.cfg.NameWeight},
		{"description", snap.description, s.cfg.DescriptionWeight},
		{"readme", snap.readme, s.cfg.ReadmeWeight},
	}
	for _, f := range fields {
		_, span := tracing.StartChildSpan(ctx, "field-"+f.name)
		f.idx.WithSearchWords(words, f.weight, func(fs *score.IndexedScore[string]) {
			combined.MaxAllFrom(fs)
		})
		span.End()
	}

	if len(q.Tags) > 0 {
		mask := snap.masks.Acquire()
		for _, tag := range q.Tags {
			tagMask, ok := snap.tagMasks[tag]
			if !ok {
				mask.ClearAll()
				break
			}
			mask.And(tagMask)
		}
		combined.KeepWhere(mask.IsSet)
		snap.masks.Release(mask)
	}

	totalHits := 0
	for i := 0; i < combined.Len(); i++ {
		if combined.ValueAt(i) > 0 {
			totalHits++
		}
	}
	top := combined.Top(limit, 0)

	packages := make([]ScoredPackage, 0, len(top))
	for name, value := range top {
		packages = append(packages, ScoredPackage{Package: name, Score: value})
	}
	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Score != packages[j].Score {
			return packages[i].Score > packages[j].Score
		}
		return packages[i].Package < packages[j].Package
	})

	return &Result{
		Query:      q.Text,
		TotalHits:  totalHits,
		Packages:   packages,
		Generation: snap.generation,
	}
}
