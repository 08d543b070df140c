// Command searcher runs the registry search service: it loads the corpus,
// builds the in-memory index, and keeps it fresh from corpus-update events
// on kafka. Queries are answered in-process by the searcher package; this
// binary only exposes the operational surface (metrics and health probes).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkgdepot/registry-search/internal/corpus"
	"github.com/pkgdepot/registry-search/internal/searcher"
	"github.com/pkgdepot/registry-search/pkg/config"
	"github.com/pkgdepot/registry-search/pkg/health"
	"github.com/pkgdepot/registry-search/pkg/kafka"
	"github.com/pkgdepot/registry-search/pkg/logger"
	"github.com/pkgdepot/registry-search/pkg/metrics"
	pkgredis "github.com/pkgdepot/registry-search/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting registry search service", "corpus", cfg.Corpus.Path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var cache *searcher.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cache = searcher.NewQueryCache(redisClient, cfg.Redis)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	statsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
	defer statsProducer.Close()
	stats := searcher.NewStatsCollector(statsProducer, 10000)
	stats.Start(ctx)
	defer stats.Close()

	opts := []searcher.Option{
		searcher.WithMetrics(m),
		searcher.WithStats(stats),
	}
	if cache != nil {
		opts = append(opts, searcher.WithCache(cache))
	}
	svc := searcher.New(cfg.Search, opts...)

	provider := corpus.NewFileProvider(cfg.Corpus.Path)
	indexProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer indexProducer.Close()
	refresher := searcher.NewRefresher(svc, provider, indexProducer)

	if err := refresher.Reload(ctx); err != nil {
		slog.Error("initial corpus load failed", "error", err)
		os.Exit(1)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if !svc.Ready() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no active snapshot"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("generation %d", svc.Generation()),
		}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port, checker)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CorpusUpdate, refresher.Handler())
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("corpus-update consumer stopped", "error", err)
		}
	}()

	slog.Info("registry search service ready", "generation", svc.Generation())
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownMetrics != nil {
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
	if err := consumer.Close(); err != nil {
		slog.Error("consumer close failed", "error", err)
	}
}
