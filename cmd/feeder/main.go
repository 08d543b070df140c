// Command feeder publishes a corpus-update event to kafka, telling every
// running searcher to reload its corpus. Registry tooling calls it after
// publishing or retracting packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkgdepot/registry-search/internal/searcher"
	"github.com/pkgdepot/registry-search/pkg/config"
	"github.com/pkgdepot/registry-search/pkg/kafka"
	"github.com/pkgdepot/registry-search/pkg/logger"
	"github.com/pkgdepot/registry-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	reason := flag.String("reason", "manual", "reason recorded on the corpus-update event")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CorpusUpdate)
	defer producer.Close()

	event := searcher.CorpusUpdateEvent{
		Reason:    *reason,
		Timestamp: time.Now().UTC(),
	}
	err = resilience.Retry(ctx, "publish corpus-update", resilience.RetryConfig{}, func() error {
		return producer.Publish(ctx, kafka.Event{Key: "corpus-update", Value: event})
	})
	if err != nil {
		slog.Error("failed to publish corpus-update event", "error", err)
		os.Exit(1)
	}
	slog.Info("corpus-update event published", "reason", *reason)
}
