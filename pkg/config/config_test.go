package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Search.MaxResults)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 1.0, cfg.Search.NameWeight)
	assert.Equal(t, 0.90, cfg.Search.DescriptionWeight)
	assert.Equal(t, 0.75, cfg.Search.ReadmeWeight)
	assert.Equal(t, "corpus.json", cfg.Corpus.Path)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "corpus-update", cfg.Kafka.Topics.CorpusUpdate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
search:
  maxResults: 50
  defaultLimit: 5
corpus:
  path: /data/corpus.json
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, "/data/corpus.json", cfg.Corpus.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 1.0, cfg.Search.NameWeight)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RS_CORPUS_PATH", "/tmp/other.json")
	t.Setenv("RS_SEARCH_DEFAULT_LIMIT", "25")
	t.Setenv("RS_REDIS_ADDR", "redis:6379")
	t.Setenv("RS_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("RS_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.json", cfg.Corpus.Path)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestDurationFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
redis:
  cacheTTL: 2m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Redis.CacheTTL.Std())
}

func TestDurationInvalid(t *testing.T) {
	path := writeConfigFile(t, `
redis:
  cacheTTL: sixty
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateDefaultLimitAboveMax(t *testing.T) {
	path := writeConfigFile(t, `
search:
  maxResults: 10
  defaultLimit: 500
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateWeightOutOfRange(t *testing.T) {
	path := writeConfigFile(t, `
search:
  nameWeight: 1.5
`)
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfigFile(t, `
search:
  readmeWeight: 0
`)
	_, err = Load(path)
	assert.Error(t, err)
}
