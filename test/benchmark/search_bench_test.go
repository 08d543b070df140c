package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkgdepot/registry-search/internal/corpus"
	"github.com/pkgdepot/registry-search/internal/search/index"
	"github.com/pkgdepot/registry-search/internal/search/tokenizer"
	"github.com/pkgdepot/registry-search/internal/searcher"
	"github.com/pkgdepot/registry-search/pkg/config"
)

var benchWords = []string{
	"http", "json", "cache", "router", "stream", "parser", "client",
	"server", "storage", "queue", "metrics", "auth", "websocket", "grpc",
}

var benchTags = []string{"web", "network", "encoding", "storage", "cli"}

func buildCorpus(n int) []corpus.Document {
	docs := make([]corpus.Document, n)
	for i := 0; i < n; i++ {
		w1 := benchWords[i%len(benchWords)]
		w2 := benchWords[(i/len(benchWords))%len(benchWords)]
		docs[i] = corpus.Document{
			Name:        fmt.Sprintf("%s_%s_%d", w1, w2, i),
			Description: fmt.Sprintf("a %s library with %s support for production workloads", w1, w2),
			Readme:      fmt.Sprintf("This package provides %s handling on top of %s. It ships with benchmarks and examples.", w1, w2),
			Tags:        []string{benchTags[i%len(benchTags)]},
		}
	}
	return docs
}

func benchConfig() config.SearchConfig {
	return config.SearchConfig{
		MaxResults:        100,
		DefaultLimit:      10,
		NameWeight:        1.0,
		DescriptionWeight: 0.90,
		ReadmeWeight:      0.75,
	}
}

func readyService(b *testing.B, docs int) *searcher.Service {
	b.Helper()
	svc := searcher.New(benchConfig())
	if err := svc.Rebuild(context.Background(), buildCorpus(docs)); err != nil {
		b.Fatalf("rebuild failed: %v", err)
	}
	return svc
}

func BenchmarkTokenize(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tokenizer.Tokenize("QuickHttpServer with json_streaming support for web2 apps")
	}
}

func BenchmarkTokenizePartial(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tokenizer.TokenizePartial("websocket")
	}
}

func BenchmarkIndexBuild(b *testing.B) {
	docs := buildCorpus(5000)
	ids := make([]string, len(docs))
	values := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.Name
		values[i] = d.Description
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		index.New(ids, values)
	}
}

func BenchmarkIndexSearch(b *testing.B) {
	docs := buildCorpus(5000)
	ids := make([]string, len(docs))
	values := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.Name
		values[i] = d.Description
	}
	ti := index.New(ids, values)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ti.Search(benchWords[i%len(benchWords)])
	}
}

func BenchmarkServiceRebuild(b *testing.B) {
	docs := buildCorpus(5000)
	svc := searcher.New(benchConfig())
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := svc.Rebuild(ctx, docs); err != nil {
			b.Fatalf("rebuild failed: %v", err)
		}
	}
}

func BenchmarkServiceSearch(b *testing.B) {
	svc := readyService(b, 5000)
	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q := searcher.Query{Text: benchWords[i%len(benchWords)]}
		if _, err := svc.Search(ctx, q); err != nil {
			b.Fatalf("search failed: %v", err)
		}
	}
}

func BenchmarkServiceSearchWithTags(b *testing.B) {
	svc := readyService(b, 5000)
	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q := searcher.Query{
			Text: benchWords[i%len(benchWords)],
			Tags: []string{benchTags[i%len(benchTags)]},
		}
		if _, err := svc.Search(ctx, q); err != nil {
			b.Fatalf("search failed: %v", err)
		}
	}
}

func BenchmarkServiceSearchParallel(b *testing.B) {
	svc := readyService(b, 5000)
	ctx := context.Background()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q := searcher.Query{Text: benchWords[i%len(benchWords)] + " production"}
			if _, err := svc.Search(ctx, q); err != nil {
				b.Fatalf("search failed: %v", err)
			}
			i++
		}
	})
}
