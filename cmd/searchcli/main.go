// Command searchcli runs one-shot queries against a corpus file. It builds
// the index in-process and prints the ranked results, which makes it handy
// for relevance debugging without kafka or redis around.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkgdepot/registry-search/internal/corpus"
	"github.com/pkgdepot/registry-search/internal/searcher"
	"github.com/pkgdepot/registry-search/pkg/config"
	"github.com/pkgdepot/registry-search/pkg/logger"
)

func main() {
	corpusPath := flag.String("corpus", "corpus.json", "path to JSON corpus file")
	query := flag.String("query", "", "search query")
	tags := flag.String("tags", "", "comma-separated tag filters")
	limit := flag.Int("limit", 10, "maximum number of results")
	asJSON := flag.Bool("json", false, "print results as JSON")
	flag.Parse()

	logger.Setup("warn", "text")

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: searchcli -corpus corpus.json -query 'http server' [-tags web] [-limit 10]")
		os.Exit(2)
	}

	docs, err := corpus.LoadFile(*corpusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading corpus: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading defaults: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc := searcher.New(cfg.Search)
	if err := svc.Rebuild(ctx, docs); err != nil {
		fmt.Fprintf(os.Stderr, "building index: %v\n", err)
		os.Exit(1)
	}

	q := searcher.Query{
		Text:  *query,
		Limit: *limit,
	}
	if *tags != "" {
		q.Tags = strings.Split(*tags, ",")
	}

	result, err := svc.Search(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "encoding results: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("%d hits for %q (showing %d)\n", result.TotalHits, *query, len(result.Packages))
	for i, p := range result.Packages {
		fmt.Printf("%3d. %-40s %.4f\n", i+1, p.Package, p.Score)
	}
}
