// Package corpus defines the package-registry documents the search service
// indexes, and the provider boundary through which a snapshot of them is
// fetched. The service always receives an already-resident document list;
// where the documents live is the provider's concern.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	apperrors "github.com/pkgdepot/registry-search/pkg/errors"
)

// Document is one package in the registry corpus.
type Document struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Readme      string   `json:"readme,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// NameTexts returns the indexable variants of the package name: the name
// itself plus a separator-collapsed form, so that "http_parser" is findable
// as "httpparser" too.
func (d Document) NameTexts() []string {
	collapsed := collapseName(d.Name)
	if collapsed == "" || collapsed == strings.ToLower(d.Name) {
		return []string{d.Name}
	}
	return []string{d.Name, collapsed}
}

func collapseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Validate checks that every document has a non-empty name and that names
// are unique within the corpus.
func Validate(docs []Document) error {
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.Name) == "" {
			return apperrors.Newf(apperrors.ErrInvalidDocument, "document %d has an empty name", i)
		}
		if _, dup := seen[d.Name]; dup {
			return apperrors.Newf(apperrors.ErrInvalidDocument, "duplicate package name %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// LoadFile reads and validates a JSON corpus file containing an array of
// documents.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}
	if err := Validate(docs); err != nil {
		return nil, fmt.Errorf("validating corpus file %s: %w", path, err)
	}
	return docs, nil
}

// Provider hands the search service a full snapshot of the corpus. The
// service never fetches incrementally; a refresh is always a whole-corpus
// reload followed by an index swap.
type Provider interface {
	Documents(ctx context.Context) ([]Document, error)
}

// FileProvider is a Provider backed by a JSON corpus file, re-read on every
// call.
type FileProvider struct {
	Path string
}

// NewFileProvider creates a FileProvider for the given path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Documents implements Provider.
func (p *FileProvider) Documents(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(p.Path)
}
