package book

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
)

// ForewordSource is optional front matter written in Markdown.
type ForewordSource struct {
	Title    string
	Markdown string
}

// Options controls synthesis.
type Options struct {
	// Categories is the working category set. Each gets an index page and
	// only these appear on detail level lines.
	Categories []spell.Category

	// Compare orders index entries. Nil means ordinal.
	Compare spell.Comparer

	// Workers bounds concurrent detail synthesis. Zero or less uses GOMAXPROCS.
	Workers int

	Foreword *ForewordSource
}

// Book is the full set of synthesized documents.
type Book struct {
	Foreword *Document   // nil when there is no front matter
	Indexes  []*Document // ordered by category name
	Details  []*Document // in record order
}

// Documents returns every document in reading order.
func (b *Book) Documents() []*Document {
	out := make([]*Document, 0, len(b.Indexes)+len(b.Details)+1)
	if b.Foreword != nil {
		out = append(out, b.Foreword)
	}
	out = append(out, b.Indexes...)
	return append(out, b.Details...)
}

// Keys lists the keys Synthesize will produce, in reading order. Names are
// assigned from this list before synthesis so links resolve the same way
// regardless of scheduling.
func Keys(records []*spell.Record, opts Options) []Key {
	var keys []Key
	if opts.Foreword != nil {
		keys = append(keys, ForewordKey())
	}
	for _, g := range spell.GroupByCategory(nil, opts.Categories, nil) {
		keys = append(keys, CategoryKey(g.Category))
	}
	for _, r := range records {
		keys = append(keys, SpellKey(r.Name))
	}
	return keys
}

// Synthesize builds the foreword, one index per working category and one
// detail page per record. Detail pages are built concurrently; their order
// follows records.
func Synthesize(ctx context.Context, records []*spell.Record, links LinkResolver, opts Options) (*Book, error) {
	b := &Book{}

	if opts.Foreword != nil {
		doc, err := Foreword(opts.Foreword.Title, opts.Foreword.Markdown)
		if err != nil {
			return nil, err
		}
		b.Foreword = doc
	}

	for _, g := range spell.GroupByCategory(records, opts.Categories, opts.Compare) {
		b.Indexes = append(b.Indexes, Index(g, links))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	b.Details = make([]*Document, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			b.Details[i] = Detail(rec, opts.Categories, links)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.NewCancelled("synthesize")
	}
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("synthesize")
	}
	return b, nil
}
