package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/book"
	"github.com/hpungsan/spellbook/internal/catalog"
	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/epub"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/logging"
	"github.com/hpungsan/spellbook/internal/spell"
)

// BuildInput contains parameters for the Build operation.
type BuildInput struct {
	// Input is a dataset file. Empty builds from the catalog.
	Input string

	// Output is the .epub path. Empty writes ~/.spellbook/exports/<title>.epub.
	Output string

	WorkingSet

	Title   string // overrides config
	Creator string // overrides config
	Strict  bool   // OR'd with config
}

// BuildOutput contains the result of the Build operation.
type BuildOutput struct {
	Path       string        `json:"path"`
	Identifier string        `json:"identifier"`
	Spells     int           `json:"spells"`
	Categories []string      `json:"categories"`
	Documents  int           `json:"documents"`
	Entries    int           `json:"entries"`
	Bytes      int64         `json:"bytes"`
	Skipped    []int         `json:"skipped_lines,omitempty"`
	Dropped    []string      `json:"dropped_duplicates,omitempty"`
	Issues     []spell.Issue `json:"issues,omitempty"`
}

// Build turns a dataset (or the catalog) into an EPUB package.
//
// The pipeline is load, select, dedupe, lint, synthesize, assemble and
// write. database may be nil when input.Input is set.
func Build(ctx context.Context, database *sql.DB, cfg *config.Config, logger *zap.Logger, input BuildInput) (*BuildOutput, error) {
	cfg = orDefault(cfg)
	logger = logging.OrNop(logger)

	sel, err := input.WorkingSet.resolve(cfg)
	if err != nil {
		return nil, err
	}

	out := &BuildOutput{}

	var records []*spell.Record
	if input.Input != "" {
		res, err := loadDataset(ctx, cfg, input.Input, cfg.Strict || input.Strict, logger)
		if err != nil {
			return nil, err
		}
		records = res.Records
		for _, s := range res.Skipped {
			out.Skipped = append(out.Skipped, s.Line)
		}
	} else {
		if database == nil {
			return nil, errors.NewInvalidRequest("input is required when no catalog is open")
		}
		records, err = catalog.List(ctx, database, catalog.Filter{Categories: sel.Categories, Level: sel.Level})
		if err != nil {
			return nil, err
		}
	}

	records, dropped := spell.Dedupe(records)
	for _, r := range dropped {
		out.Dropped = append(out.Dropped, r.Name)
		logger.Warn("dropping duplicate spell", zap.String("name", r.Name))
	}
	records = spell.Select(records, sel)
	out.Issues = spell.Lint(records)
	for _, is := range out.Issues {
		logger.Info("lint", zap.String("kind", string(is.Kind)), zap.String("name", is.Name), zap.String("message", is.Message))
	}

	title := pick(input.Title, cfg.Title)
	opts := book.Options{
		Categories: sel.Categories,
		Compare:    sel.Compare,
		Workers:    cfg.Workers,
	}
	if cfg.ForewordPath != "" {
		md, err := readTextFile(cfg, cfg.ForewordPath)
		if err != nil {
			return nil, err
		}
		opts.Foreword = &book.ForewordSource{Title: cfg.ForewordTitle, Markdown: string(md)}
	}
	stylesheet, err := Stylesheet(cfg)
	if err != nil {
		return nil, err
	}

	names := epub.NewNamer(cfg.UnsafeSet(), cfg.Placeholder)
	names.Assign(book.Keys(records, opts)...)

	start := time.Now()
	b, err := book.Synthesize(ctx, records, names, opts)
	if err != nil {
		return nil, err
	}
	entries, pkg, err := epub.Assemble(b, names, epub.Metadata{
		Title:      title,
		Creator:    pick(input.Creator, cfg.Creator),
		Language:   cfg.Language,
		Stylesheet: stylesheet,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("book assembled",
		zap.Int("documents", len(b.Documents())),
		zap.Int("entries", len(entries)),
		zap.Duration("elapsed", time.Since(start)))

	path := input.Output
	if path == "" {
		if path, err = defaultBookPath(title); err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(path, PathCheckWrite, cfg, BookExts); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("build")
	}
	var written int64
	err = writeFileAtomic(path, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		if err := epub.Write(cw, entries, epub.DefaultModified); err != nil {
			return errors.NewInternal(fmt.Errorf("write package: %w", err))
		}
		written = cw.n
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("book built",
		zap.String("path", path),
		zap.Int("spells", len(records)),
		zap.Int64("bytes", written))

	out.Path = path
	out.Identifier = pkg.Identifier
	out.Spells = len(records)
	out.Documents = len(b.Documents())
	out.Entries = len(entries)
	out.Bytes = written
	for _, c := range spell.SortByName(sel.Categories) {
		out.Categories = append(out.Categories, c.String())
	}
	return out, nil
}

// defaultBookPath returns ~/.spellbook/exports/<title>.epub.
func defaultBookPath(title string) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SanitizeForFilename(title)+".epub"), nil
}

func pick(override, base string) string {
	if override != "" {
		return override
	}
	return base
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
