package ops

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/catalog"
	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/logging"
	"github.com/hpungsan/spellbook/internal/spell"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path   string // required
	Strict bool   // OR'd with config
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	ID       string        `json:"id"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Dropped  []string      `json:"dropped_duplicates,omitempty"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents a dataset line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import loads a dataset file into the catalog. Records whose names already
// exist replace the stored ones. With strict loading the first malformed
// line fails the whole import and nothing is written.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, logger *zap.Logger, input ImportInput) (*ImportOutput, error) {
	cfg = orDefault(cfg)
	logger = logging.OrNop(logger)

	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	res, err := loadDataset(ctx, cfg, input.Path, cfg.Strict || input.Strict, logger)
	if err != nil {
		return nil, err
	}

	records, dropped := spell.Dedupe(res.Records)
	imp, err := catalog.SaveImport(ctx, database, input.Path, records, len(res.Skipped))
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{
		ID:       imp.ID,
		Imported: imp.Records,
		Skipped:  imp.Skipped,
		Errors:   []ImportError{},
	}
	for _, r := range dropped {
		out.Dropped = append(out.Dropped, r.Name)
	}
	for _, s := range res.Skipped {
		sErr := errors.As(s.Err)
		out.Errors = append(out.Errors, ImportError{
			Line:    s.Line,
			Code:    string(sErr.Code),
			Message: sErr.Message,
		})
	}

	logger.Info("dataset imported",
		zap.String("id", imp.ID),
		zap.String("path", input.Path),
		zap.Int("imported", out.Imported),
		zap.Int("skipped", out.Skipped))
	return out, nil
}

// HistoryOutput contains the most recent imports, newest first.
type HistoryOutput struct {
	Items []catalog.Import `json:"items"`
}

// History lists recent catalog imports. limit <= 0 uses the default page size.
func History(ctx context.Context, database *sql.DB, limit int) (*HistoryOutput, error) {
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	items, err := catalog.ListImports(ctx, database, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []catalog.Import{}
	}
	return &HistoryOutput{Items: items}, nil
}
