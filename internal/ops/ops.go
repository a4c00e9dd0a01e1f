// Package ops implements the operations behind the CLI and MCP surfaces:
// building books, importing datasets into the catalog, browsing the catalog
// and verifying built packages.
package ops

import (
	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/spell"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// paginate clamps limit and offset and slices items.
func paginate[T any](items []T, limit, offset int) ([]T, Pagination) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)
	return items[start:end], Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}
}

// WorkingSet holds the selection parameters shared by Build and List.
// Unset fields fall back to the configuration.
type WorkingSet struct {
	Categories []string
	Level      *int
	// AllLevels drops a configured level restriction. Level wins if both
	// are set.
	AllLevels bool
	// Limit overrides the configured cap when non-nil; 0 means no cap.
	Limit *int
}

// resolve merges ws over cfg and returns the selection to apply.
func (ws WorkingSet) resolve(cfg *config.Config) (spell.Selection, error) {
	merged := config.Merge(cfg, &config.Config{
		Categories: ws.Categories,
		Level:      ws.Level,
	})
	if ws.AllLevels && ws.Level == nil {
		merged.Level = nil
	}
	if ws.Limit != nil {
		merged.Limit = *ws.Limit
	}
	if err := merged.Validate(); err != nil {
		return spell.Selection{}, err
	}

	cats, err := merged.WorkingSet()
	if err != nil {
		return spell.Selection{}, err
	}
	cmp, err := spell.NewComparer(merged.Collation)
	if err != nil {
		return spell.Selection{}, err
	}
	return spell.Selection{
		Categories: cats,
		Level:      merged.Level,
		Limit:      merged.Limit,
		Compare:    cmp,
	}, nil
}

// orDefault returns cfg, or the default configuration when nil.
func orDefault(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
