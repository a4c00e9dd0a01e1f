package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/spellbook/internal/catalog"
	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/spell"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	WorkingSet
	PageLimit int // default: 20, max: 500
	Offset    int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []spell.Summary `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// List retrieves catalog summaries for the working set with pagination.
// Items are ordered by name under the configured collation; the working
// set limit applies before paging.
func List(ctx context.Context, database *sql.DB, cfg *config.Config, input ListInput) (*ListOutput, error) {
	cfg = orDefault(cfg)

	sel, err := input.WorkingSet.resolve(cfg)
	if err != nil {
		return nil, err
	}

	records, err := catalog.List(ctx, database, catalog.Filter{Categories: sel.Categories, Level: sel.Level})
	if err != nil {
		return nil, err
	}
	records = spell.Select(records, sel)

	page, pagination := paginate(records, input.PageLimit, input.Offset)
	items := make([]spell.Summary, len(page))
	for i, r := range page {
		items[i] = r.ToSummary()
	}

	return &ListOutput{
		Items:      items,
		Pagination: pagination,
		Sort:       "name_asc",
	}, nil
}
