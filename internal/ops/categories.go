package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/spellbook/internal/catalog"
	"github.com/hpungsan/spellbook/internal/spell"
)

// CategoryCount is one category with its catalog spell count.
type CategoryCount struct {
	Name   string `json:"name"`
	Spells int    `json:"spells"`
}

// CategoriesOutput contains the result of the Categories operation.
type CategoriesOutput struct {
	Items []CategoryCount `json:"items"`
}

// Categories lists every spell-list category ordered by name. Counts come
// from the catalog when database is non-nil and are zero otherwise.
func Categories(ctx context.Context, database *sql.DB) (*CategoriesOutput, error) {
	var counts map[spell.Category]int
	if database != nil {
		var err error
		if counts, err = catalog.CategoryCounts(ctx, database); err != nil {
			return nil, err
		}
	}

	out := &CategoriesOutput{Items: []CategoryCount{}}
	for _, c := range spell.SortedCategories() {
		out.Items = append(out.Items, CategoryCount{
			Name:   c.String(),
			Spells: counts[c],
		})
	}
	return out, nil
}
