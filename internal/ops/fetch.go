package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/spellbook/internal/catalog"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/markup"
	"github.com/hpungsan/spellbook/internal/spell"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Name string

	// Normalize rewrites the rich description through the markup normalizer.
	Normalize bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	spell.Record // embedded (copy, not pointer)
}

// Fetch retrieves a catalog record by name. Lookup falls back to a case and
// whitespace insensitive match.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	r, err := catalog.GetByName(ctx, database, name)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{Record: *r}
	if input.Normalize {
		output.FormattedDescription = markup.Normalize(r.FormattedDescription)
	}
	return output, nil
}
