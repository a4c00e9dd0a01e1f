package spell

import (
	"slices"
)

// Selection is the working set a book is built from.
type Selection struct {
	// Categories is the working category set. A record is selected if it
	// belongs to at least one of them.
	Categories []Category

	// Level, when set, additionally requires the record to be at exactly
	// this level in one of the working categories.
	Level *int

	// Limit caps the number of selected records after sorting (0 = no cap).
	Limit int

	// Compare orders records by name. Nil means OrdinalComparer.
	Compare Comparer
}

// Matches reports whether r is in the working set.
func (s Selection) Matches(r *Record) bool {
	for _, c := range s.Categories {
		n, ok := r.Levels.Of(c).Get()
		if !ok {
			continue
		}
		if s.Level == nil || *s.Level == n {
			return true
		}
	}
	return false
}

// Select filters, sorts by name and truncates records. The input slice is
// not modified.
func Select(records []*Record, s Selection) []*Record {
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, byName(s.Compare))
	if s.Limit > 0 && len(out) > s.Limit {
		out = out[:s.Limit]
	}
	return out
}
