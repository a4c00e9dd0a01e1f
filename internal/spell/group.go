package spell

import (
	"slices"
)

// LevelGroup holds the records of one category at one level, sorted by name.
type LevelGroup struct {
	Level   int
	Records []*Record
}

// Group is the spell list of one category, level groups ascending.
type Group struct {
	Category Category
	Levels   []LevelGroup
}

// Records returns every record of the group in level, then name order.
func (g Group) Records() []*Record {
	var out []*Record
	for _, lg := range g.Levels {
		out = append(out, lg.Records...)
	}
	return out
}

// GroupCategory builds the spell list for one category. Records outside the
// category are ignored.
func GroupCategory(c Category, records []*Record, cmp Comparer) Group {
	byLevel := make(map[int][]*Record)
	for _, r := range records {
		if n, ok := r.Levels.Of(c).Get(); ok {
			byLevel[n] = append(byLevel[n], r)
		}
	}

	levels := make([]int, 0, len(byLevel))
	for n := range byLevel {
		levels = append(levels, n)
	}
	slices.Sort(levels)

	g := Group{Category: c, Levels: make([]LevelGroup, 0, len(levels))}
	for _, n := range levels {
		recs := byLevel[n]
		slices.SortStableFunc(recs, byName(cmp))
		g.Levels = append(g.Levels, LevelGroup{Level: n, Records: recs})
	}
	return g
}

// GroupByCategory builds one group per category in categories, ordered by
// category name. Duplicate categories are collapsed. A category with no
// member records still gets an (empty) group.
func GroupByCategory(records []*Record, categories []Category, cmp Comparer) []Group {
	seen := make(map[Category]bool, len(categories))
	var unique []Category
	for _, c := range categories {
		if c.Valid() && !seen[c] {
			seen[c] = true
			unique = append(unique, c)
		}
	}

	groups := make([]Group, 0, len(unique))
	for _, c := range SortByName(unique) {
		groups = append(groups, GroupCategory(c, records, cmp))
	}
	return groups
}
