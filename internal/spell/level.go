package spell

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Level is a spell level that may be absent. The zero value is absent,
// meaning the spell is not on that category's list.
type Level struct {
	n  int
	ok bool
}

// Present returns a level holding n.
func Present(n int) Level { return Level{n: n, ok: true} }

// Absent returns the empty level.
func Absent() Level { return Level{} }

// ParseLevel reads a level column. Anything that is not a non-negative
// integer is absent.
func ParseLevel(s string) Level {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return Absent()
	}
	return Present(n)
}

// Get returns the level and whether it is present.
func (l Level) Get() (int, bool) { return l.n, l.ok }

// IsPresent reports whether the level is set.
func (l Level) IsPresent() bool { return l.ok }

// String renders the level number, or "-" when absent.
func (l Level) String() string {
	if !l.ok {
		return "-"
	}
	return strconv.Itoa(l.n)
}

// Levels maps every category to its level, indexed by Category.
type Levels [NumCategories]Level

// Of returns the level for c.
func (ls Levels) Of(c Category) Level {
	if !c.Valid() {
		return Absent()
	}
	return ls[c]
}

// Has reports whether the spell belongs to category c.
func (ls Levels) Has(c Category) bool {
	return ls.Of(c).IsPresent()
}

// CategoryLevel pairs a category with a present level.
type CategoryLevel struct {
	Category Category `json:"category"`
	Level    int      `json:"level"`
}

// Present lists the categories the spell belongs to, ordered by category name.
func (ls Levels) Present() []CategoryLevel {
	var out []CategoryLevel
	for _, c := range SortedCategories() {
		if n, ok := ls[c].Get(); ok {
			out = append(out, CategoryLevel{Category: c, Level: n})
		}
	}
	return out
}

// MarshalJSON encodes present levels as an object keyed by category name.
func (ls Levels) MarshalJSON() ([]byte, error) {
	m := make(map[string]int)
	for _, cl := range ls.Present() {
		m[cl.Category.String()] = cl.Level
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object form written by MarshalJSON.
func (ls *Levels) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*ls = Levels{}
	for name, n := range m {
		c, err := ParseCategory(name)
		if err != nil {
			return err
		}
		if n >= 0 {
			ls[c] = Present(n)
		}
	}
	return nil
}
