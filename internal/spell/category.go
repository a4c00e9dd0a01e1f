package spell

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hpungsan/spellbook/internal/errors"
)

// Category is one of the fixed spell-list categories (character classes).
// Values follow dataset column order.
type Category int

const (
	Sorcerer Category = iota
	Wizard
	Cleric
	Druid
	Ranger
	Bard
	Paladin
	Alchemist
	Summoner
	Witch
	Inquisitor
	Oracle
	AntiPaladin
	Magus
	Adept

	// NumCategories is the size of the enumeration.
	NumCategories = int(Adept) + 1
)

var categoryNames = [NumCategories]string{
	Sorcerer:    "Sorcerer",
	Wizard:      "Wizard",
	Cleric:      "Cleric",
	Druid:       "Druid",
	Ranger:      "Ranger",
	Bard:        "Bard",
	Paladin:     "Paladin",
	Alchemist:   "Alchemist",
	Summoner:    "Summoner",
	Witch:       "Witch",
	Inquisitor:  "Inquisitor",
	Oracle:      "Oracle",
	AntiPaladin: "AntiPaladin",
	Magus:       "Magus",
	Adept:       "Adept",
}

// String returns the display name.
func (c Category) String() string {
	if !c.Valid() {
		return "Category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// Valid reports whether c is inside the enumeration.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name (case-insensitive).
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory looks up a category by name, ignoring case and surrounding space.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	for i, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(i), nil
		}
	}
	return 0, errors.NewUnknownCategory(name)
}

// ParseCategories parses a list of names, dropping duplicates and keeping
// first-seen order.
func ParseCategories(names []string) ([]Category, error) {
	seen := make(map[Category]bool, len(names))
	out := make([]Category, 0, len(names))
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Categories returns every category in dataset column order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// SortedCategories returns every category ordered by name.
func SortedCategories() []Category {
	return SortByName(Categories())
}

// SortByName returns a copy of cats ordered by display name.
func SortByName(cats []Category) []Category {
	out := slices.Clone(cats)
	slices.SortFunc(out, func(a, b Category) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}
