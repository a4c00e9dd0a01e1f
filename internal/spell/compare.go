package spell

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/spellbook/internal/errors"
)

// Comparer orders spell names. Implementations must be total: two names
// compare equal only if they are identical.
type Comparer interface {
	Compare(a, b string) int
}

// OrdinalComparer compares names byte-wise (case-sensitive).
type OrdinalComparer struct{}

// Compare implements Comparer.
func (OrdinalComparer) Compare(a, b string) int {
	return strings.Compare(a, b)
}

// collateComparer orders names with a locale collation and falls back to
// byte order for names the collation considers equal.
type collateComparer struct {
	mu sync.Mutex // collate.Collator reuses internal buffers
	c  *collate.Collator
}

// Compare implements Comparer.
func (cc *collateComparer) Compare(a, b string) int {
	cc.mu.Lock()
	r := cc.c.CompareString(a, b)
	cc.mu.Unlock()
	if r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// NewComparer returns the comparer for a collation setting: "" or "ordinal"
// for byte order, otherwise a BCP 47 language tag such as "en" or "de".
func NewComparer(collation string) (Comparer, error) {
	collation = strings.TrimSpace(collation)
	if collation == "" || strings.EqualFold(collation, "ordinal") {
		return OrdinalComparer{}, nil
	}
	tag, err := language.Parse(collation)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid collation %q: %v", collation, err))
	}
	return &collateComparer{c: collate.New(tag)}, nil
}

// byName adapts a Comparer for slices.SortStableFunc over records.
func byName(cmp Comparer) func(a, b *Record) int {
	if cmp == nil {
		cmp = OrdinalComparer{}
	}
	return func(a, b *Record) int {
		return cmp.Compare(a.Name, b.Name)
	}
}
