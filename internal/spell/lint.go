package spell

import (
	"fmt"
	"strings"
)

// IssueKind classifies a lint finding.
type IssueKind string

const (
	IssueEmptyName     IssueKind = "EMPTY_NAME"
	IssueDuplicateName IssueKind = "DUPLICATE_NAME"
	IssueNoCategory    IssueKind = "NO_CATEGORY"
)

// Issue is a lint finding for one record. Issues are warnings: the book can
// still be built, but links to the affected records may be ambiguous.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Name    string    `json:"name"`
	Index   int       `json:"index"` // position in the linted slice
	Message string    `json:"message"`
}

// Lint checks a working set for records that break cross-referencing:
// empty names, repeated names (names are the link key), and records that
// belong to no category at all.
func Lint(records []*Record) []Issue {
	var issues []Issue
	first := make(map[string]int, len(records))

	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			issues = append(issues, Issue{
				Kind:    IssueEmptyName,
				Index:   i,
				Message: "record has an empty name",
			})
			continue
		}

		if prev, ok := first[r.Name]; ok {
			issues = append(issues, Issue{
				Kind:    IssueDuplicateName,
				Name:    r.Name,
				Index:   i,
				Message: fmt.Sprintf("name %q already used by record %d", r.Name, prev),
			})
		} else {
			first[r.Name] = i
		}

		if len(r.Levels.Present()) == 0 {
			issues = append(issues, Issue{
				Kind:    IssueNoCategory,
				Name:    r.Name,
				Index:   i,
				Message: "record belongs to no category",
			})
		}
	}
	return issues
}

// Dedupe keeps the first record of each name and returns the rest as
// dropped, both in input order.
func Dedupe(records []*Record) (kept, dropped []*Record) {
	seen := make(map[string]bool, len(records))
	kept = make([]*Record, 0, len(records))
	for _, r := range records {
		if seen[r.Name] {
			dropped = append(dropped, r)
			continue
		}
		seen[r.Name] = true
		kept = append(kept, r)
	}
	return kept, dropped
}
