package epub

import (
	"archive/zip"
	"fmt"

	"github.com/hpungsan/spellbook/internal/errors"
)

// Report summarizes a verified archive.
type Report struct {
	Package  *Package `json:"package"`
	Entries  int      `json:"entries"`
	Content  int      `json:"content"` // spine documents
	NavCount int      `json:"nav_points"`
}

// Verify parses the control documents of an archive and checks it for
// consistency. Any problem is reported as an INVALID_PACKAGE error listing
// every finding.
func Verify(entries []Entry) (*Report, error) {
	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	var problems []string
	fail := func(format string, args ...any) (*Report, error) {
		problems = append(problems, fmt.Sprintf(format, args...))
		return nil, errors.NewInvalidPackage(problems)
	}

	if len(entries) > 0 && entries[0].Name == MimetypeName {
		first := entries[0]
		if string(first.Data) != Mimetype {
			problems = append(problems, fmt.Sprintf("mimetype content is %q, want %q", first.Data, Mimetype))
		}
		if first.Method != zip.Store {
			problems = append(problems, "mimetype entry is compressed")
		}
	}

	c, ok := byName[ContainerName]
	if !ok {
		return fail("missing entry %q", ContainerName)
	}
	opfPath, err := decodeContainer(c.Data)
	if err != nil {
		return fail("%v", err)
	}
	o, ok := byName[opfPath]
	if !ok {
		return fail("missing package document %q", opfPath)
	}
	pkg, err := decodeOPF(o.Data)
	if err != nil {
		return fail("%v", err)
	}

	if toc, ok := pkg.Item(pkg.TOC); ok {
		if n, ok := byName[resolve(opfPath, toc.Href)]; ok {
			nav, navProblems, err := decodeNCX(n.Data)
			if err != nil {
				return fail("%v", err)
			}
			pkg.Nav = nav
			problems = append(problems, navProblems...)
		}
	}

	problems = append(problems, Check(pkg, EntryNames(entries), opfPath)...)
	if len(problems) > 0 {
		return nil, errors.NewInvalidPackage(problems)
	}
	return &Report{
		Package:  pkg,
		Entries:  len(entries),
		Content:  len(pkg.Spine),
		NavCount: len(pkg.Nav),
	}, nil
}
