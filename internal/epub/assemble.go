package epub

import (
	"archive/zip"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hpungsan/spellbook/internal/book"
	"github.com/hpungsan/spellbook/internal/errors"
)

// DefaultStylesheet is used when no stylesheet is configured.
//
//go:embed Style.css
var DefaultStylesheet []byte

// Entry is one archive member.
type Entry struct {
	Name   string
	Data   []byte
	Method uint16 // zip.Store or zip.Deflate
}

// Metadata describes the publication.
type Metadata struct {
	Title    string
	Creator  string
	Language string

	// Identifier is the unique identifier. Empty derives a name-based UUID
	// from the title and document keys, so rebuilding the same selection
	// keeps the same identifier.
	Identifier string

	// Stylesheet replaces DefaultStylesheet when non-empty.
	Stylesheet []byte
}

// Assemble renders the book into archive entries in their final order:
// mimetype, container, stylesheet, content documents in reading order, then
// the package document and the NCX. Names assigns content file names; keys
// it has not seen are assigned in reading order.
//
// Assemble panics if the result fails Check. That can only happen through
// a bug in this package, never through input data.
func Assemble(b *book.Book, names *Namer, meta Metadata) ([]Entry, *Package, error) {
	docs := b.Documents()
	if len(docs) == 0 {
		return nil, nil, errors.NewInvalidRequest("book has no documents")
	}

	keys := make([]book.Key, len(docs))
	seen := make(map[book.Key]bool, len(docs))
	for i, d := range docs {
		if seen[d.Key] {
			return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("duplicate %s document %q", d.Key.Kind, d.Key.Name))
		}
		seen[d.Key] = true
		keys[i] = d.Key
	}
	names.Assign(keys...)

	pkg := &Package{
		Identifier: meta.Identifier,
		Title:      meta.Title,
		Creator:    meta.Creator,
		Language:   meta.Language,
		TOC:        "ncx",
	}
	if pkg.Identifier == "" {
		pkg.Identifier = Identifier(meta.Title, keys)
	}

	containerXML, err := encodeContainer()
	if err != nil {
		return nil, nil, fmt.Errorf("encode container: %w", err)
	}
	stylesheet := meta.Stylesheet
	if len(stylesheet) == 0 {
		stylesheet = DefaultStylesheet
	}

	entries := []Entry{
		{Name: MimetypeName, Data: []byte(Mimetype), Method: zip.Store},
		{Name: ContainerName, Data: containerXML, Method: zip.Deflate},
		{Name: StylesheetName, Data: stylesheet, Method: zip.Deflate},
	}
	pkg.Items = append(pkg.Items,
		Item{ID: "ncx", Href: NCXName, MediaType: MediaTypeNCX},
		Item{ID: "style", Href: StylesheetName, MediaType: MediaTypeCSS},
	)

	counts := make(map[book.Kind]int)
	for _, d := range docs {
		data, err := book.Render(d)
		if err != nil {
			return nil, nil, err
		}
		name, _ := names.Name(d.Key)
		href := ContentDir + name

		counts[d.Key.Kind]++
		id := fmt.Sprintf("%s-%d", d.Key.Kind, counts[d.Key.Kind])

		entries = append(entries, Entry{Name: href, Data: data, Method: zip.Deflate})
		pkg.Items = append(pkg.Items, Item{ID: id, Href: href, MediaType: MediaTypeXHTML})
		pkg.Spine = append(pkg.Spine, id)
		if d.Key.Kind != book.KindDetail {
			pkg.Nav = append(pkg.Nav, NavPoint{ID: "nav-" + id, Label: navLabel(d), Src: href})
		}
	}

	opf, err := pkg.encodeOPF()
	if err != nil {
		return nil, nil, fmt.Errorf("encode package document: %w", err)
	}
	ncx, err := pkg.encodeNCX()
	if err != nil {
		return nil, nil, fmt.Errorf("encode NCX: %w", err)
	}
	entries = append(entries,
		Entry{Name: PackageName, Data: opf, Method: zip.Deflate},
		Entry{Name: NCXName, Data: ncx, Method: zip.Deflate},
	)

	if problems := Check(pkg, EntryNames(entries), PackageName); len(problems) > 0 {
		panic("epub: assembled an inconsistent package: " + strings.Join(problems, "; "))
	}
	return entries, pkg, nil
}

// navLabel is the category name for index pages and the title otherwise.
func navLabel(d *book.Document) string {
	if d.Key.Kind == book.KindIndex {
		return d.Key.Name
	}
	return d.Title
}

// Identifier derives a stable URN from a title and document keys.
func Identifier(title string, keys []book.Key) string {
	var b strings.Builder
	b.WriteString(title)
	for _, k := range keys {
		b.WriteByte('\n')
		b.WriteString(string(k.Kind))
		b.WriteByte('/')
		b.WriteString(k.Name)
	}
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(b.String())).String()
}

// EntryNames lists entry names in order.
func EntryNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
