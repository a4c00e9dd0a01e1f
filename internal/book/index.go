package book

import (
	"fmt"
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/hpungsan/spellbook/internal/spell"
)

// Index builds the spell list page for one category: a heading per level,
// ascending, each followed by a table of links ordered by name.
func Index(g spell.Group, links LinkResolver) *Document {
	doc, body := newDocument(CategoryKey(g.Category), g.Category.String()+" spell list")

	for _, lg := range g.Levels {
		body.AppendChild(withText(element(atom.H1), fmt.Sprintf("Level %d spells", lg.Level)))
		table := element(atom.Table)
		for _, rec := range lg.Records {
			row := element(atom.Tr)
			cell := element(atom.Td)
			cell.AppendChild(link(links.Href(SpellKey(rec.Name)), rec.Name))
			row.AppendChild(cell)
			if strings.TrimSpace(rec.Summary) != "" {
				row.AppendChild(withText(element(atom.Td), rec.Summary))
			}
			table.AppendChild(row)
		}
		body.AppendChild(table)
	}
	return doc
}
