package book

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hpungsan/spellbook/internal/markup"
	"github.com/hpungsan/spellbook/internal/spell"
)

const labelClass = "spell-title"

// Detail builds the page for one spell. Only categories in filter appear on
// the level line; a spell outside every filtered category still gets a page
// with an empty level line.
func Detail(rec *spell.Record, filter []spell.Category, links LinkResolver) *Document {
	doc, body := newDocument(SpellKey(rec.Name), rec.Name)

	body.AppendChild(withText(element(atom.H1), rec.Name))
	body.AppendChild(schoolLine(rec))
	body.AppendChild(levelLine(rec, filter, links))

	appendLine(body, "Casting time", rec.CastingTime)
	appendLine(body, "Components", rec.Components)
	appendLine(body, "Range", rec.Range)
	appendLine(body, "Area", rec.Area)
	appendLine(body, "Duration", rec.Duration)
	appendLine(body, "Saving throw", rec.SavingThrow)
	appendLine(body, "Spell resistance", rec.SpellResistance)

	body.AppendChild(element(atom.P))
	body.AppendChild(withText(element(atom.P), "Description"))
	for _, n := range markup.Parse(rec.FormattedDescription) {
		body.AppendChild(n)
	}
	return doc
}

func schoolLine(rec *spell.Record) *html.Node {
	p := element(atom.P)
	p.AppendChild(span(labelClass, "School"))
	p.AppendChild(text(rec.School))
	if rec.SubSchool != "" {
		p.AppendChild(text(" ("))
		p.AppendChild(span("subschool", rec.SubSchool))
		p.AppendChild(text(")"))
	}
	if rec.Descriptor != "" {
		p.AppendChild(text(" ["))
		p.AppendChild(span("descriptor", rec.Descriptor))
		p.AppendChild(text("]"))
	}
	return p
}

func levelLine(rec *spell.Record, filter []spell.Category, links LinkResolver) *html.Node {
	wanted := make(map[spell.Category]bool, len(filter))
	for _, c := range filter {
		wanted[c] = true
	}

	p := element(atom.P)
	p.AppendChild(span(labelClass, "Level"))
	first := true
	for _, cl := range rec.Levels.Present() {
		if !wanted[cl.Category] {
			continue
		}
		if !first {
			p.AppendChild(text(", "))
		}
		first = false
		p.AppendChild(link(links.Href(CategoryKey(cl.Category)), cl.Category.String()))
		p.AppendChild(text(" " + strconv.Itoa(cl.Level)))
	}
	return p
}

// appendLine adds a labeled paragraph when value is not blank.
func appendLine(body *html.Node, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	p := element(atom.P)
	p.AppendChild(span(labelClass, label))
	p.AppendChild(text(value))
	body.AppendChild(p)
}
