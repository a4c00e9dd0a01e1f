package book_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hpungsan/spellbook/internal/book"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/spell"
	"github.com/hpungsan/spellbook/internal/spell/spelltest"
)

// hrefs resolves keys to "<kind>/<name>.xhtml".
type hrefs struct{}

func (hrefs) Href(k book.Key) string { return string(k.Kind) + "/" + k.Name + ".xhtml" }

const header = `<?xml version="1.0" encoding="utf-8"?>` + "\n" +
	`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">` + "\n"

func page(title, body string) string {
	return header + `<html xmlns="http://www.w3.org/1999/xhtml"><head><title>` + title +
		`</title><link rel="stylesheet" type="text/css" href="../Styles/Style.css"/></head><body>` +
		body + `</body></html>`
}

func render(t *testing.T, doc *book.Document) string {
	t.Helper()
	b, err := book.Render(doc)
	require.NoError(t, err)
	return string(b)
}

func TestDetail(t *testing.T) {
	rec := spelltest.Row{
		Name:        "Aid",
		School:      "conjuration",
		SubSchool:   "healing",
		CastingTime: "1 standard action",
		Range:       "touch",
		Description: `<div><p class="x">Grants <b>+1</b> morale.</p></div>`,
		Levels:      map[spell.Category]int{spell.Paladin: 2, spell.Cleric: 2, spell.Inquisitor: 2},
	}.Record()

	doc := book.Detail(rec, []spell.Category{spell.Paladin, spell.Cleric}, hrefs{})
	assert.Equal(t, book.SpellKey("Aid"), doc.Key)
	assert.Equal(t, "Aid", doc.Title)

	want := page("Aid",
		`<h1>Aid</h1>`+
			`<p><span class="spell-title">School</span>conjuration (<span class="subschool">healing</span>)</p>`+
			`<p><span class="spell-title">Level</span><a href="index/Cleric.xhtml">Cleric</a> 2, <a href="index/Paladin.xhtml">Paladin</a> 2</p>`+
			`<p><span class="spell-title">Casting time</span>1 standard action</p>`+
			`<p><span class="spell-title">Range</span>touch</p>`+
			`<p></p><p>Description</p>`+
			`<p>Grants +1 morale.</p>`)
	if diff := cmp.Diff(want, render(t, doc)); diff != "" {
		t.Errorf("Detail mismatch (-want +got):\n%s", diff)
	}
}

func TestDetail_Descriptor(t *testing.T) {
	rec := spelltest.Row{
		Name:       "Fireball",
		School:     "evocation",
		Descriptor: "fire",
		Levels:     map[spell.Category]int{spell.Wizard: 3},
	}.Record()

	got := render(t, book.Detail(rec, []spell.Category{spell.Wizard}, hrefs{}))
	assert.Contains(t, got, `evocation [<span class="descriptor">fire</span>]`)
	assert.NotContains(t, got, "subschool")
}

func TestDetail_OutsideFilter(t *testing.T) {
	rec := spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2}}.Record()

	got := render(t, book.Detail(rec, []spell.Category{spell.Wizard}, hrefs{}))
	assert.Contains(t, got, `<p><span class="spell-title">Level</span></p>`)
}

func TestIndex(t *testing.T) {
	records := spelltest.Records(
		spelltest.Row{Name: "Zone of Truth", Levels: map[spell.Category]int{spell.Cleric: 2}},
		spelltest.Row{Name: "Bless", Summary: "Allies gain +1 on attack rolls.", Levels: map[spell.Category]int{spell.Cleric: 1}},
		spelltest.Row{Name: "Aid", Summary: "  ", Levels: map[spell.Category]int{spell.Cleric: 2}},
	)
	g := spell.GroupCategory(spell.Cleric, records, nil)

	doc := book.Index(g, hrefs{})
	assert.Equal(t, book.CategoryKey(spell.Cleric), doc.Key)

	want := page("Cleric spell list",
		`<h1>Level 1 spells</h1><table>`+
			`<tr><td><a href="detail/Bless.xhtml">Bless</a></td><td>Allies gain +1 on attack rolls.</td></tr>`+
			`</table>`+
			`<h1>Level 2 spells</h1><table>`+
			`<tr><td><a href="detail/Aid.xhtml">Aid</a></td></tr>`+
			`<tr><td><a href="detail/Zone of Truth.xhtml">Zone of Truth</a></td></tr>`+
			`</table>`)
	if diff := cmp.Diff(want, render(t, doc)); diff != "" {
		t.Errorf("Index mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_EmptyCategory(t *testing.T) {
	doc := book.Index(spell.GroupCategory(spell.Druid, nil, nil), hrefs{})
	assert.Equal(t, page("Druid spell list", ""), render(t, doc))
}

func TestForeword(t *testing.T) {
	doc, err := book.Foreword("About", "Hello *world*\n\n<script>alert(1)</script>\n")
	require.NoError(t, err)
	assert.Equal(t, book.ForewordKey(), doc.Key)

	got := render(t, doc)
	assert.Contains(t, got, `<h1>About</h1><p>Hello <em>world</em></p>`)
	assert.NotContains(t, got, "<script")
}

func TestRender_EscapesText(t *testing.T) {
	rec := spelltest.Row{Name: "Tom & Jerry <1>", Levels: map[spell.Category]int{spell.Bard: 0}}.Record()
	got := render(t, book.Detail(rec, nil, hrefs{}))
	assert.Contains(t, got, "<title>Tom &amp; Jerry &lt;1&gt;</title>")
	assert.False(t, strings.Contains(got, "<1>"))
}

func TestKeys(t *testing.T) {
	records := spelltest.Records(
		spelltest.Row{Name: "Bless"},
		spelltest.Row{Name: "Aid"},
	)
	keys := book.Keys(records, book.Options{
		Categories: []spell.Category{spell.Wizard, spell.Cleric, spell.Wizard},
		Foreword:   &book.ForewordSource{Title: "About"},
	})
	assert.Equal(t, []book.Key{
		book.ForewordKey(),
		book.CategoryKey(spell.Cleric),
		book.CategoryKey(spell.Wizard),
		book.SpellKey("Bless"),
		book.SpellKey("Aid"),
	}, keys)
}

func TestSynthesize(t *testing.T) {
	defer goleak.VerifyNone(t)

	var rows []spelltest.Row
	for _, name := range []string{"Zone of Truth", "Aid", "Bless", "Cure Light Wounds", "Prayer", "Shield of Faith"} {
		rows = append(rows, spelltest.Row{Name: name, Levels: map[spell.Category]int{spell.Cleric: 1, spell.Druid: 2}})
	}
	records := spelltest.Records(rows...)

	b, err := book.Synthesize(context.Background(), records, hrefs{}, book.Options{
		Categories: []spell.Category{spell.Druid, spell.Cleric},
		Workers:    2,
		Foreword:   &book.ForewordSource{Title: "About", Markdown: "Text"},
	})
	require.NoError(t, err)

	require.NotNil(t, b.Foreword)
	require.Len(t, b.Indexes, 2)
	assert.Equal(t, book.CategoryKey(spell.Cleric), b.Indexes[0].Key)
	assert.Equal(t, book.CategoryKey(spell.Druid), b.Indexes[1].Key)

	require.Len(t, b.Details, len(records))
	for i, r := range records {
		assert.Equal(t, book.SpellKey(r.Name), b.Details[i].Key)
	}

	var got []book.Key
	for _, d := range b.Documents() {
		got = append(got, d.Key)
	}
	assert.Equal(t, book.Keys(records, book.Options{
		Categories: []spell.Category{spell.Druid, spell.Cleric},
		Foreword:   &book.ForewordSource{},
	}), got)
}

func TestSynthesize_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := spelltest.Records(spelltest.Row{Name: "Aid", Levels: map[spell.Category]int{spell.Cleric: 2}})
	_, err := book.Synthesize(ctx, records, hrefs{}, book.Options{Categories: []spell.Category{spell.Cleric}})
	assert.True(t, errors.Is(err, errors.ErrCancelled))
}
