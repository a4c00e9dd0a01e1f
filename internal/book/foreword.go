package book

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html/atom"

	"github.com/hpungsan/spellbook/internal/markup"
)

// markdown renders front matter. Raw HTML in the source is dropped.
var markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithXHTML()))

// Foreword builds a front-matter page from Markdown text.
func Foreword(title, source string) (*Document, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("convert foreword: %w", err)
	}

	doc, body := newDocument(ForewordKey(), title)
	body.AppendChild(withText(element(atom.H1), title))
	for _, n := range markup.Parse(buf.String()) {
		body.AppendChild(n)
	}
	return doc, nil
}
