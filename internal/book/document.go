// Package book synthesizes the XHTML documents of a spell book: one detail
// page per spell, one index page per category, and an optional foreword.
package book

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hpungsan/spellbook/internal/spell"
)

// xhtmlHeader precedes every rendered document.
const xhtmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n" +
	`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">` + "\n"

const xhtmlNamespace = "http://www.w3.org/1999/xhtml"

// StylesheetHref is the stylesheet location relative to content documents.
const StylesheetHref = "../Styles/Style.css"

// Kind identifies what a document describes.
type Kind string

const (
	KindForeword Kind = "foreword"
	KindIndex    Kind = "index"
	KindDetail   Kind = "detail"
)

// Key names the subject of a document. Entry names and links are derived
// from keys, so two documents with the same key are the same document.
type Key struct {
	Kind Kind
	Name string
}

// SpellKey is the key of a spell's detail document.
func SpellKey(name string) Key { return Key{Kind: KindDetail, Name: name} }

// CategoryKey is the key of a category's index document.
func CategoryKey(c spell.Category) Key { return Key{Kind: KindIndex, Name: c.String()} }

// ForewordKey is the key of the foreword document.
func ForewordKey() Key { return Key{Kind: KindForeword, Name: "Foreword"} }

// LinkResolver maps document keys to hrefs relative to the content directory.
type LinkResolver interface {
	Href(key Key) string
}

// Document is a synthesized XHTML tree.
type Document struct {
	Key   Key
	Title string
	Root  *html.Node // the <html> element
}

// Render serializes the document with its XML declaration and doctype.
func Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xhtmlHeader)
	if err := html.Render(&buf, doc.Root); err != nil {
		return nil, fmt.Errorf("render %s %q: %w", doc.Key.Kind, doc.Key.Name, err)
	}
	return buf.Bytes(), nil
}

// newDocument builds the html/head/body skeleton and returns the body.
func newDocument(key Key, title string) (*Document, *html.Node) {
	root := element(atom.Html, attr("xmlns", xhtmlNamespace))
	head := element(atom.Head)
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(element(atom.Link,
		attr("rel", "stylesheet"),
		attr("type", "text/css"),
		attr("href", StylesheetHref)))
	body := element(atom.Body)
	root.AppendChild(head)
	root.AppendChild(body)
	return &Document{Key: key, Title: title, Root: root}, body
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}

// span returns <span class="class">s</span>.
func span(class, s string) *html.Node {
	return withText(element(atom.Span, attr("class", class)), s)
}

// link returns <a href="href">s</a>.
func link(href, s string) *html.Node {
	return withText(element(atom.A, attr("href", href)), s)
}
