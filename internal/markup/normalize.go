// Package markup reduces rich-text description fragments to canonical markup:
// attribute-free paragraphs and inline text, in the original reading order.
package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// bodyContext is the context element fragments are parsed in.
var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Parse parses a fragment in a <body> context. Malformed markup is repaired
// by the parser; the only failure mode is a reader error, which cannot happen
// for a string source.
func Parse(raw string) []*html.Node {
	nodes, err := html.ParseFragment(strings.NewReader(raw), bodyContext)
	if err != nil {
		return nil
	}
	return nodes
}

// Normalize rewrites a fragment to canonical markup text.
func Normalize(raw string) string {
	s, err := Render(NormalizeNodes(raw))
	if err != nil {
		// Canonical trees contain no void elements with children, which is
		// the only thing html.Render rejects.
		return ""
	}
	return s
}

// NormalizeNodes rewrites a fragment and returns the canonical top-level nodes.
// The nodes are detached and may be appended to another tree.
func NormalizeNodes(raw string) []*html.Node {
	return rewrite(newArena(Parse(raw)))
}

// Render serializes nodes in order. Void elements are self-closed, so the
// output of a canonical tree is also well-formed XML.
func Render(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Text concatenates the text content of nodes in document order.
func Text(nodes []*html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return sb.String()
}

// IsParagraph reports whether n is a paragraph-level element.
func IsParagraph(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.P && n.Namespace == ""
}
