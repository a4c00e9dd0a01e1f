package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// node is an arena copy of a parsed node. Children are arena indices.
type node struct {
	n        *html.Node
	children []int
}

// arena holds a read-only copy of the parsed forest so the rewrite never
// walks a tree it is also mutating.
type arena struct {
	nodes []node
	roots []int
}

func newArena(forest []*html.Node) *arena {
	a := &arena{}
	for _, n := range forest {
		a.roots = append(a.roots, a.add(n))
	}
	return a
}

func (a *arena) add(n *html.Node) int {
	id := len(a.nodes)
	a.nodes = append(a.nodes, node{n: n})
	var children []int
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, a.add(c))
	}
	a.nodes[id].children = children
	return id
}

// work is one pending arena node and the output node it will be attached to.
// A nil parent means the top level of the result.
type work struct {
	id     int
	parent *html.Node
}

// rewrite walks the arena in document order with an explicit stack.
// Paragraphs are kept without attributes, any other element is replaced in
// place by its children, comments are dropped and other nodes are copied.
//
// Paragraphs never nest in the output. A paragraph found inside another one
// closes it and is emitted at the top level; whatever followed it in the
// enclosing paragraph goes into a fresh continuation paragraph.
func rewrite(a *arena) []*html.Node {
	var out []*html.Node

	// cont maps a closed paragraph to its continuation. A nil value means
	// the continuation has not been needed yet.
	cont := make(map[*html.Node]*html.Node)
	tail := func(p *html.Node) *html.Node {
		for {
			next, ok := cont[p]
			if !ok {
				return p
			}
			if next == nil {
				next = &html.Node{Type: html.ElementNode, Data: p.Data, DataAtom: p.DataAtom}
				out = append(out, next)
				cont[p] = next
			}
			p = next
		}
	}
	attach := func(parent, n *html.Node) {
		if parent == nil {
			out = append(out, n)
			return
		}
		tail(parent).AppendChild(n)
	}

	stack := make([]work, 0, len(a.roots))
	push := func(ids []int, parent *html.Node) {
		for i := len(ids) - 1; i >= 0; i-- {
			stack = append(stack, work{id: ids[i], parent: parent})
		}
	}
	push(a.roots, nil)

	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		src := a.nodes[w.id]

		switch {
		case IsParagraph(src.n):
			if w.parent != nil {
				// Close the open end of the enclosing paragraph.
				cont[lastOpen(cont, w.parent)] = nil
			}
			p := &html.Node{Type: html.ElementNode, Data: src.n.Data, DataAtom: src.n.DataAtom}
			out = append(out, p)
			push(src.children, p)
		case src.n.Type == html.ElementNode:
			push(src.children, w.parent)
		case src.n.Type == html.CommentNode:
		case src.n.Type == html.TextNode:
			if text := xmlText(src.n.Data); text != "" {
				attach(w.parent, &html.Node{Type: html.TextNode, Data: text})
			}
		default:
			attach(w.parent, &html.Node{
				Type:      src.n.Type,
				Data:      src.n.Data,
				DataAtom:  src.n.DataAtom,
				Namespace: src.n.Namespace,
				Attr:      append([]html.Attribute(nil), src.n.Attr...),
			})
		}
	}
	return out
}

// lastOpen returns the last created paragraph in the continuation chain of p.
func lastOpen(cont map[*html.Node]*html.Node, p *html.Node) *html.Node {
	for {
		next := cont[p]
		if next == nil {
			return p
		}
		p = next
	}
}

// xmlText drops runes that XML 1.0 does not allow in character data.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}
