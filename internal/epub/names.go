package epub

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/hpungsan/spellbook/internal/book"
)

// DefaultUnsafe lists the characters replaced in entry names. Space, '#'
// and '%' are included so names can be used as hrefs without escaping.
const DefaultUnsafe = ` "#%*/:<>?\|`

// DefaultPlaceholder replaces each unsafe character.
const DefaultPlaceholder = "_"

const contentExt = ".xhtml"

// separators are replaced whatever the configured unsafe set is, so a name
// can never leave the content directory.
const separators = `/\`

// Namer assigns a unique content file name to each document key. Names
// are assigned up front, after which the Namer is safe for concurrent
// lookups.
type Namer struct {
	unsafe      string
	placeholder string

	mu    sync.RWMutex
	names map[book.Key]string
	used  map[string]bool // lower-cased, so names differing only in case collide
}

// NewNamer returns a Namer replacing characters of unsafe with placeholder.
// Control characters and path separators are always replaced. A placeholder
// that itself contains one of them falls back to DefaultPlaceholder.
func NewNamer(unsafe, placeholder string) *Namer {
	if !safePlaceholder(placeholder) {
		placeholder = DefaultPlaceholder
	}
	return &Namer{
		unsafe:      unsafe,
		placeholder: placeholder,
		names:       make(map[book.Key]string),
		used:        make(map[string]bool),
	}
}

// Sanitize maps a display name to a file base name without extension.
func (n *Namer) Sanitize(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	for _, r := range s {
		if alwaysUnsafe(r) || strings.ContainsRune(n.unsafe, r) {
			b.WriteString(n.placeholder)
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

func alwaysUnsafe(r rune) bool {
	return unicode.IsControl(r) || strings.ContainsRune(separators, r)
}

func safePlaceholder(s string) bool {
	return strings.IndexFunc(s, alwaysUnsafe) < 0
}

// Assign gives each key a file name in order. A name already taken gets
// the first free "-2", "-3", ... suffix. Keys assigned earlier keep their
// name.
func (n *Namer) Assign(keys ...book.Key) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, k := range keys {
		if _, ok := n.names[k]; ok {
			continue
		}
		base := n.Sanitize(k.Name)
		name := base + contentExt
		for i := 2; n.used[strings.ToLower(name)]; i++ {
			name = base + "-" + strconv.Itoa(i) + contentExt
		}
		n.used[strings.ToLower(name)] = true
		n.names[k] = name
	}
}

// Name returns the file name assigned to k.
func (n *Namer) Name(k book.Key) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	name, ok := n.names[k]
	return name, ok
}

// Href implements book.LinkResolver. Content documents share a directory,
// so the href is the bare file name. Unassigned keys resolve to their
// sanitized name.
func (n *Namer) Href(k book.Key) string {
	if name, ok := n.Name(k); ok {
		return name
	}
	return n.Sanitize(k.Name) + contentExt
}
