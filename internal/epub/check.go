package epub

import (
	"fmt"
	"path"
	"strings"
)

// resolve maps an href relative to the document at from onto an entry name.
// Fragments are dropped.
func resolve(from, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	return path.Join(path.Dir(from), href)
}

// Check reports every way pkg and the archive entry names disagree.
// opfPath is the entry name of the package document. An empty result means
// the package is consistent:
//
//   - mimetype is the first entry and entry names are unique
//   - the container and package documents are present
//   - manifest IDs and hrefs are unique and every href names an entry
//   - every entry other than the fixed control files is in the manifest
//   - the spine is non-empty and lists XHTML manifest items
//   - the NCX is a manifest item and every nav point names a manifest entry
func Check(pkg *Package, entries []string, opfPath string) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(entries) == 0 || entries[0] != MimetypeName {
		add("%s is not the first entry", MimetypeName)
	}
	present := make(map[string]bool, len(entries))
	for _, name := range entries {
		if present[name] {
			add("duplicate entry %q", name)
		}
		present[name] = true
	}
	for _, name := range []string{ContainerName, opfPath} {
		if !present[name] {
			add("missing entry %q", name)
		}
	}

	ids := make(map[string]Item, len(pkg.Items))
	listed := make(map[string]bool, len(pkg.Items))
	for _, it := range pkg.Items {
		if it.ID == "" {
			add("manifest item %q has no id", it.Href)
		} else if _, dup := ids[it.ID]; dup {
			add("duplicate manifest id %q", it.ID)
		}
		ids[it.ID] = it

		name := resolve(opfPath, it.Href)
		if listed[name] {
			add("entry %q is listed twice in the manifest", name)
		}
		listed[name] = true
		if !present[name] {
			add("manifest item %q names missing entry %q", it.ID, name)
		}
	}
	for _, name := range entries {
		if name == MimetypeName || name == ContainerName || name == opfPath {
			continue
		}
		if !listed[name] {
			add("entry %q is not in the manifest", name)
		}
	}

	if len(pkg.Spine) == 0 {
		add("spine is empty")
	}
	for _, id := range pkg.Spine {
		it, ok := ids[id]
		switch {
		case !ok:
			add("spine references unknown item %q", id)
		case it.MediaType != MediaTypeXHTML:
			add("spine item %q has media type %q", id, it.MediaType)
		}
	}

	toc, ok := ids[pkg.TOC]
	if !ok || toc.MediaType != MediaTypeNCX {
		add("spine toc %q is not an NCX manifest item", pkg.TOC)
		return problems
	}
	ncxPath := resolve(opfPath, toc.Href)
	for _, np := range pkg.Nav {
		name := resolve(ncxPath, np.Src)
		if !listed[name] {
			add("nav point %q names %q, which is not in the manifest", np.Label, name)
		}
	}
	return problems
}
