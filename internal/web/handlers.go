package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/book"
	"github.com/hpungsan/spellbook/internal/catalog"
	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/ops"
	"github.com/hpungsan/spellbook/internal/spell"
)

// Handlers contains HTTP route handlers for the catalog preview.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	logger  *zap.Logger
	version string
}

// previewLinks resolves document keys to preview URLs.
type previewLinks struct{}

func (previewLinks) Href(k book.Key) string {
	switch k.Kind {
	case book.KindIndex:
		return "/categories/" + url.PathEscape(k.Name)
	case book.KindDetail:
		return "/spells/" + url.PathEscape(k.Name)
	default:
		return "/"
	}
}

var categoriesPage = template.Must(template.New("categories").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Spell lists</title>
<link rel="stylesheet" type="text/css" href="/Styles/Style.css">
</head>
<body>
<h1>Spell lists</h1>
<table>
{{- range .Items}}
<tr><td><a href="/categories/{{.Name}}">{{.Name}}</a></td><td>{{.Spells}}</td></tr>
{{- end}}
</table>
<p class="version">spellbook {{.Version}}</p>
</body>
</html>
`))

// HandleCategories handles GET /categories: every category with its spell count.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Categories(r.Context(), h.db)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = categoriesPage.Execute(w, struct {
		Items   []ops.CategoryCount
		Version string
	}{result.Items, h.version})
	if err != nil {
		h.logger.Warn("render categories", zap.Error(err))
	}
}

// HandleIndex handles GET /categories/{name}: the index page of one category.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	c, err := spell.ParseCategory(r.PathValue("name"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		result, err := ops.List(r.Context(), h.db, h.cfg, ops.ListInput{
			WorkingSet: ops.WorkingSet{Categories: []string{c.String()}},
			PageLimit:  parseIntParam(r, "limit", ops.DefaultListLimit),
			Offset:     parseIntParam(r, "offset", 0),
		})
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, result)
		return
	}

	records, err := catalog.List(r.Context(), h.db, catalog.Filter{Categories: []spell.Category{c}})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	cmp, err := spell.NewComparer(h.cfg.Collation)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderDocument(w, r, book.Index(spell.GroupCategory(c, records, cmp), previewLinks{}))
}

// HandleDetail handles GET /spells/{name}: one spell's detail page.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{Name: r.PathValue("name")})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	cats, err := h.cfg.WorkingSet()
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderDocument(w, r, book.Detail(&result.Record, cats, previewLinks{}))
}

// HandleStylesheet handles GET /Styles/Style.css, the location every
// document links to. It serves the same stylesheet a build would embed.
func (h *Handlers) HandleStylesheet(w http.ResponseWriter, r *http.Request) {
	css, err := ops.Stylesheet(h.cfg)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(css)
}

// wantsJSON reports whether the client asked for JSON.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
