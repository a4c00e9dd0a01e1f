package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/book"
	"github.com/hpungsan/spellbook/internal/errors"
)

// renderDocument writes a synthesized document as XHTML.
func (h *Handlers) renderDocument(w http.ResponseWriter, r *http.Request, doc *book.Document) {
	data, err := book.Render(doc)
	if err != nil {
		h.renderError(w, r, errors.NewInternal(err))
		return
	}
	w.Header().Set("Content-Type", "application/xhtml+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// renderError writes err as JSON or plain text. Internal causes are logged
// and never sent to the client.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	sErr := errors.As(err)
	status := sErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	message := sErr.Message
	if sErr.Code == errors.ErrInternal {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		message = "an internal error occurred"
	}
	// 499 is not a registered HTTP status.
	if sErr.Code == errors.ErrCancelled {
		status = http.StatusServiceUnavailable
	}

	if wantsJSON(r) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(sErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message + "\n"))
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
