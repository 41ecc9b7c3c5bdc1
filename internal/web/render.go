package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/amgst/mapapp2/internal/errors"
)

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a structured JSON error response. Unknown error
// values are collapsed to INTERNAL without leaking details.
func renderError(w http.ResponseWriter, err error) {
	var berr *errors.BuilderError
	if !stderrors.As(err, &berr) {
		berr = errors.NewInternal(err)
	}

	renderJSON(w, berr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(berr.Code),
			"message": berr.Message,
			"status":  berr.Status,
		},
	})
}

// renderMarkdown converts markdown text to HTML using goldmark. On
// conversion failure the raw text is returned so the caller still has
// something to show.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return buf.String()
}
