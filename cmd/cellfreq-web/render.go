package main

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Page is the value handed to every HTML template.
type Page struct {
	Title   string
	Site    string
	Version string
	Path    string
	Data    interface{}
}

// Render writes data as HTML through tpl, or as JSON when the client asks for
// it with ?format=json.
func Render(h *handler, w http.ResponseWriter, r *http.Request, title, tpl string, data interface{}) {
	if r.URL.Query().Get("format") == "json" {
		renderJSON(h, w, r, data)
		return
	}

	page := Page{
		Title:   title,
		Site:    h.Site,
		Version: h.Version,
		Path:    r.URL.Path,
		Data:    data,
	}

	renderHTML(h, w, r, tpl, page)
}

func renderHTML(h *handler, w http.ResponseWriter, r *http.Request, tpl string, page Page) {
	t, err := h.Template(tpl)
	if err != nil {
		unifiedError(h, w, r, err, http.StatusInternalServerError)
		return
	}

	// Execute into a buffer so a failing template still yields a clean error page.
	var buf bytes.Buffer
	if err := t.Execute(&buf, page); err != nil {
		unifiedError(h, w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func renderJSON(h *handler, w http.ResponseWriter, r *http.Request, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		h.log.Println(err)
	}
}
