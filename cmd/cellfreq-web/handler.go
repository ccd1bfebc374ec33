package main

import (
	"embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/carbocation/cellfreq/compare"
	"github.com/gorilla/mux"
)

const (
	BaseFilename = "_base.html"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// handler provides global values that must be
// safe for concurrent use from multiple goroutines
// to each handler method.
type handler struct {
	*Global

	router *mux.Router

	// Mutex protected values
	mu       sync.RWMutex
	template map[string]*template.Template
}

func (h *handler) Template(templateFilename string) (*template.Template, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.template == nil {
		h.Global.log.Println("Initializing HTML templates")

		tpl, err := template.New(BaseFilename).Funcs(template.FuncMap{
			"percent": func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
			"pvalue":  func(v float64) string { return fmt.Sprintf("%.4g", v) },
			"significant": func(p float64) bool {
				return compare.Significant(p)
			},
		}).ParseFS(embeddedTemplates, "templates/"+BaseFilename)
		if err != nil {
			return nil, fmt.Errorf("handler.go:Template: %w", err)
		}

		h.template = map[string]*template.Template{BaseFilename: tpl}
	}

	// Prevent execution of the BaseFilename template, which would prevent future copies
	templateName := templateFilename
	if templateFilename == BaseFilename {
		templateName = "CLONE" + BaseFilename
	}

	// Specific sub-template has already been generated
	if tpl, ok := h.template[templateName]; ok {
		return tpl, nil
	}

	// Generate a clone of the base template so you don't contaminate it with the
	// derivative template's `define` statements.
	h.Global.log.Println("Initializing HTML template for", templateFilename)
	base, err := h.template[BaseFilename].Clone()
	if err != nil {
		return nil, err
	}
	tpl, err := base.ParseFS(embeddedTemplates, "templates/"+templateFilename)
	if err != nil {
		return nil, fmt.Errorf("handler.go:Template: %w", err)
	}
	h.template[templateName] = tpl

	return tpl, nil
}
