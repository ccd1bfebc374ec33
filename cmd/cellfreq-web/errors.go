package main

import (
	"fmt"
	"net/http"
)

func HTTPError(h *handler, w http.ResponseWriter, r *http.Request, err error) {
	unifiedError(h, w, r, err, http.StatusInternalServerError)
}

func HTTPNotFound(h *handler, w http.ResponseWriter, r *http.Request, err error) {
	unifiedError(h, w, r, err, http.StatusNotFound)
}

func HTTPBadRequest(h *handler, w http.ResponseWriter, r *http.Request, err error) {
	unifiedError(h, w, r, err, http.StatusBadRequest)
}

func unifiedError(h *handler, w http.ResponseWriter, r *http.Request, err error, code int) {
	usedCode := code
	if usedCode == 0 {
		usedCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(usedCode)
	fmt.Fprintf(w, "%d %s\n\n%v\n", usedCode, http.StatusText(usedCode), err)

	h.log.Println(fmt.Sprintf("HTTP %d at %s: %v", usedCode, r.URL.Path, err))
}
