package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func router(config *Global) (http.Handler, error) {
	router := mux.NewRouter()
	POST := router.Methods("POST").Subrouter()
	GET := router.Methods("GET", "HEAD").Subrouter()

	h := &handler{Global: config, router: router}

	GET.HandleFunc("/", h.Overview).Name("overview")
	GET.HandleFunc("/statistics", h.Statistics).Name("statistics")
	GET.HandleFunc("/subset", h.Subset).Name("subset")
	GET.Handle("/metrics", promhttp.Handler())

	// Artifacts change only on reload, so let browsers keep them briefly.
	GET.Handle(`/artifacts/{file:[A-Za-z0-9_\-]+\.(?:png|csv)}`,
		middleware.MaxAgeHandler(60, http.HandlerFunc(h.Artifact))).Name("artifact")

	//
	// POST
	//
	POST.Handle("/", http.NotFoundHandler())
	POST.HandleFunc("/reload", h.Reload).Name("reload")

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router), nil
}
