package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cellfreq",
		Name:      "page_views_total",
		Help:      "Dashboard pages served, by route.",
	}, []string{"route"})

	reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cellfreq",
		Name:      "reloads_total",
		Help:      "Database reloads requested through the dashboard, by outcome.",
	}, []string{"outcome"})

	rowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cellfreq",
		Name:      "rows_inserted_total",
		Help:      "Rows inserted by dashboard reloads, by table.",
	}, []string{"table"})
)
