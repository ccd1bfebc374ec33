package main

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/cohort"
	"github.com/carbocation/cellfreq/compare"
	"github.com/carbocation/cellfreq/plot"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/cellfreq/subset"
	"github.com/carbocation/cellfreq/summary"
	"github.com/carbocation/pfx"
)

type Global struct {
	log logger

	Site    string
	Version string
	cohort.Config

	summary *summary.Cache

	m        sync.RWMutex
	analysis *Analysis
}

// Analysis is everything derived from the summary table: the responder
// comparison (with its plots on disk) and the subset report.
type Analysis struct {
	Results   []compare.Result
	Subset    []store.Metadata
	Breakdown subset.Breakdown
}

func NewGlobal(cfg cohort.Config, log logger) *Global {
	g := &Global{
		log:    log,
		Site:   "Cell Frequency Dashboard",
		Config: cfg,
	}

	g.summary = summary.NewCache(func() ([]summary.Row, error) {
		var rows []summary.Row
		err := store.With(g.Database, func(s *store.Store) error {
			var err error
			rows, err = summary.Compute(s, g.OutputDir)
			return err
		})
		if err != nil {
			return nil, err
		}

		if err := plot.FrequencyChart(filepath.Join(g.OutputDir, plot.FrequencyFilename), rows); err != nil {
			g.log.Println(err)
		}

		return rows, nil
	})

	return g
}

func (g *Global) Summary() ([]summary.Row, error) {
	return g.summary.Get()
}

// Analysis returns the cached comparison and subset, computing them if the
// summary was reloaded since.
func (g *Global) Analysis() (*Analysis, error) {
	g.m.RLock()
	if a := g.analysis; a != nil {
		g.m.RUnlock()
		return a, nil
	}
	g.m.RUnlock()

	g.m.Lock()
	defer g.m.Unlock()

	if g.analysis != nil {
		return g.analysis, nil
	}

	rows, err := g.Summary()
	if err != nil {
		return nil, err
	}

	comparisonPreds, err := g.ComparisonPredicates()
	if err != nil {
		return nil, err
	}
	subsetPreds, err := g.SubsetPredicates()
	if err != nil {
		return nil, err
	}

	a := &Analysis{}
	if a.Results, err = compare.Run(g.OutputDir, rows, g.filter(comparisonPreds), plot.Boxplot); err != nil {
		return nil, err
	}

	a.Subset = g.filter(subsetPreds)
	if a.Breakdown, err = subset.Report(g.OutputDir, g.SubsetName, a.Subset); err != nil {
		return nil, err
	}

	g.analysis = a

	return a, nil
}

// filter logs query failures and returns a nil table, so the pages render
// with whatever is available.
func (g *Global) filter(preds []store.Predicate) []store.Metadata {
	var out []store.Metadata

	err := store.With(g.Database, func(s *store.Store) error {
		var err error
		out, err = s.Filter(preds...)
		return err
	})
	if err != nil {
		g.log.Printf("Query %v failed: %v\n", preds, err)
		return nil
	}

	return out
}

// Reload inserts the source table again and drops everything derived from the
// database.
func (g *Global) Reload(ctx context.Context) (store.LoadStats, error) {
	var stats store.LoadStats

	records, err := cellfreq.ReadRecordsFrom(ctx, g.Source, nil)
	if err != nil {
		return stats, err
	}

	err = store.With(g.Database, func(s *store.Store) error {
		var err error
		stats, err = s.Load(records)
		return err
	})
	if err != nil {
		return stats, pfx.Err(err)
	}

	g.m.Lock()
	g.summary.Invalidate()
	g.analysis = nil
	g.m.Unlock()

	return stats, nil
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
