package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/cohort"
	"github.com/carbocation/cellfreq/compare"
	"github.com/carbocation/cellfreq/plot"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/cellfreq/subset"
	"github.com/carbocation/cellfreq/summary"
)

type pipeline struct {
	cohort.Config
	Plots bool
}

// Load reads the source table and inserts it. A table that cannot be parsed is
// fatal; a database that cannot be opened or written is logged and the
// pipeline carries on with whatever the database already holds.
func (p pipeline) Load(ctx context.Context) {
	log.Printf("Loading %s into %s\n", p.Source, p.Database)

	records, err := cellfreq.ReadRecordsFrom(ctx, p.Source, nil)
	if err != nil {
		log.Fatalln(err)
	}

	err = store.With(p.Database, func(s *store.Store) error {
		stats, err := s.Load(records)
		if err != nil {
			return err
		}
		log.Println(stats)

		counts, err := s.RowCounts()
		if err != nil {
			return err
		}
		log.Printf("%s now holds %d projects, %d subjects, %d samples\n", p.Database, counts.Projects, counts.Subjects, counts.Samples)

		return nil
	})
	if err != nil {
		log.Println("Failed to load:", err)
	}
}

// Filter runs a conditional query in its own store scope. Errors are logged
// and yield a nil table.
func (p pipeline) Filter(preds []store.Predicate) []store.Metadata {
	var out []store.Metadata

	err := store.With(p.Database, func(s *store.Store) error {
		var err error
		out, err = s.Filter(preds...)
		return err
	})
	if err != nil {
		log.Printf("Query %v failed: %v\n", preds, err)
		return nil
	}

	return out
}

func (p pipeline) Report() error {
	var rows []summary.Row
	err := store.With(p.Database, func(s *store.Store) error {
		var err error
		rows, err = summary.Compute(s, p.OutputDir)
		return err
	})
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	log.Printf("Wrote %d summary rows to %s\n", len(rows), filepath.Join(p.OutputDir, summary.Filename))

	var draw compare.BoxplotFunc
	if p.Plots {
		draw = plot.Boxplot
		if err := plot.FrequencyChart(filepath.Join(p.OutputDir, plot.FrequencyFilename), rows); err != nil {
			log.Println(err)
		}
	}

	comparisonPreds, err := p.ComparisonPredicates()
	if err != nil {
		return err
	}
	results, err := compare.Run(p.OutputDir, rows, p.Filter(comparisonPreds), draw)
	if err != nil {
		return fmt.Errorf("comparison: %w", err)
	}
	printResults(results)

	subsetPreds, err := p.SubsetPredicates()
	if err != nil {
		return err
	}
	if _, err := subset.Report(p.OutputDir, p.SubsetName, p.Filter(subsetPreds)); err != nil {
		return fmt.Errorf("subset: %w", err)
	}

	return nil
}

func printResults(results []compare.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "cell_type\tresponders\tnon_responders\tstatistic\tp_value\tsignificant\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%.4g\t%t\n", r.CellType, r.Responders, r.NonResponders, r.Statistic, r.PValue, r.Significant())
	}
	w.Flush()
}
