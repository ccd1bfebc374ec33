// Package summary converts per-sample population counts into the long-format
// frequency table: one row per (sample, population) with the population's
// share of the sample's total cell count.
package summary

import (
	"os"
	"path/filepath"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Filename is the fixed name of the summary artifact.
const Filename = "summary.csv"

type Row struct {
	Sample     string              `csv:"sample"`
	TotalCount int64               `csv:"total_count"`
	Population cellfreq.Population `csv:"population"`
	Count      int64               `csv:"count"`
	Percentage float64             `csv:"percentage"`
}

// Counter is anything that carries the five population counts.
type Counter interface {
	Counts() [5]int64
}

// Summarize emits len(counts)*5 rows. A sample whose total is zero gets a
// percentage of 0 for every population.
func Summarize(counts []store.SampleCount) []Row {
	out := make([]Row, 0, len(counts)*len(cellfreq.Populations))

	for _, c := range counts {
		out = append(out, SummarizeSample(c.Sample, c)...)
	}

	return out
}

func SummarizeSample(sample string, c Counter) []Row {
	values := c.Counts()

	var total int64
	for _, v := range values {
		total += v
	}

	out := make([]Row, 0, len(values))
	for i, pop := range cellfreq.Populations {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(values[i]) / float64(total)
		}

		out = append(out, Row{
			Sample:     sample,
			TotalCount: total,
			Population: pop,
			Count:      values[i],
			Percentage: pct,
		})
	}

	return out
}

// WriteFile persists rows as a CSV with a header.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}

// ReadFile loads a previously written summary artifact.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	rows := []Row{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}

// Compute reads every sample from s, summarizes it, and writes summary.csv
// into outDir.
func Compute(s *store.Store, outDir string) ([]Row, error) {
	counts, err := s.SampleCounts()
	if err != nil {
		return nil, err
	}

	rows := Summarize(counts)

	if err := WriteFile(filepath.Join(outDir, Filename), rows); err != nil {
		return rows, err
	}

	return rows, nil
}

// ByPopulation groups rows by population, preserving input order within each
// group.
func ByPopulation(rows []Row) map[cellfreq.Population][]Row {
	out := make(map[cellfreq.Population][]Row, len(cellfreq.Populations))
	for _, r := range rows {
		out[r.Population] = append(out[r.Population], r)
	}

	return out
}
