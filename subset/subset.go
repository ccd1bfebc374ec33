// Package subset persists a filtered sample table and tallies how its rows
// break down by project, response and sex.
package subset

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Breakdown counts rows per distinct value. A NULL label is counted under "".
type Breakdown struct {
	ByProject  map[string]int
	ByResponse map[string]int
	BySex      map[string]int
}

func Tally(rows []store.Metadata) Breakdown {
	out := Breakdown{
		ByProject:  make(map[string]int),
		ByResponse: make(map[string]int),
		BySex:      make(map[string]int),
	}

	for _, r := range rows {
		out.ByProject[r.Project]++
		out.ByResponse[r.Response.ValueOrZero()]++
		out.BySex[r.Sex.ValueOrZero()]++
	}

	return out
}

// BreakdownRow is one line of the <name>_breakdown.csv artifact.
type BreakdownRow struct {
	Group    string `csv:"group"`
	Category string `csv:"category"`
	Count    int    `csv:"count"`
}

// Rows flattens the breakdown in group order (project, response, sex) and
// category order within a group.
func (b Breakdown) Rows() []BreakdownRow {
	var out []BreakdownRow
	for _, g := range []struct {
		name   string
		counts map[string]int
	}{
		{"project", b.ByProject},
		{"response", b.ByResponse},
		{"sex", b.BySex},
	} {
		keys := make([]string, 0, len(g.counts))
		for k := range g.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			out = append(out, BreakdownRow{Group: g.name, Category: k, Count: g.counts[k]})
		}
	}

	return out
}

// Filename is the artifact name for a subset called name.
func Filename(name string) string {
	return name + ".csv"
}

func BreakdownFilename(name string) string {
	return name + "_breakdown.csv"
}

// Report writes rows verbatim to <outDir>/<name>.csv, writes the breakdown
// next to it, and returns the breakdown.
func Report(outDir, name string, rows []store.Metadata) (Breakdown, error) {
	b := Tally(rows)

	if err := writeCSV(filepath.Join(outDir, Filename(name)), &rows); err != nil {
		return b, err
	}

	flat := b.Rows()
	if err := writeCSV(filepath.Join(outDir, BreakdownFilename(name)), &flat); err != nil {
		return b, err
	}

	log.Printf("Subset %s: %d samples; by project %v; by response %v; by sex %v\n", name, len(rows), b.ByProject, b.ByResponse, b.BySex)

	return b, nil
}

func writeCSV(path string, in interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := gocsv.MarshalFile(in, f); err != nil {
		f.Close()
		return pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return pfx.Err(f.Close())
}

// ReadFile loads a subset artifact written by Report.
func ReadFile(path string) ([]store.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	rows := []store.Metadata{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	return rows, nil
}
