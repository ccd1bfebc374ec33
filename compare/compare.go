// Package compare tests, population by population, whether the relative
// frequency of a cell type differs between responders and non-responders.
package compare

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/ranksum"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/cellfreq/summary"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

const (
	// Filename is the fixed name of the comparison artifact.
	Filename = "statistical_results.csv"

	SignificanceThreshold = 0.05

	Responder    = "yes"
	NonResponder = "no"
)

type Result struct {
	CellType  cellfreq.Population `csv:"cell_type"`
	Statistic float64             `csv:"statistic"`
	PValue    float64             `csv:"p_value"`

	Responders    int `csv:"-"`
	NonResponders int `csv:"-"`
}

// Significant reports whether p is below the fixed 0.05 threshold. NaN is
// never significant.
func Significant(p float64) bool {
	return p < SignificanceThreshold
}

func (r Result) Significant() bool {
	return Significant(r.PValue)
}

// Verdict is a one-sentence interpretation of the p-value.
func (r Result) Verdict() string {
	label := r.CellType.Label()

	if math.IsNaN(r.PValue) {
		return fmt.Sprintf("No test was performed for %ss: at least one response group has no samples.", label)
	}

	if r.Significant() {
		return fmt.Sprintf("Since the p-value is %.4f, which is less than %.2f, we reject the null hypothesis. "+
			"This suggests a statistically significant difference in the relative frequencies of %ss between responders and non-responders.",
			r.PValue, SignificanceThreshold, label)
	}

	return fmt.Sprintf("Since the p-value is %.4f, which is greater than %.2f, we fail to reject the null hypothesis. "+
		"This indicates that there is no statistically significant difference in the relative frequencies of %ss between responders and non-responders.",
		r.PValue, SignificanceThreshold, label)
}

// Joined is a summary row paired with the response label of its subject.
type Joined struct {
	summary.Row
	Response string
}

// Join pairs each summary row with the metadata of its sample. Rows without
// matching metadata are dropped. A NULL response becomes "".
func Join(rows []summary.Row, meta []store.Metadata) []Joined {
	bySample := make(map[string]store.Metadata, len(meta))
	for _, m := range meta {
		bySample[m.Sample] = m
	}

	out := make([]Joined, 0, len(rows))
	for _, r := range rows {
		m, exists := bySample[r.Sample]
		if !exists {
			continue
		}
		out = append(out, Joined{Row: r, Response: m.Response.ValueOrZero()})
	}

	return out
}

// Groups holds percentages per population for each response group.
type Groups struct {
	Responders    map[cellfreq.Population][]float64
	NonResponders map[cellfreq.Population][]float64
}

// Split partitions joined rows by response. Labels other than "yes" and "no"
// belong to neither group.
func Split(joined []Joined) Groups {
	g := Groups{
		Responders:    make(map[cellfreq.Population][]float64),
		NonResponders: make(map[cellfreq.Population][]float64),
	}

	for _, j := range joined {
		switch j.Response {
		case Responder:
			g.Responders[j.Population] = append(g.Responders[j.Population], j.Percentage)
		case NonResponder:
			g.NonResponders[j.Population] = append(g.NonResponders[j.Population], j.Percentage)
		}
	}

	return g
}

// Compare runs a two-sided Mann-Whitney U test for each population, with
// responders as the first sample. A population with an empty group gets NaN
// for both statistic and p-value.
func Compare(rows []summary.Row, meta []store.Metadata) ([]Result, Groups) {
	groups := Split(Join(rows, meta))

	out := make([]Result, 0, len(cellfreq.Populations))
	for _, pop := range cellfreq.Populations {
		yes, no := groups.Responders[pop], groups.NonResponders[pop]

		res := Result{
			CellType:      pop,
			Responders:    len(yes),
			NonResponders: len(no),
		}

		test, err := ranksum.Test(yes, no)
		if err != nil {
			log.Printf("%s: %v (%d responders, %d non-responders)\n", pop, err, len(yes), len(no))
		}
		res.Statistic, res.PValue = test.U, test.P

		out = append(out, res)
	}

	return out, groups
}

// BoxplotFunc draws one population's two distributions to path.
type BoxplotFunc func(path, label string, responders, nonResponders []float64) error

// Run compares, writes statistical_results.csv into outDir, and, if draw is
// non-nil, one <population>_boxplot.png per population.
func Run(outDir string, rows []summary.Row, meta []store.Metadata, draw BoxplotFunc) ([]Result, error) {
	results, groups := Compare(rows, meta)

	if err := WriteFile(filepath.Join(outDir, Filename), results); err != nil {
		return results, err
	}

	if draw == nil {
		return results, nil
	}

	for _, pop := range cellfreq.Populations {
		path := filepath.Join(outDir, pop.BoxplotFilename("png"))
		if err := draw(path, pop.Label(), groups.Responders[pop], groups.NonResponders[pop]); err != nil {
			return results, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}
	}

	return results, nil
}

func WriteFile(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	if err := gocsv.MarshalFile(&results, f); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	return pfx.Err(f.Close())
}

func ReadFile(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	results := []Result{}
	if err := gocsv.UnmarshalFile(f, &results); err != nil {
		return nil, pfx.Err(err)
	}

	return results, nil
}

// Find returns the result for pop, if present.
func Find(results []Result, pop cellfreq.Population) (Result, bool) {
	for _, r := range results {
		if r.CellType == pop {
			return r, true
		}
	}

	return Result{}, false
}
