package compare

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/cellfreq/summary"
	"gopkg.in/guregu/null.v3"
)

func meta(sample, response string) store.Metadata {
	m := store.Metadata{Sample: sample, Condition: "melanoma", Treatment: "miraclib", SampleType: "PBMC"}
	if response != "" {
		m.Response = null.StringFrom(response)
	}
	return m
}

func rowsFor(samples map[string][5]int64) []summary.Row {
	var out []summary.Row
	for _, s := range []string{"r1", "r2", "r3", "n1", "n2", "n3", "u1", "x1", "orphan"} {
		c, ok := samples[s]
		if !ok {
			continue
		}
		out = append(out, summary.Summarize([]store.SampleCount{{
			Sample: s, BCell: c[0], CD8TCell: c[1], CD4TCell: c[2], NKCell: c[3], Monocyte: c[4],
		}})...)
	}
	return out
}

func fixture() ([]summary.Row, []store.Metadata) {
	rows := rowsFor(map[string][5]int64{
		"r1":     {10, 20, 30, 20, 20},
		"r2":     {11, 19, 30, 20, 20},
		"r3":     {12, 18, 30, 20, 20},
		"n1":     {40, 10, 10, 20, 20},
		"n2":     {41, 9, 10, 20, 20},
		"n3":     {42, 8, 10, 20, 20},
		"u1":     {99, 1, 0, 0, 0},
		"x1":     {0, 0, 0, 0, 100},
		"orphan": {50, 50, 0, 0, 0},
	})

	md := []store.Metadata{
		meta("r1", "yes"), meta("r2", "yes"), meta("r3", "yes"),
		meta("n1", "no"), meta("n2", "no"), meta("n3", "no"),
		meta("u1", ""), meta("x1", "maybe"),
	}

	return rows, md
}

func TestJoinDropsUnmatched(t *testing.T) {
	rows, md := fixture()

	joined := Join(rows, md)
	if len(joined) != 8*5 {
		t.Fatalf("Expected %d joined rows, got %d", 8*5, len(joined))
	}
	for _, j := range joined {
		if j.Sample == "orphan" {
			t.Fatal("Sample without metadata survived the join")
		}
	}
}

func TestSplitExcludesOtherLabels(t *testing.T) {
	rows, md := fixture()

	g := Split(Join(rows, md))
	for _, pop := range cellfreq.Populations {
		if n := len(g.Responders[pop]); n != 3 {
			t.Errorf("%s: expected 3 responders, got %d", pop, n)
		}
		if n := len(g.NonResponders[pop]); n != 3 {
			t.Errorf("%s: expected 3 non-responders, got %d", pop, n)
		}
	}

	// u1 has a NULL response and is the only sample above 42% b_cell
	for _, v := range append(g.Responders[cellfreq.BCell], g.NonResponders[cellfreq.BCell]...) {
		if v > 42 {
			t.Errorf("Found an excluded sample's b_cell percentage %f", v)
		}
	}
}

func TestCompare(t *testing.T) {
	rows, md := fixture()

	results, _ := Compare(rows, md)
	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}

	for i, pop := range cellfreq.Populations {
		if results[i].CellType != pop {
			t.Errorf("Position %d: expected %s, got %s", i, pop, results[i].CellType)
		}
	}

	// Responders have strictly lower b_cell and strictly higher cd8 frequencies:
	// U is 0 and 9, and with n=3 vs 3 and no ties, the exact p is 0.1.
	b, _ := Find(results, cellfreq.BCell)
	if b.Statistic != 0 || math.Abs(b.PValue-0.1) > 1e-12 {
		t.Errorf("b_cell: expected U=0 p=0.1, got %+v", b)
	}
	cd8, _ := Find(results, cellfreq.CD8TCell)
	if cd8.Statistic != 9 || math.Abs(cd8.PValue-0.1) > 1e-12 {
		t.Errorf("cd8_t_cell: expected U=9 p=0.1, got %+v", cd8)
	}
	if b.Responders != 3 || b.NonResponders != 3 {
		t.Errorf("Expected group sizes 3 and 3, got %d and %d", b.Responders, b.NonResponders)
	}

	// nk_cell percentages are all tied at 20%
	nk, _ := Find(results, cellfreq.NKCell)
	if nk.PValue != 1 {
		t.Errorf("nk_cell: expected p=1 for identical groups, got %f", nk.PValue)
	}
}

func TestCompareEmptyGroup(t *testing.T) {
	rows, md := fixture()

	var onlyResponders []store.Metadata
	for _, m := range md {
		if m.Response.ValueOrZero() == Responder {
			onlyResponders = append(onlyResponders, m)
		}
	}

	results, _ := Compare(rows, onlyResponders)
	for _, r := range results {
		if !math.IsNaN(r.PValue) || !math.IsNaN(r.Statistic) {
			t.Errorf("%s: expected NaN results with no non-responders, got %+v", r.CellType, r)
		}
		if r.Significant() {
			t.Errorf("%s: NaN must not be significant", r.CellType)
		}
		if !strings.Contains(r.Verdict(), "No test") {
			t.Errorf("%s: unexpected verdict %q", r.CellType, r.Verdict())
		}
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	rows, md := fixture()
	dir := t.TempDir()

	drawn := make(map[string]int)
	draw := func(path, label string, responders, nonResponders []float64) error {
		if err := os.WriteFile(path, []byte(label), 0o644); err != nil {
			return err
		}
		drawn[filepath.Base(path)] = len(responders) + len(nonResponders)
		return nil
	}

	results, err := Run(dir, rows, md, draw)
	if err != nil {
		t.Fatal(err)
	}

	for _, pop := range cellfreq.Populations {
		name := pop.BoxplotFilename("png")
		if drawn[name] != 6 {
			t.Errorf("%s: expected 6 plotted values, got %d", name, drawn[name])
		}
	}

	got, err := ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(results) {
		t.Fatalf("Expected %d persisted results, got %d", len(results), len(got))
	}
	for i := range got {
		if got[i].CellType != results[i].CellType || got[i].PValue != results[i].PValue {
			t.Errorf("Row %d: wrote %+v, read back %+v", i, results[i], got[i])
		}
	}
}

func TestVerdict(t *testing.T) {
	sig := Result{CellType: cellfreq.CD4TCell, PValue: 0.0123}
	if !strings.Contains(sig.Verdict(), "reject the null hypothesis") || !strings.Contains(sig.Verdict(), "0.0123") {
		t.Errorf("Unexpected verdict: %s", sig.Verdict())
	}

	ns := Result{CellType: cellfreq.Monocyte, PValue: 0.05}
	if ns.Significant() {
		t.Error("p=0.05 is not below the threshold")
	}
	if !strings.Contains(ns.Verdict(), "fail to reject") || !strings.Contains(ns.Verdict(), "Monocytes") {
		t.Errorf("Unexpected verdict: %s", ns.Verdict())
	}
}
