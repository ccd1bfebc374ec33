package summary

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/store"
)

func TestSummarizeExample(t *testing.T) {
	rows := Summarize([]store.SampleCount{
		{Sample: "S1", BCell: 10, CD8TCell: 20, CD4TCell: 30, NKCell: 20, Monocyte: 20},
	})

	want := []Row{
		{"S1", 100, cellfreq.BCell, 10, 10},
		{"S1", 100, cellfreq.CD8TCell, 20, 20},
		{"S1", 100, cellfreq.CD4TCell, 30, 30},
		{"S1", 100, cellfreq.NKCell, 20, 20},
		{"S1", 100, cellfreq.Monocyte, 20, 20},
	}

	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}
}

func TestSummarizeZeroTotal(t *testing.T) {
	rows := Summarize([]store.SampleCount{{Sample: "S2"}})

	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.TotalCount != 0 || r.Percentage != 0 || math.IsNaN(r.Percentage) {
			t.Errorf("Expected a zero row, got %+v", r)
		}
	}
}

func TestPercentagesSumTo100(t *testing.T) {
	counts := []store.SampleCount{
		{Sample: "a", BCell: 1, CD8TCell: 2, CD4TCell: 3, NKCell: 4, Monocyte: 5},
		{Sample: "b", BCell: 36000, CD8TCell: 1, CD4TCell: 0, NKCell: 7, Monocyte: 9999},
		{Sample: "c", BCell: 1, CD8TCell: 1, CD4TCell: 1, NKCell: 0, Monocyte: 0},
		{Sample: "d"},
	}

	rows := Summarize(counts)
	if len(rows) != 5*len(counts) {
		t.Fatalf("Expected %d rows, got %d", 5*len(counts), len(rows))
	}

	sums := make(map[string]float64)
	totals := make(map[string]int64)
	for _, r := range rows {
		sums[r.Sample] += r.Percentage
		totals[r.Sample] = r.TotalCount
	}

	for sample, sum := range sums {
		if totals[sample] == 0 {
			if sum != 0 {
				t.Errorf("%s: expected 0 for an empty sample, got %f", sample, sum)
			}
			continue
		}
		if math.Abs(sum-100) > 1e-9 {
			t.Errorf("%s: percentages sum to %.12f", sample, sum)
		}
	}
}

func TestWriteAndReadFile(t *testing.T) {
	rows := Summarize([]store.SampleCount{
		{Sample: "S1", BCell: 10, CD8TCell: 20, CD4TCell: 30, NKCell: 20, Monocyte: 20},
		{Sample: "S2"},
	})

	path := filepath.Join(t.TempDir(), Filename)
	if err := WriteFile(path, rows); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Fatalf("Expected %d rows, got %d", len(rows), len(got))
	}
	if got[2] != rows[2] {
		t.Errorf("Expected %+v, got %+v", rows[2], got[2])
	}
}

func TestCache(t *testing.T) {
	calls := 0
	fail := false
	c := NewCache(func() ([]Row, error) {
		calls++
		if fail {
			return nil, errors.New("store unavailable")
		}
		return Summarize([]store.SampleCount{{Sample: "S1", BCell: 1}}), nil
	})

	for i := 0; i < 3; i++ {
		rows, err := c.Get()
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 5 {
			t.Fatalf("Expected 5 rows, got %d", len(rows))
		}
	}
	if calls != 1 {
		t.Fatalf("Expected 1 computation, got %d", calls)
	}

	c.Invalidate()
	fail = true
	if _, err := c.Get(); err == nil {
		t.Fatal("Expected the load error to surface")
	}

	fail = false
	if _, err := c.Get(); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("Expected failed loads not to be cached (3 computations), got %d", calls)
	}
}
