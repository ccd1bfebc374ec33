package subset

import (
	"path/filepath"
	"testing"

	"github.com/carbocation/cellfreq/store"
	"gopkg.in/guregu/null.v3"
)

func fixture() []store.Metadata {
	return []store.Metadata{
		{Project: "prj1", Subject: "sbj1", Age: null.IntFrom(57), Sex: null.StringFrom("M"), Condition: "melanoma", Treatment: "miraclib", Response: null.StringFrom("yes"), Sample: "s1", SampleType: "PBMC"},
		{Project: "prj1", Subject: "sbj2", Age: null.IntFrom(61), Sex: null.StringFrom("F"), Condition: "melanoma", Treatment: "miraclib", Response: null.StringFrom("no"), Sample: "s3", SampleType: "PBMC"},
		{Project: "prj3", Subject: "sbj5", Sex: null.StringFrom("F"), Condition: "melanoma", Treatment: "miraclib", Response: null.StringFrom("yes"), Sample: "s9", SampleType: "PBMC"},
		{Project: "prj3", Subject: "sbj6", Condition: "melanoma", Treatment: "miraclib", Sample: "s10", SampleType: "PBMC"},
	}
}

func TestTally(t *testing.T) {
	b := Tally(fixture())

	expect := func(group string, got map[string]int, want map[string]int) {
		if len(got) != len(want) {
			t.Errorf("%s: expected %v, got %v", group, want, got)
			return
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("%s[%q]: expected %d, got %d", group, k, v, got[k])
			}
		}
	}

	expect("project", b.ByProject, map[string]int{"prj1": 2, "prj3": 2})
	expect("response", b.ByResponse, map[string]int{"yes": 2, "no": 1, "": 1})
	expect("sex", b.BySex, map[string]int{"M": 1, "F": 2, "": 1})
}

func TestBreakdownRowsOrdered(t *testing.T) {
	rows := Tally(fixture()).Rows()

	want := []BreakdownRow{
		{"project", "prj1", 2},
		{"project", "prj3", 2},
		{"response", "", 1},
		{"response", "no", 1},
		{"response", "yes", 2},
		{"sex", "", 1},
		{"sex", "F", 2},
		{"sex", "M", 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d: %+v", len(want), len(rows), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}
}

func TestReportWritesVerbatimCopy(t *testing.T) {
	dir := t.TempDir()
	in := fixture()

	if _, err := Report(dir, "melanoma_miraclib_baseline", in); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(filepath.Join(dir, "melanoma_miraclib_baseline.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(in) {
		t.Fatalf("Expected %d rows, got %d", len(in), len(got))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("Row %d: wrote %+v, read %+v", i, in[i], got[i])
		}
	}
}
