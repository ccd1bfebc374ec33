package cellfreq

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const csvFixture = `project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte
prj1,sbj000,melanoma,57,M,miraclib,no,sample00000,PBMC,0,36000,24000,42000,6000,12000
prj1,sbj001,healthy,,F,none,,sample00001,PBMC,7,100,200,300,400,500
`

func TestReadRecords(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(csvFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.Project != "prj1" || r.Subject != "sbj000" || r.Sample != "sample00000" || r.SampleType != "PBMC" {
		t.Errorf("Unexpected identifiers %+v", r)
	}
	if !r.Age.Valid || r.Age.Int64 != 57 || r.Sex.String != "M" || r.Response.String != "no" {
		t.Errorf("Unexpected subject attributes %+v", r)
	}
	if r.Counts() != [5]int64{36000, 24000, 42000, 6000, 12000} {
		t.Errorf("Unexpected counts %v", r.Counts())
	}

	blank := records[1]
	if blank.Age.Valid || blank.Response.Valid {
		t.Errorf("Expected empty age and response to be NULL, got %+v", blank)
	}
	if blank.TimeFromTreatmentStart != 7 {
		t.Errorf("Expected time 7, got %d", blank.TimeFromTreatmentStart)
	}
}

func TestReadRecordsTabDelimited(t *testing.T) {
	tsv := strings.ReplaceAll(csvFixture, ",", "\t")

	records, err := ReadRecords(strings.NewReader(tsv))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].Monocyte != 500 {
		t.Fatalf("Unexpected records %+v", records)
	}
}

func TestReadRecordsMissingColumn(t *testing.T) {
	in := strings.Replace(csvFixture, "monocyte", "macrophage", 1)

	_, err := ReadRecords(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "monocyte") {
		t.Fatalf("Expected a missing monocyte column error, got %v", err)
	}
}

func TestReadRecordsBadNumber(t *testing.T) {
	in := strings.Replace(csvFixture, ",36000,", ",lots,", 1)

	if _, err := ReadRecords(strings.NewReader(in)); err == nil {
		t.Fatal("Expected an unparseable count to be an error")
	}
}

func TestReadRecordsFromGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(csvFixture)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "cell-count.csv.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenSource(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if src.DataType != DataTypeGzip {
		t.Errorf("Expected gzip, detected %v", src.DataType)
	}
	src.Close()

	records, err := ReadRecordsFrom(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
}

func TestDetectDataType(t *testing.T) {
	for _, v := range []struct {
		Head []byte
		Want DataType
	}{
		{[]byte{0x1f, 0x8b, 0x08, 0, 0, 0}, DataTypeGzip},
		{[]byte{0x50, 0x4b, 0x03, 0x04, 0, 0}, DataTypeZip},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, DataTypeXZ},
		{[]byte("BZh91A"), DataTypeBZip2},
		{[]byte("projec"), DataTypeNoCompression},
		{[]byte{0x1f}, DataTypeNoCompression},
	} {
		if got := DetectDataType(v.Head); got != v.Want {
			t.Errorf("%v: expected %v, got %v", v.Head, v.Want, got)
		}
	}
}

func TestOpenSourceBadGSPath(t *testing.T) {
	if _, err := OpenSource(context.Background(), "gs://bucket-only", nil); err == nil {
		t.Fatal("Expected an error for a gs:// path without an object")
	}
}
