package cellfreq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"
)

// Record is one row of the cell-count table: a sample, the subject it came
// from, and the project that subject is enrolled in.
type Record struct {
	Project                string      `csv:"project"`
	Subject                string      `csv:"subject"`
	Age                    null.Int    `csv:"age"`
	Sex                    null.String `csv:"sex"`
	Condition              string      `csv:"condition"`
	Treatment              string      `csv:"treatment"`
	Response               null.String `csv:"response"`
	Sample                 string      `csv:"sample"`
	TimeFromTreatmentStart int64       `csv:"time_from_treatment_start"`
	SampleType             string      `csv:"sample_type"`
	BCell                  int64       `csv:"b_cell"`
	CD8TCell               int64       `csv:"cd8_t_cell"`
	CD4TCell               int64       `csv:"cd4_t_cell"`
	NKCell                 int64       `csv:"nk_cell"`
	Monocyte               int64       `csv:"monocyte"`
}

// RequiredColumns are the header names every source table must carry. Order
// does not matter.
var RequiredColumns = []string{
	"project", "subject", "age", "sex", "condition", "treatment", "response",
	"sample", "time_from_treatment_start", "sample_type",
	string(BCell), string(CD8TCell), string(CD4TCell), string(NKCell), string(Monocyte),
}

// Counts returns the five population counts in Populations order.
func (r Record) Counts() [5]int64 {
	return [5]int64{r.BCell, r.CD8TCell, r.CD4TCell, r.NKCell, r.Monocyte}
}

// ReadRecords parses a delimited table with a header row. The delimiter is
// detected from the data. Missing columns and unparseable numbers are errors.
func ReadRecords(r io.Reader) ([]Record, error) {
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < 2*delimiterSniffBytes {
		br = bufio.NewReaderSize(r, 2*delimiterSniffBytes)
	}

	delim := DetermineDelimiter(br)

	if err := checkHeader(br, delim); err != nil {
		return nil, err
	}

	fileCSV := csv.NewReader(br)
	fileCSV.Comma = delim

	records := []Record{}
	if err := gocsv.UnmarshalCSV(fileCSV, &records); err != nil {
		return nil, pfx.Err(err)
	}

	return records, nil
}

// ReadRecordsFrom opens path (local, compressed, or gs://) and parses it.
func ReadRecordsFrom(ctx context.Context, path string, client *storage.Client) ([]Record, error) {
	src, err := OpenSource(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	records, err := ReadRecords(src.Reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}

func checkHeader(br *bufio.Reader, delim rune) error {
	head, err := br.Peek(delimiterSniffBytes)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return pfx.Err(err)
	}

	if nl := bytes.IndexByte(head, '\n'); nl >= 0 {
		head = head[:nl]
	}

	hr := csv.NewReader(bytes.NewReader(head))
	hr.Comma = delim
	header, err := hr.Read()
	if err != nil {
		return pfx.Err(fmt.Errorf("Header parsing error: %v", err))
	}

	present := make(map[string]struct{}, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = struct{}{}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, exists := present[col]; !exists {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("source table is missing required columns: %s", strings.Join(missing, ", "))
	}

	return nil
}
