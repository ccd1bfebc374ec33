package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

var (
	ErrNoPredicates = errors.New("at least one predicate is required")
	ErrUnknownField = errors.New("unknown filter field")
)

// Field names a subject or sample attribute that can be filtered on.
type Field string

const (
	FieldProject           Field = "project"
	FieldSubject           Field = "subject"
	FieldAge               Field = "age"
	FieldSex               Field = "sex"
	FieldCondition         Field = "condition"
	FieldTreatment         Field = "treatment"
	FieldResponse          Field = "response"
	FieldSample            Field = "sample"
	FieldTimeFromTreatment Field = "time_from_treatment"
	FieldSampleType        Field = "sample_type"
)

// Only these columns ever reach the SQL text.
var fieldColumns = map[Field]string{
	FieldProject:           "subjects.prj_id",
	FieldSubject:           "subjects.subj_id",
	FieldAge:               "subjects.age",
	FieldSex:               "subjects.sex",
	FieldCondition:         "subjects.condition",
	FieldTreatment:         "subjects.treatment",
	FieldResponse:          "subjects.response",
	FieldSample:            "samples.sample_id",
	FieldTimeFromTreatment: "samples.time_from_treatment",
	FieldSampleType:        "samples.sample_type",
}

var fieldAliases = map[string]Field{
	"prj_id":                    FieldProject,
	"subj_id":                   FieldSubject,
	"sample_id":                 FieldSample,
	"time_from_treatment_start": FieldTimeFromTreatment,
}

// ParseField resolves a column name, including the source-file and database
// spellings, to a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := fieldColumns[Field(name)]; ok {
		return Field(name), nil
	}
	if f, ok := fieldAliases[name]; ok {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Predicate is a single equality condition. Values are always bound as
// parameters.
type Predicate struct {
	Field Field
	Value string
}

func Eq(f Field, value string) Predicate {
	return Predicate{Field: f, Value: value}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s=%s", p.Field, p.Value)
}

// ParsePredicates converts a column → value mapping into predicates, sorted
// by field so the generated SQL is stable.
func ParsePredicates(conditions map[string]string) ([]Predicate, error) {
	out := make([]Predicate, 0, len(conditions))
	for k, v := range conditions {
		f, err := ParseField(k)
		if err != nil {
			return nil, err
		}
		out = append(out, Predicate{Field: f, Value: v})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })

	return out, nil
}

// Metadata is one row of the subjects ⋈ samples join.
type Metadata struct {
	Project           string      `db:"prj_id" csv:"project"`
	Subject           string      `db:"subj_id" csv:"subject"`
	Age               null.Int    `db:"age" csv:"age"`
	Sex               null.String `db:"sex" csv:"sex"`
	Condition         string      `db:"condition" csv:"condition"`
	Treatment         string      `db:"treatment" csv:"treatment"`
	Response          null.String `db:"response" csv:"response"`
	Sample            string      `db:"sample_id" csv:"sample"`
	TimeFromTreatment int64       `db:"time_from_treatment" csv:"time_from_treatment"`
	SampleType        string      `db:"sample_type" csv:"sample_type"`
}

const selectMetadata = `SELECT subjects.prj_id, subjects.subj_id, subjects.age, subjects.sex,
	subjects.condition, subjects.treatment, subjects.response,
	samples.sample_id, samples.time_from_treatment, samples.sample_type
FROM subjects
JOIN samples ON subjects.subj_id = samples.subj_id`

// BuildFilter returns the SQL and bound arguments for the conjunction of
// preds.
func BuildFilter(preds ...Predicate) (string, []interface{}, error) {
	if len(preds) == 0 {
		return "", nil, ErrNoPredicates
	}

	clauses := make([]string, 0, len(preds))
	args := make([]interface{}, 0, len(preds))
	for _, p := range preds {
		col, ok := fieldColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownField, p.Field)
		}
		clauses = append(clauses, col+" = ?")
		args = append(args, p.Value)
	}

	query := selectMetadata + "\nWHERE " + strings.Join(clauses, " AND ") + "\nORDER BY samples.sample_id"

	return query, args, nil
}

// Filter returns the subject and sample attributes of every sample matching
// all of preds.
func (s *Store) Filter(preds ...Predicate) ([]Metadata, error) {
	query, args, err := BuildFilter(preds...)
	if err != nil {
		return nil, err
	}

	out := []Metadata{}
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
