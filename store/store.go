// Package store keeps projects, subjects and samples in a SQLite database and
// answers the read queries the summary, comparison and subset reports need.
package store

import (
	"fmt"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is where the database lives when no path is configured.
const DefaultPath = "database.db"

type Store struct {
	db   *sqlx.DB
	Path string
}

// Open connects to (creating if needed) the SQLite database at path with
// foreign keys enforced, and creates any missing tables.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("open %s: %w", path, err))
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(fmt.Errorf("create schema in %s: %w", path, err))
	}

	return &Store{db: db, Path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// With opens the store, runs fn, and closes the store whether or not fn
// succeeded.
func With(path string, fn func(*Store) error) (err error) {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = pfx.Err(cerr)
		}
	}()

	return fn(s)
}

// LoadStats counts what a load saw and what it actually inserted. Rows whose
// primary key already existed are counted as read but not inserted.
type LoadStats struct {
	Rows             int
	ProjectsInserted int64
	SubjectsInserted int64
	SamplesInserted  int64
}

func (l LoadStats) String() string {
	return fmt.Sprintf("%d rows read; inserted %d projects, %d subjects, %d samples", l.Rows, l.ProjectsInserted, l.SubjectsInserted, l.SamplesInserted)
}

// Load inserts every record's project, subject and sample, in that order,
// skipping any whose primary key is already present. All rows are written in
// one transaction.
func (s *Store) Load(records []cellfreq.Record) (LoadStats, error) {
	stats := LoadStats{}

	tx, err := s.db.Beginx()
	if err != nil {
		return stats, pfx.Err(err)
	}
	defer tx.Rollback()

	projectStmt, err := tx.Preparex(insertProject)
	if err != nil {
		return stats, pfx.Err(err)
	}
	defer projectStmt.Close()

	subjectStmt, err := tx.Preparex(insertSubject)
	if err != nil {
		return stats, pfx.Err(err)
	}
	defer subjectStmt.Close()

	sampleStmt, err := tx.Preparex(insertSample)
	if err != nil {
		return stats, pfx.Err(err)
	}
	defer sampleStmt.Close()

	for _, rec := range records {
		res, err := projectStmt.Exec(rec.Project)
		if err != nil {
			return stats, pfx.Err(fmt.Errorf("project %s: %w", rec.Project, err))
		}
		stats.ProjectsInserted += affected(res)

		res, err = subjectStmt.Exec(rec.Subject, rec.Project, rec.Age, rec.Sex, rec.Condition, rec.Treatment, rec.Response)
		if err != nil {
			return stats, pfx.Err(fmt.Errorf("subject %s: %w", rec.Subject, err))
		}
		stats.SubjectsInserted += affected(res)

		res, err = sampleStmt.Exec(rec.Sample, rec.Subject, rec.TimeFromTreatmentStart, rec.SampleType,
			rec.BCell, rec.CD8TCell, rec.CD4TCell, rec.NKCell, rec.Monocyte)
		if err != nil {
			return stats, pfx.Err(fmt.Errorf("sample %s: %w", rec.Sample, err))
		}
		stats.SamplesInserted += affected(res)

		stats.Rows++
	}

	if err := tx.Commit(); err != nil {
		return stats, pfx.Err(err)
	}

	return stats, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func affected(res rowsAffecter) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}

	return n
}

// RowCounts is the number of rows in each table.
type RowCounts struct {
	Projects int `db:"projects"`
	Subjects int `db:"subjects"`
	Samples  int `db:"samples"`
}

func (s *Store) RowCounts() (RowCounts, error) {
	out := RowCounts{}
	err := s.db.Get(&out, `SELECT
		(SELECT COUNT(*) FROM projects) AS projects,
		(SELECT COUNT(*) FROM subjects) AS subjects,
		(SELECT COUNT(*) FROM samples) AS samples`)

	return out, pfx.Err(err)
}

// SampleCount holds the five population counts of one sample.
type SampleCount struct {
	Sample   string `db:"sample_id"`
	BCell    int64  `db:"b_cell_count"`
	CD8TCell int64  `db:"cd8_t_cell_count"`
	CD4TCell int64  `db:"cd4_t_cell_count"`
	NKCell   int64  `db:"nk_cell_count"`
	Monocyte int64  `db:"monocyte_count"`
}

// Counts returns the five counts in cellfreq.Populations order.
func (c SampleCount) Counts() [5]int64 {
	return [5]int64{c.BCell, c.CD8TCell, c.CD4TCell, c.NKCell, c.Monocyte}
}

// SampleCounts reads every sample, ordered by sample ID.
func (s *Store) SampleCounts() ([]SampleCount, error) {
	out := []SampleCount{}
	if err := s.db.Select(&out, selectSampleCounts); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
