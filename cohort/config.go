// Package cohort describes which samples are compared and reported: the
// responder comparison filter and the subset report, plus where inputs and
// outputs live.
package cohort

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/pfx"
)

type Config struct {
	ConfigPath string            `json:"-"`
	Source     string            `json:"source"`
	Database   string            `json:"database"`
	OutputDir  string            `json:"output"`
	Comparison map[string]string `json:"comparison"`
	Subset     map[string]string `json:"subset"`
	SubsetName string            `json:"subset_name"`
}

// Default is the melanoma/miraclib PBMC cohort, with the baseline samples as
// the subset.
func Default() Config {
	return Config{
		Source:    "cell-count.csv",
		Database:  store.DefaultPath,
		OutputDir: ".",
		Comparison: map[string]string{
			"condition":   "melanoma",
			"treatment":   "miraclib",
			"sample_type": "PBMC",
		},
		Subset: map[string]string{
			"condition":           "melanoma",
			"treatment":           "miraclib",
			"sample_type":         "PBMC",
			"time_from_treatment": "0",
		},
		SubsetName: "melanoma_miraclib_baseline",
	}
}

// ParseJSONConfigFromPath overlays the JSON file at path on top of Default.
// Filter maps present in the file replace the defaults wholesale.
func ParseJSONConfigFromPath(path string) (Config, error) {
	out := Config{}

	f, err := os.Open(path)
	if err != nil {
		return Default(), pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
		return Default(), pfx.Err(err)
	}

	out = out.withDefaults()
	out.ConfigPath = path

	for _, p := range []*string{&out.ConfigPath, &out.Source, &out.Database, &out.OutputDir} {
		if *p, err = cellfreq.ExpandHome(*p); err != nil {
			return out, err
		}
	}

	return out, out.Validate()
}

// withDefaults fills every field the file left out. An explicitly empty
// filter stays empty so that Validate can reject it.
func (c Config) withDefaults() Config {
	def := Default()

	if c.Source == "" {
		c.Source = def.Source
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.Comparison == nil {
		c.Comparison = def.Comparison
	}
	if c.Subset == nil {
		c.Subset = def.Subset
	}
	if c.SubsetName == "" {
		c.SubsetName = def.SubsetName
	}

	return c
}

var subsetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validate checks that both filters name known fields and that the subset
// name is usable as a file name.
func (c Config) Validate() error {
	if _, err := c.ComparisonPredicates(); err != nil {
		return fmt.Errorf("comparison filter: %w", err)
	}
	if _, err := c.SubsetPredicates(); err != nil {
		return fmt.Errorf("subset filter: %w", err)
	}
	if !subsetNamePattern.MatchString(c.SubsetName) {
		return errInvalidSubsetName(c.SubsetName)
	}

	return nil
}

func (c Config) ComparisonPredicates() ([]store.Predicate, error) {
	return nonEmptyPredicates(c.Comparison)
}

func (c Config) SubsetPredicates() ([]store.Predicate, error) {
	return nonEmptyPredicates(c.Subset)
}

func nonEmptyPredicates(m map[string]string) ([]store.Predicate, error) {
	preds, err := store.ParsePredicates(m)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, store.ErrNoPredicates
	}

	return preds, nil
}

type errInvalidSubsetName string

func (e errInvalidSubsetName) Error() string {
	return fmt.Sprintf("subset name %q must only contain letters, digits, '.', '_' or '-'", string(e))
}
