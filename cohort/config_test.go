package cohort

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/cellfreq/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cohort.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	preds, err := c.SubsetPredicates()
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 4 {
		t.Fatalf("Expected 4 subset predicates, got %d", len(preds))
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"database": "other.db",
		"comparison": {"condition": "carcinoma"},
		"subset_name": "carcinoma_all"
	}`)

	c, err := ParseJSONConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if c.Database != "other.db" {
		t.Errorf("Expected database other.db, got %s", c.Database)
	}
	if c.Source != "cell-count.csv" {
		t.Errorf("Expected the default source to survive, got %s", c.Source)
	}
	if len(c.Comparison) != 1 || c.Comparison["condition"] != "carcinoma" {
		t.Errorf("Expected the comparison filter to be replaced, got %v", c.Comparison)
	}
	if len(c.Subset) != 4 {
		t.Errorf("Expected the default subset filter, got %v", c.Subset)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `{"comparison": {"favorite_color": "blue"}}`)

	if _, err := ParseJSONConfigFromPath(path); !errors.Is(err, store.ErrUnknownField) {
		t.Fatalf("Expected ErrUnknownField, got %v", err)
	}
}

func TestParseRejectsEmptyFilter(t *testing.T) {
	path := writeConfig(t, `{"subset": {}}`)

	if _, err := ParseJSONConfigFromPath(path); !errors.Is(err, store.ErrNoPredicates) {
		t.Fatalf("Expected ErrNoPredicates, got %v", err)
	}
}

func TestParseRejectsBadSubsetName(t *testing.T) {
	path := writeConfig(t, `{"subset_name": "../escape"}`)

	if _, err := ParseJSONConfigFromPath(path); err == nil {
		t.Fatal("Expected an invalid subset name to be rejected")
	}
}
