package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// AssertEntityCount verifies the expected number of entities.
func AssertEntityCount(t *testing.T, ds model.Dataset, expected int) {
	t.Helper()
	if len(ds.Entities) != expected {
		t.Errorf("expected %d entities, got %d", expected, len(ds.Entities))
	}
}

// AssertUniqueKeys verifies that ids and slugs are unique.
func AssertUniqueKeys(t *testing.T, ds model.Dataset) {
	t.Helper()
	ids := make(map[string]bool)
	slugs := make(map[string]bool)
	for _, e := range ds.Entities {
		if ids[e.ID] {
			t.Errorf("duplicate entity id: %s", e.ID)
		}
		if slugs[e.Slug] {
			t.Errorf("duplicate entity slug: %s", e.Slug)
		}
		ids[e.ID], slugs[e.Slug] = true, true
	}
}

// AssertRelationsResolve verifies that every relation endpoint names an entity.
func AssertRelationsResolve(t *testing.T, ds model.Dataset) {
	t.Helper()
	ids := make(map[string]bool, len(ds.Entities))
	for _, e := range ds.Entities {
		ids[e.ID] = true
	}
	for i, r := range ds.Relations {
		if !ids[r.SourceID] || !ids[r.TargetID] {
			t.Errorf("relation %d (%s %s->%s) has an unknown endpoint", i, r.Type, r.SourceID, r.TargetID)
		}
	}
}

// AssertSlugs compares an ordered slug list.
func AssertSlugs(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

// AssertJSONEqual compares two values by their JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	exp, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	act, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(exp) != string(act) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", exp, act)
	}
}

// GoldenFile compares rendered output with a file under testdata.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Exists reports whether the golden file is present.
func (g *GoldenFile) Exists() bool {
	_, err := os.Stat(g.Path())
	return err == nil
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) == actual {
		return
	}
	expectedLines := strings.Split(string(expected), "\n")
	actualLines := strings.Split(actual, "\n")
	for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}
		if expLine != actLine {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
			return
		}
	}
	g.t.Errorf("golden file mismatch (length differs)")
}

// AssertJSON compares actual value as indented JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual interface{}) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}
	g.Assert(string(data) + "\n")
}

// WriteDatasetFile writes ds as JSON to path, creating directories.
func WriteDatasetFile(t *testing.T, path string, ds model.Dataset) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	data, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("failed to encode dataset: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

// EntityID builds the exported id of a greek entity.
func EntityID(slug string) string {
	return fmt.Sprintf("%s-%s", model.DefaultCulture, slug)
}
