package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

const sampleYAML = `
entities:
  - id: zeus
    slug: zeus
    name: Zeus
  - id: hera
    slug: hera
    name: Héra
    culture: Grecque
  - id: odin
    slug: odin
    name: Odin
    culture: Nordique
relations:
  - source_id: zeus
    target_id: hera
    type: consort
    source_texts:
      - author: Hésiode
        work: Théogonie
  - source_id: zeus
    target_id: missing
    type: parent
`

// =============================================================================
// Discovery
// =============================================================================

func TestFindDatasetPath_PrefersJSONExport(t *testing.T) {
	t.Setenv(loader.DataPathEnvVar, "")
	root := t.TempDir()
	dir := filepath.Join(root, "public", "data")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "genealogie.yaml"), []byte(sampleYAML), 0o644)
	os.WriteFile(filepath.Join(dir, "genealogie.json"), []byte(`{"entities":[]}`), 0o644)

	path, err := loader.FindDatasetPath(root)
	if err != nil {
		t.Fatalf("FindDatasetPath: %v", err)
	}
	if filepath.Base(path) != "genealogie.json" {
		t.Errorf("expected JSON export to win, got %s", path)
	}
}

func TestFindDatasetPath_SkipsEmptyFiles(t *testing.T) {
	t.Setenv(loader.DataPathEnvVar, "")
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "data"), 0o755)
	os.WriteFile(filepath.Join(root, "data", "genealogie.json"), nil, 0o644)

	_, err := loader.FindDatasetPath(root)
	if !errors.Is(err, loader.ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset, got %v", err)
	}
}

func TestFindDatasetPath_EnvOverride(t *testing.T) {
	t.Setenv(loader.DataPathEnvVar, "https://example.test/genealogie.json")
	path, err := loader.FindDatasetPath(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !loader.IsRemote(path) {
		t.Errorf("expected env URL, got %s", path)
	}
}

// =============================================================================
// Decoding
// =============================================================================

func TestDecodeJSON_ToleratesMissingFields(t *testing.T) {
	ds, err := loader.DecodeJSON(strings.NewReader(`{"entities":[{"id":"grecque-zeus","slug":"zeus","name":"Zeus","culture":"grecque"}]}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(ds.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(ds.Entities))
	}
	if ds.Relations == nil {
		t.Error("absent relations should decode to an empty slice")
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	if _, err := loader.DecodeJSON(strings.NewReader(`{"entities":[`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestDecodeYAML_NormalisesIDsAndRelations(t *testing.T) {
	ds, err := loader.DecodeYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}

	wantIDs := []string{"grecque-zeus", "grecque-hera", "nordique-odin"}
	for i, want := range wantIDs {
		if ds.Entities[i].ID != want {
			t.Errorf("entity %d id = %q, want %q", i, ds.Entities[i].ID, want)
		}
	}
	if ds.Entities[1].Culture != "grecque" {
		t.Errorf("culture should be lower-cased, got %q", ds.Entities[1].Culture)
	}

	consort := ds.Relations[0]
	if consort.SourceID != "grecque-zeus" || consort.TargetID != "grecque-hera" {
		t.Errorf("relation not remapped: %+v", consort)
	}
	if got := consort.SourceTexts[0].String(); got != "Hésiode, Théogonie" {
		t.Errorf("source text = %q", got)
	}

	dangling := ds.Relations[1]
	if dangling.TargetID != "missing" {
		t.Errorf("unknown endpoint should be kept verbatim, got %q", dangling.TargetID)
	}
	if dangling.SourceTexts == nil {
		t.Error("source_texts should default to an empty slice")
	}
}

func TestDecodeYAML_EmptyDocument(t *testing.T) {
	ds, err := loader.DecodeYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty YAML should not fail: %v", err)
	}
	if len(ds.Entities) != 0 || ds.Relations == nil {
		t.Errorf("unexpected dataset %+v", ds)
	}
}

func TestNormalize_SlugFallsBackToID(t *testing.T) {
	ds := loader.Normalize([]loader.RawEntity{{ID: "athena", Name: "Athéna"}}, nil)
	if ds.Entities[0].Slug != "athena" || ds.Entities[0].ID != "grecque-athena" {
		t.Errorf("unexpected entity %+v", ds.Entities[0])
	}
}

func TestLoadDatasetFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "genealogie.yaml")
	os.WriteFile(yamlPath, []byte(sampleYAML), 0o644)
	ds, err := loader.LoadDatasetFromFile(yamlPath)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(ds.Entities) != 3 {
		t.Errorf("expected 3 entities, got %d", len(ds.Entities))
	}

	txt := filepath.Join(dir, "genealogie.txt")
	os.WriteFile(txt, []byte("x"), 0o644)
	if _, err := loader.LoadDatasetFromFile(txt); !errors.Is(err, loader.ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource, got %v", err)
	}

	if _, err := loader.LoadDatasetFromFile(filepath.Join(dir, "absent.json")); !errors.Is(err, loader.ErrNoDataset) {
		t.Errorf("expected ErrNoDataset, got %v", err)
	}
}

// =============================================================================
// Export
// =============================================================================

func TestExportJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "genealogie.yaml")
	os.WriteFile(src, []byte(sampleYAML), 0o644)
	out := filepath.Join(dir, "public", "data", "genealogie.json")

	exported, err := loader.ExportJSON(src, out)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	loaded, err := loader.LoadDatasetFromFile(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Entities) != len(exported.Entities) || len(loaded.Relations) != len(exported.Relations) {
		t.Errorf("reloaded %d/%d, exported %d/%d",
			len(loaded.Entities), len(loaded.Relations), len(exported.Entities), len(exported.Relations))
	}
	if loaded.Relations[0].Type != model.RelConsort {
		t.Errorf("relation type lost: %q", loaded.Relations[0].Type)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "public", "data", ".genealogie-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

// =============================================================================
// Remote fetch
// =============================================================================

func TestFetchDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			w.Write([]byte(`{"entities":[{"id":"grecque-zeus","slug":"zeus","name":"Zeus","culture":"grecque"}],"relations":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ds, err := loader.FetchDataset(context.Background(), srv.Client(), srv.URL+"/ok.json")
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if len(ds.Entities) != 1 {
		t.Errorf("expected 1 entity, got %d", len(ds.Entities))
	}

	_, err = loader.FetchDataset(context.Background(), srv.Client(), srv.URL+"/missing.json")
	if !errors.Is(err, loader.ErrHTTPStatus) {
		t.Errorf("expected ErrHTTPStatus, got %v", err)
	}
}

func TestFetchDataset_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.FetchDataset(ctx, nil, "http://127.0.0.1:1/genealogie.json"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
