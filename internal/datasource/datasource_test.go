package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

func sampleDataset() model.Dataset {
	return model.Dataset{
		Entities: []model.Entity{
			{ID: "grecque-zeus", Slug: "zeus", Name: "Zeus", Culture: "grecque"},
			{ID: "grecque-hera", Slug: "hera", Name: "Héra", Culture: "grecque"},
		},
		Relations: []model.Relation{
			{SourceID: "grecque-zeus", TargetID: "grecque-hera", Type: model.RelConsort, Variant: "Homère",
				SourceTexts: []model.RelationSource{{Author: "Hésiode", Work: "Théogonie", Note: "v. 921"}}},
			{SourceID: "grecque-zeus", TargetID: "grecque-hera", Type: model.RelSibling},
		},
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genealogie.db")
	want := sampleDataset()
	if err := WriteSQLite(context.Background(), want, path); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}

	src, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if src.Type != SourceTypeSQLite {
		t.Fatalf("type = %s, want sqlite", src.Type)
	}

	r, err := NewSQLiteReader(src)
	if err != nil {
		t.Fatalf("NewSQLiteReader: %v", err)
	}
	defer r.Close()

	got, err := r.LoadDataset()
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(got.Entities) != 2 || got.Entities[1].Name != "Héra" {
		t.Errorf("entities = %+v", got.Entities)
	}
	if len(got.Relations) != 2 {
		t.Fatalf("relations = %+v", got.Relations)
	}
	if got.Relations[0].Variant != "Homère" || got.Relations[0].SourceTexts[0].Note != "v. 921" {
		t.Errorf("relation metadata lost: %+v", got.Relations[0])
	}
	if got.Relations[1].Variant != "" || got.Relations[1].SourceTexts == nil {
		t.Errorf("optional fields should be empty, not nil: %+v", got.Relations[1])
	}
}

func TestWriteSQLiteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genealogie.db")
	ctx := context.Background()
	if err := WriteSQLite(ctx, sampleDataset(), path); err != nil {
		t.Fatal(err)
	}
	if err := WriteSQLite(ctx, model.Dataset{Entities: sampleDataset().Entities[:1]}, path); err != nil {
		t.Fatalf("second write: %v", err)
	}
	res, err := LoadFromSource(mustDetect(t, path))
	if err != nil {
		t.Fatal(err)
	}
	if res.Source.EntityCount != 1 || res.Source.RelationCount != 0 {
		t.Errorf("expected fresh database, got %s", res.Source)
	}
}

func TestDetect(t *testing.T) {
	src, err := Detect("https://example.test/genealogie.json")
	if err != nil || src.Type != SourceTypeHTTP {
		t.Errorf("remote: %+v, %v", src, err)
	}
	if _, err := Detect("genealogie.csv"); !errors.Is(err, loader.ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource, got %v", err)
	}
	if _, err := Detect(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected stat error for missing file")
	}
}

func TestDiscoverSourcesPrefersFreshest(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	os.MkdirAll(dataDir, 0o755)

	yamlPath := filepath.Join(dataDir, "genealogie.yaml")
	os.WriteFile(yamlPath, []byte("entities:\n  - id: zeus\n    slug: zeus\n    name: Zeus\n"), 0o644)
	jsonPath := filepath.Join(dataDir, "genealogie.json")
	os.WriteFile(jsonPath, []byte(`{"entities":[{"id":"grecque-zeus","slug":"zeus","name":"Zeus","culture":"grecque"}],"relations":[]}`), 0o644)
	emptyDB := filepath.Join(dataDir, "genealogie.db")
	os.WriteFile(emptyDB, nil, 0o644)

	old := time.Now().Add(-time.Hour)
	os.Chtimes(jsonPath, old, old)

	var logs []string
	sources, err := DiscoverSources(DiscoveryOptions{
		Root:                   root,
		ValidateAfterDiscovery: true,
		Logger:                 func(msg string) { logs = append(logs, msg) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected empty db to be filtered, got %v", sources)
	}
	if sources[0].Type != SourceTypeYAML {
		t.Errorf("freshest source should win, got %s", sources[0].Type)
	}
	if len(logs) == 0 {
		t.Error("expected discovery log messages")
	}

	best, err := SelectBestSource(sources)
	if err != nil || best.Path != yamlPath {
		t.Errorf("SelectBestSource = %v, %v", best, err)
	}
}

func TestSelectBestSourceNone(t *testing.T) {
	if _, err := SelectBestSource(nil); !errors.Is(err, loader.ErrNoDataset) {
		t.Errorf("expected ErrNoDataset, got %v", err)
	}
}

func TestLoadReportsExportDrift(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "genealogie.yaml"),
		[]byte("entities:\n  - {id: zeus, slug: zeus, name: Zeus}\n  - {id: hera, slug: hera, name: Héra}\n"), 0o644)
	os.WriteFile(filepath.Join(dataDir, "genealogie.json"),
		[]byte(`{"entities":[{"id":"grecque-zeus","slug":"zeus","name":"Zeus","culture":"grecque"}]}`), 0o644)

	res, err := Load(context.Background(), LoadOptions{Root: root})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Drift == nil {
		t.Fatal("expected drift between YAML and JSON export")
	}
	if len(res.Drift.MissingInB) != 1 || res.Drift.MissingInB[0] != "grecque-hera" {
		t.Errorf("unexpected drift %+v", res.Drift)
	}
	if !strings.Contains(res.Drift.Summary(), "grecque-hera") {
		t.Errorf("summary should name the missing entity:\n%s", res.Drift.Summary())
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, LoadOptions{Path: "x.json"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDetectInconsistenciesMatch(t *testing.T) {
	d := DetectInconsistencies(sampleDataset(), sampleDataset(), "a", "b")
	if d.HasInconsistencies() {
		t.Errorf("identical datasets reported as different: %s", d.Summary())
	}
	if !strings.HasPrefix(d.Summary(), "Sources match") {
		t.Errorf("unexpected summary %q", d.Summary())
	}
}

func mustDetect(t *testing.T, path string) DataSource {
	t.Helper()
	src, err := Detect(path)
	if err != nil {
		t.Fatal(err)
	}
	return src
}
