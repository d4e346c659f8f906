package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// ExportJSON reads the raw YAML source at yamlPath and writes the normalised
// runtime document to outPath, creating parent directories as needed.
// The write goes through a temp file so readers never see a partial export.
func ExportJSON(yamlPath, outPath string) (model.Dataset, error) {
	f, err := os.Open(yamlPath)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("opening dataset source: %w", err)
	}
	defer f.Close()

	ds, err := DecodeYAML(f)
	if err != nil {
		return model.Dataset{}, err
	}
	if err := WriteJSON(ds, outPath); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

// WriteJSON writes ds as indented JSON to outPath.
func WriteJSON(ds model.Dataset, outPath string) error {
	data, err := json.MarshalIndent(withEmptySlices(ds), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".genealogie-*.json")
	if err != nil {
		return fmt.Errorf("creating temp export: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing export: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalising export: %w", err)
	}
	return nil
}
