// Package datasource discovers, validates and selects the genealogy dataset
// among the JSON export, the raw YAML source, a SQLite copy or a remote URL.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeJSON is the exported runtime document (genealogie.json)
	SourceTypeJSON SourceType = "json"
	// SourceTypeYAML is the hand-edited source (genealogie.yaml)
	SourceTypeYAML SourceType = "yaml"
	// SourceTypeSQLite is a SQLite copy written by --export-sqlite
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeHTTP is a remote JSON document
	SourceTypeHTTP SourceType = "http"
)

// Priority values for source types (higher = more authoritative)
const (
	PriorityJSON   = 100
	PrioritySQLite = 80
	PriorityYAML   = 50
	PriorityHTTP   = 40
)

// DataSource represents a potential source of genealogy data
type DataSource struct {
	Type SourceType `json:"type"`
	// Path is a file path or an http(s) URL
	Path     string    `json:"path"`
	Priority int       `json:"priority"`
	ModTime  time.Time `json:"mod_time"`
	Size     int64     `json:"size"`
	// Valid is set by ValidateSource
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	EntityCount     int    `json:"entity_count"`
	RelationCount   int    `json:"relation_count"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, entities=%d, relations=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.EntityCount, s.RelationCount, status)
}

// Detect classifies path by scheme or extension and stats local files.
func Detect(path string) (DataSource, error) {
	if loader.IsRemote(path) {
		return DataSource{Type: SourceTypeHTTP, Path: path, Priority: PriorityHTTP}, nil
	}

	var src DataSource
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		src = DataSource{Type: SourceTypeJSON, Priority: PriorityJSON}
	case ".yaml", ".yml":
		src = DataSource{Type: SourceTypeYAML, Priority: PriorityYAML}
	case ".db", ".sqlite", ".sqlite3":
		src = DataSource{Type: SourceTypeSQLite, Priority: PrioritySQLite}
	default:
		return DataSource{}, fmt.Errorf("%w: %s", loader.ErrUnsupportedSource, path)
	}
	src.Path = path

	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("stat dataset %s: %w", path, err)
	}
	src.ModTime = info.ModTime()
	src.Size = info.Size()
	return src, nil
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Root is the project root (cwd if empty)
	Root string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps sources that failed validation
	IncludeInvalid bool
	// Logger receives progress messages when set
	Logger func(msg string)
}

// DiscoverSources finds every dataset file under the known data directories,
// freshest first, with priority breaking ties.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}

	root := opts.Root
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	var sources []DataSource
	for _, dir := range loader.DataDirs {
		for _, name := range loader.PreferredDataNames {
			path := filepath.Join(root, dir, name)
			src, err := Detect(path)
			if err != nil {
				continue
			}
			logf("Found %s source: %s (mod=%s)", src.Type, path, src.ModTime.Format(time.RFC3339))
			sources = append(sources, src)
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				logf("Validation failed for %s: %v", sources[i].Path, err)
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	logf("Discovered %d sources", len(sources))
	return sources, nil
}

// ValidateSource loads the source once and records counts or the failure.
// Remote sources are not validated here; that would cost a second fetch.
func ValidateSource(src *DataSource) error {
	if src.Type == SourceTypeHTTP {
		src.Valid = true
		return nil
	}
	if src.Size == 0 {
		src.Valid = false
		src.ValidationError = "empty file"
		return fmt.Errorf("%s: empty file", src.Path)
	}

	ds, err := readLocal(*src)
	if err != nil {
		src.Valid = false
		src.ValidationError = err.Error()
		return err
	}
	if len(ds.Entities) == 0 {
		src.Valid = false
		src.ValidationError = "no entities"
		return fmt.Errorf("%s: no entities", src.Path)
	}

	src.Valid = true
	src.ValidationError = ""
	src.EntityCount = len(ds.Entities)
	src.RelationCount = len(ds.Relations)
	return nil
}

// SelectBestSource returns the first valid source of an already sorted list.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, loader.ErrNoDataset
}

func readLocal(src DataSource) (model.Dataset, error) {
	switch src.Type {
	case SourceTypeJSON, SourceTypeYAML:
		return loader.LoadDatasetFromFile(src.Path)
	case SourceTypeSQLite:
		r, err := NewSQLiteReader(src)
		if err != nil {
			return model.Dataset{}, err
		}
		defer r.Close()
		return r.LoadDataset()
	default:
		return model.Dataset{}, fmt.Errorf("%w: %s", loader.ErrUnsupportedSource, src.Type)
	}
}
