package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// DataPathEnvVar overrides dataset discovery.
const DataPathEnvVar = "PANTHEON_DATA"

// DefaultFetchTimeout bounds a remote dataset fetch.
const DefaultFetchTimeout = 10 * time.Second

// maxDatasetBytes caps how much of a dataset body is read.
const maxDatasetBytes = 64 << 20

// PreferredDataNames defines the lookup order inside a data directory.
// The exported JSON is the runtime contract; the YAML is the raw source.
var PreferredDataNames = []string{"genealogie.json", "genealogie.db", "genealogie.yaml", "genealogie.yml"}

// DataDirs are searched, relative to the project root, when no path is given.
var DataDirs = []string{filepath.Join("public", "data"), "data"}

var (
	// ErrNoDataset is returned when discovery finds nothing to load.
	ErrNoDataset = errors.New("no genealogy dataset found")
	// ErrUnsupportedSource is returned for paths with an unknown extension.
	ErrUnsupportedSource = errors.New("unsupported dataset source")
	// ErrHTTPStatus wraps non-success responses of a remote fetch.
	ErrHTTPStatus = errors.New("dataset fetch returned non-success status")
)

// FindDatasetPath resolves the dataset to load. It honours PANTHEON_DATA,
// then looks for the preferred file names in DataDirs below root (or cwd).
func FindDatasetPath(root string) (string, error) {
	if env := strings.TrimSpace(os.Getenv(DataPathEnvVar)); env != "" {
		return env, nil
	}
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	for _, dir := range DataDirs {
		for _, name := range PreferredDataNames {
			path := filepath.Join(root, dir, name)
			// Skip empty files; a half-written export is not a dataset.
			if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w below %s", ErrNoDataset, root)
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// LoadDatasetFromFile reads a JSON export or a raw YAML source from disk.
func LoadDatasetFromFile(path string) (model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Dataset{}, fmt.Errorf("%w at %s", ErrNoDataset, path)
		}
		return model.Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(bytes.NewReader(data))
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	default:
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
}

// DecodeJSON decodes the exported dataset document.
// Absent arrays decode to empty slices.
func DecodeJSON(r io.Reader) (model.Dataset, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	var ds model.Dataset
	dec := json.NewDecoder(io.LimitReader(r, maxDatasetBytes))
	if err := dec.Decode(&ds); err != nil {
		return model.Dataset{}, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return withEmptySlices(ds), nil
}

// FetchDataset performs the single remote GET of a dataset. A non-2xx
// response or a body that does not parse is an error; there is no retry.
func FetchDataset(ctx context.Context, client *http.Client, url string) (model.Dataset, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("building dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("fetching dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	ds, err := DecodeJSON(resp.Body)
	if err != nil {
		return model.Dataset{}, err
	}
	debug.LogTiming("fetch "+url, time.Since(start))
	return ds, nil
}

func withEmptySlices(ds model.Dataset) model.Dataset {
	if ds.Entities == nil {
		ds.Entities = []model.Entity{}
	}
	if ds.Relations == nil {
		ds.Relations = []model.Relation{}
	}
	return ds
}
