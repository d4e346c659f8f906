package datasource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vanderheijden86/pantheon/pkg/debug"
	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/metrics"
	"github.com/vanderheijden86/pantheon/pkg/model"
)

// LoadOptions selects what Load reads.
type LoadOptions struct {
	// Path is a file path or URL. Empty means discover under Root.
	Path string
	// Root is the project root used for discovery (cwd if empty).
	Root string
	// Client is used for remote sources (a default client if nil).
	Client *http.Client
}

// Result is a loaded dataset and where it came from.
type Result struct {
	Dataset model.Dataset
	Source  DataSource
	// Drift is set when discovery found both a YAML source and a JSON export
	// that disagree, meaning the export needs regenerating.
	Drift *SourceDiff
}

// Load reads the dataset once. It never retries.
func Load(ctx context.Context, opts LoadOptions) (Result, error) {
	defer metrics.Timer(metrics.DatasetLoad)()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var (
		res Result
		err error
	)
	if opts.Path == "" {
		res, err = loadDiscovered(opts.Root)
	} else {
		res, err = loadPath(ctx, opts.Path, opts.Client)
	}
	if err != nil {
		return Result{}, err
	}

	debug.With("dataset loaded",
		"source", res.Source.Path,
		"type", res.Source.Type,
		"entities", len(res.Dataset.Entities),
		"relations", len(res.Dataset.Relations),
		"took", time.Since(start))
	return res, nil
}

func loadPath(ctx context.Context, path string, client *http.Client) (Result, error) {
	src, err := Detect(path)
	if err != nil {
		return Result{}, err
	}
	if src.Type == SourceTypeHTTP {
		ds, err := loader.FetchDataset(ctx, client, path)
		if err != nil {
			return Result{}, err
		}
		src.Valid = true
		return Result{Dataset: ds, Source: src}, nil
	}
	return LoadFromSource(src)
}

func loadDiscovered(root string) (Result, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		Root:                   root,
		ValidateAfterDiscovery: true,
		Logger:                 func(msg string) { debug.Log("%s", msg) },
	})
	if err != nil {
		return Result{}, err
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return Result{}, err
	}

	res, err := LoadFromSource(best)
	if err != nil {
		return Result{}, err
	}
	res.Drift = exportDrift(sources)
	return res, nil
}

// exportDrift compares the YAML source with the JSON export when both exist.
func exportDrift(sources []DataSource) *SourceDiff {
	var yamlSrc, jsonSrc *DataSource
	for i := range sources {
		switch sources[i].Type {
		case SourceTypeYAML:
			if yamlSrc == nil {
				yamlSrc = &sources[i]
			}
		case SourceTypeJSON:
			if jsonSrc == nil {
				jsonSrc = &sources[i]
			}
		}
	}
	if yamlSrc == nil || jsonSrc == nil {
		return nil
	}

	diff, err := CompareSources(*yamlSrc, *jsonSrc)
	if err != nil {
		debug.Log("export drift check failed: %v", err)
		return nil
	}
	if !diff.HasInconsistencies() {
		return nil
	}
	debug.Log("%s", diff.Summary())
	return diff
}

// LoadFromSource loads a local source, dispatching on its type.
func LoadFromSource(source DataSource) (Result, error) {
	ds, err := readLocal(source)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load %s source %s: %w", source.Type, source.Path, err)
	}
	source.Valid = true
	source.EntityCount = len(ds.Entities)
	source.RelationCount = len(ds.Relations)
	return Result{Dataset: ds, Source: source}, nil
}
