//go:build ignore

// generate_testdata.go writes the genealogy fixtures used by benchmarks and
// manual runs.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/genealogy/olympus.json  (hand-written Olympian family)
//	testdata/genealogy/small.json    (100 entities)
//	testdata/genealogy/medium.json   (1000 entities)
//	testdata/genealogy/large.json    (5000 entities)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/pantheon/pkg/loader"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 100},
	{"medium", 1000},
	{"large", 5000},
}

func main() {
	outputDir := filepath.Join("testdata", "genealogy")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	write("olympus", testutil.Olympus(), outputDir)
	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d entities)...\n", ds.name, ds.size)
		// Seed per size keeps the files reproducible.
		write(ds.name, testutil.Random(int64(ds.size), ds.size, calculateDensity(ds.size)), outputDir)
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}

func write(name string, ds model.Dataset, dir string) {
	path := filepath.Join(dir, name+".json")
	if err := loader.WriteJSON(ds, path); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("  Written %s (%d entities, %d relations)\n", path, len(ds.Entities), len(ds.Relations))
}

// calculateDensity is relations per entity. Larger families stay sparse so
// rings remain a readable size.
func calculateDensity(size int) float64 {
	switch {
	case size <= 100:
		return 3
	case size <= 1000:
		return 2.5
	default:
		return 2
	}
}
