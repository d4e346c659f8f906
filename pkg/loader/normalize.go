package loader

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pantheon/pkg/model"
)

// RawEntity mirrors a hand-edited YAML entity. Slug and culture may be
// missing; id may be a legacy id that relations still refer to.
type RawEntity struct {
	ID      string `yaml:"id"`
	Slug    string `yaml:"slug"`
	Name    string `yaml:"name"`
	Culture string `yaml:"culture"`
}

type rawDataset struct {
	Entities  []RawEntity      `yaml:"entities"`
	Relations []model.Relation `yaml:"relations"`
}

// DecodeYAML reads the raw YAML source and normalises it into the runtime
// dataset shape.
func DecodeYAML(r io.Reader) (model.Dataset, error) {
	var raw rawDataset
	dec := yaml.NewDecoder(io.LimitReader(r, maxDatasetBytes))
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return withEmptySlices(model.Dataset{}), nil
		}
		return model.Dataset{}, fmt.Errorf("failed to parse dataset YAML: %w", err)
	}
	return Normalize(raw.Entities, raw.Relations), nil
}

// Normalize derives "<culture>-<slug>" ids, lower-cases cultures (default
// "grecque") and remaps relation endpoints from legacy ids to the new ids.
// Endpoints with no legacy match are kept verbatim and later dropped by the
// store if they still resolve to nothing.
func Normalize(entities []RawEntity, relations []model.Relation) model.Dataset {
	ds := model.Dataset{
		Entities:  make([]model.Entity, 0, len(entities)),
		Relations: make([]model.Relation, 0, len(relations)),
	}

	idMap := make(map[string]string, len(entities))
	for _, e := range entities {
		slug := strings.TrimSpace(e.Slug)
		if slug == "" {
			slug = strings.TrimSpace(e.ID)
		}
		culture := model.NormalizeCulture(e.Culture)
		newID := model.NormalizeID(culture, slug)
		if e.ID != "" {
			idMap[e.ID] = newID
		}
		ds.Entities = append(ds.Entities, model.Entity{
			ID:      newID,
			Slug:    slug,
			Name:    e.Name,
			Culture: culture,
		})
	}

	for _, rel := range relations {
		if mapped, ok := idMap[rel.SourceID]; ok {
			rel.SourceID = mapped
		}
		if mapped, ok := idMap[rel.TargetID]; ok {
			rel.TargetID = mapped
		}
		if rel.SourceTexts == nil {
			rel.SourceTexts = []model.RelationSource{}
		}
		ds.Relations = append(ds.Relations, rel)
	}
	return ds
}
