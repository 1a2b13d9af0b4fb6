package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk seed format: a YAML document with the demo
// products and recipes the assistant ships with.
type Catalog struct {
	Products []Product `yaml:"products"`
	Recipes  []Recipe  `yaml:"recipes"`
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &cat, nil
}

// Seed inserts every catalog entry that does not already exist. Existing
// rows are left untouched so user edits survive restarts.
func (s *Store) Seed(cat *Catalog) error {
	for _, p := range cat.Products {
		if err := s.CreateProduct(p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	for _, r := range cat.Recipes {
		if err := s.CreateRecipe(r); err != nil {
			return fmt.Errorf("seed recipe %q: %w", r.Name, err)
		}
	}
	return nil
}
