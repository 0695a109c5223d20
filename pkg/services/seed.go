package services

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// CategorySeed is the layout of the category seed file:
//
//	categories:
//	  - name: Picking
//	    description: Order picking
type CategorySeed struct {
	Categories []models.NamedRecord `yaml:"categories"`
}

// LoadCategorySeed reads a category seed file. Unknown keys are rejected.
func LoadCategorySeed(path string) ([]models.NamedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open category seed file: %w", err)
	}
	defer f.Close()

	var seed CategorySeed
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse category seed file %s: %w", path, err)
	}
	for i, rec := range seed.Categories {
		if rec.Name == "" {
			return nil, fmt.Errorf("category seed file %s: entry %d has no name", path, i+1)
		}
		if rec.Description == "" {
			seed.Categories[i].Description = rec.Name
		}
	}
	return seed.Categories, nil
}
