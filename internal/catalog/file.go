package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileSource serves a list loaded once from a JSON file.
type FileSource struct {
	species []Species
}

// LoadFile reads a JSON array of species. Names must be present and unique
// (ignoring case).
func LoadFile(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species file: %w", err)
	}

	var arr []Species
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, fmt.Errorf("parse species file %s: %w", path, err)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("species list %s is empty", path)
	}

	seen := make(map[string]bool, len(arr))
	for i, sp := range arr {
		name := strings.TrimSpace(sp.Name)
		if name == "" {
			return nil, fmt.Errorf("missing name at index %d", i)
		}
		key := normalize(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate species %q", name)
		}
		seen[key] = true
		arr[i].Name = name
	}

	return &FileSource{species: arr}, nil
}

// FetchAll returns a copy of the loaded list.
func (f *FileSource) FetchAll(context.Context) ([]Species, error) {
	out := make([]Species, len(f.species))
	copy(out, f.species)
	return out, nil
}
