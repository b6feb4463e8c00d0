package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

func normalize(s string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(s)))
}

// SameName reports whether two species names are equal once case,
// surrounding space and Unicode form are ignored.
func SameName(a, b string) bool {
	na := normalize(a)
	return na != "" && na == normalize(b)
}

// Match finds the species for a free-text name. An empty query matches
// nothing.
func Match(list []Species, query string) (Species, bool) {
	q := normalize(query)
	if q == "" {
		return Species{}, false
	}

	for _, sp := range list {
		if normalize(sp.Name) == q {
			return sp, true
		}
	}
	for _, sp := range list {
		name := normalize(sp.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return sp, true
		}
	}
	return Species{}, false
}

// Catalog looks species up in a source.
type Catalog struct {
	src Source
}

// New creates a catalog over src.
func New(src Source) *Catalog {
	return &Catalog{src: src}
}

// All returns every species.
func (c *Catalog) All(ctx context.Context) ([]Species, error) {
	list, err := c.src.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch species: %w", err)
	}
	return list, nil
}

// Lookup matches name against the catalog.
func (c *Catalog) Lookup(ctx context.Context, name string) (Species, bool, error) {
	list, err := c.All(ctx)
	if err != nil {
		return Species{}, false, err
	}
	sp, ok := Match(list, name)
	return sp, ok, nil
}
