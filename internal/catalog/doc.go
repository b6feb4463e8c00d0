// Package catalog provides the reference list of fish species.
//
// Sources return the full list: Static is the built-in list of common
// spearfishing species, Remote reads a fishwatch-style JSON API and
// LoadFile reads a local JSON registry. Cached wraps any source with a
// Cache (in-memory or Redis).
//
// Match resolves a free-text fish type to a species. Comparison ignores
// case and surrounding whitespace; an exact name wins, otherwise the first
// species whose name contains the query, or is contained by it.
package catalog
