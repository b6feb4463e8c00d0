package catalog

import "context"

// Species is one catalog entry.
type Species struct {
	Name           string   `json:"name"`
	ScientificName string   `json:"scientificName,omitempty"`
	Habitat        string   `json:"habitat,omitempty"`
	Location       string   `json:"location,omitempty"`
	Population     string   `json:"population,omitempty"`
	FishingRate    string   `json:"fishingRate,omitempty"`
	Illustration   string   `json:"illustration,omitempty"`
	Gallery        []string `json:"gallery,omitempty"`
}

// Source supplies the species list.
type Source interface {
	FetchAll(ctx context.Context) ([]Species, error)
}

// StaticSource serves the built-in list.
type StaticSource struct{}

// FetchAll returns Static().
func (StaticSource) FetchAll(context.Context) ([]Species, error) {
	return Static(), nil
}

// Static returns the built-in list of common spearfishing species.
// Each call returns a fresh slice.
func Static() []Species {
	return []Species{
		{Name: "Mahi Mahi", ScientificName: "Coryphaena hippurus", Habitat: "Pelagic", Location: "Tropical and subtropical waters", Population: "Stable", FishingRate: "Sustainable"},
		{Name: "Red Snapper", ScientificName: "Lutjanus campechanus", Habitat: "Reef", Location: "Western Atlantic", Population: "Rebuilding", FishingRate: "Managed"},
		{Name: "Grouper", ScientificName: "Epinephelus sp.", Habitat: "Reef", Location: "Tropical and subtropical waters", Population: "Varies by species", FishingRate: "Managed"},
		{Name: "Yellowtail Snapper", ScientificName: "Ocyurus chrysurus", Habitat: "Reef", Location: "Western Atlantic", Population: "Stable", FishingRate: "Sustainable"},
		{Name: "Cobia", ScientificName: "Rachycentron canadum", Habitat: "Pelagic", Location: "Worldwide tropical waters", Population: "Stable", FishingRate: "Sustainable"},
		{Name: "Wahoo", ScientificName: "Acanthocybium solandri", Habitat: "Pelagic", Location: "Tropical and subtropical waters", Population: "Stable", FishingRate: "Sustainable"},
		{Name: "Hogfish", ScientificName: "Lachnolaimus maximus", Habitat: "Reef", Location: "Western Atlantic", Population: "Stable", FishingRate: "Managed"},
		{Name: "African Pompano", ScientificName: "Alectis ciliaris", Habitat: "Pelagic", Location: "Tropical waters", Population: "Stable", FishingRate: "Sustainable"},
		{Name: "Amberjack", ScientificName: "Seriola dumerili", Habitat: "Reef/Pelagic", Location: "Worldwide tropical waters", Population: "Stable", FishingRate: "Managed"},
		{Name: "Barracuda", ScientificName: "Sphyraena barracuda", Habitat: "Reef/Pelagic", Location: "Tropical waters", Population: "Stable", FishingRate: "Sustainable"},
	}
}
