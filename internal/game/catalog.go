package game

import (
	"fmt"

	"flag-quiz-service/internal/domain"
)

// DefaultCatalogID names the built-in catalog in every loader.
const DefaultCatalogID = "default"

// DefaultCatalog returns the ten built-in countries. Translations are in the
// genitive case so they read naturally after "Это флаг".
func DefaultCatalog() []domain.Country {
	return []domain.Country{
		{ID: "Estonia", Translation: "Эстонии", ImageRef: "Estonia"},
		{ID: "France", Translation: "Франции", ImageRef: "France"},
		{ID: "Germany", Translation: "Германии", ImageRef: "Germany"},
		{ID: "Ireland", Translation: "Ирландии", ImageRef: "Ireland"},
		{ID: "Italy", Translation: "Италии", ImageRef: "Italy"},
		{ID: "Nigeria", Translation: "Нигерии", ImageRef: "Nigeria"},
		{ID: "Poland", Translation: "Польши", ImageRef: "Poland"},
		{ID: "Spain", Translation: "Испании", ImageRef: "Spain"},
		{ID: "UK", Translation: "Англии", ImageRef: "UK"},
		{ID: "US", Translation: "Америки", ImageRef: "US"},
	}
}

// Catalog is an immutable, indexed copy of the country list.
type Catalog struct {
	ids     []string
	entries map[string]domain.Country
}

// NewCatalog validates countries and indexes them by ID.
func NewCatalog(countries []domain.Country) (*Catalog, error) {
	if len(countries) < domain.ChoicesPerRound {
		return nil, fmt.Errorf("%w: catalog has %d entries, need at least %d", domain.ErrConfig, len(countries), domain.ChoicesPerRound)
	}
	c := &Catalog{
		ids:     make([]string, 0, len(countries)),
		entries: make(map[string]domain.Country, len(countries)),
	}
	for _, country := range countries {
		if country.ID == "" {
			return nil, fmt.Errorf("%w: catalog entry with empty id", domain.ErrConfig)
		}
		if _, dup := c.entries[country.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate catalog id %q", domain.ErrConfig, country.ID)
		}
		c.ids = append(c.ids, country.ID)
		c.entries[country.ID] = country
	}
	return c, nil
}

// Len returns the number of countries.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// IDs returns the catalog IDs in their original order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Translation returns the display translation for id. Unknown IDs and
// entries without a translation fall back to the ID itself.
func (c *Catalog) Translation(id string) string {
	if country, ok := c.entries[id]; ok && country.Translation != "" {
		return country.Translation
	}
	return id
}

// ImageRef returns the asset key for id, defaulting to the ID.
func (c *Catalog) ImageRef(id string) string {
	if country, ok := c.entries[id]; ok && country.ImageRef != "" {
		return country.ImageRef
	}
	return id
}
