package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"storefront-service/internal/models"
)

//go:embed products.json
var seedData []byte

// Vocabulary is the catalog's known facet-value set. Filter values
// outside the vocabulary are inert: they match nothing.
type Vocabulary struct {
	Categories   []string            `json:"categories"`
	Brands       []string            `json:"brands"`
	PriceRanges  []models.PriceRange `json:"priceRanges"`
	Ratings      []string            `json:"ratings"`
	Features     []string            `json:"features"`
	Availability []string            `json:"availability"`
	ReleaseDates []string            `json:"releaseDates"`
}

// Values returns the vocabulary entries for one facet type.
func (v Vocabulary) Values(t models.FacetType) []string {
	switch t {
	case models.FacetCategory:
		return v.Categories
	case models.FacetBrand:
		return v.Brands
	case models.FacetPrice:
		labels := make([]string, len(v.PriceRanges))
		for i, pr := range v.PriceRanges {
			labels[i] = pr.Label
		}
		return labels
	case models.FacetRating:
		return v.Ratings
	case models.FacetFeature:
		return v.Features
	case models.FacetAvailability:
		return v.Availability
	case models.FacetReleaseDate:
		return v.ReleaseDates
	}
	return nil
}

// Catalog is the static product collection plus its facet
// vocabulary. Read-only after construction.
type Catalog struct {
	Products []models.Product
	Facets   Vocabulary

	byID map[int64]models.Product
}

type productRecord struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	Features      []string `json:"features"`
	Availability  string   `json:"availability"`
	ReleaseDate   string   `json:"releaseDate"`
	Image         string   `json:"image"`
}

type catalogFile struct {
	Products []productRecord `json:"products"`
	Filters  Vocabulary      `json:"filters"`
}

// New builds a catalog from already-parsed products and vocabulary.
func New(products []models.Product, facets Vocabulary) *Catalog {
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{Products: products, Facets: facets, byID: byID}
}

// Load parses the embedded seed catalog.
func Load() (*Catalog, error) {
	return parse(seedData)
}

// LoadFile parses a catalog from an external JSON file, overriding
// the embedded seed.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]models.Product, 0, len(file.Products))
	for _, rec := range file.Products {
		released, err := time.Parse("2006-01-02", rec.ReleaseDate)
		if err != nil {
			return nil, fmt.Errorf("product %d: bad release date %q: %w", rec.ID, rec.ReleaseDate, err)
		}
		products = append(products, models.Product{
			ID:            rec.ID,
			Name:          rec.Name,
			Brand:         rec.Brand,
			Category:      rec.Category,
			Price:         rec.Price,
			OriginalPrice: rec.OriginalPrice,
			Rating:        rec.Rating,
			ReviewCount:   rec.ReviewCount,
			Description:   rec.Description,
			Tags:          rec.Tags,
			Features:      rec.Features,
			Availability:  rec.Availability,
			ReleaseDate:   released,
			Image:         rec.Image,
		})
	}

	return New(products, file.Filters), nil
}

// ProductByID looks up a product by id.
func (c *Catalog) ProductByID(id int64) (models.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// PriceRange resolves a named price bucket from the vocabulary.
func (c *Catalog) PriceRange(label string) (models.PriceRange, bool) {
	for _, pr := range c.Facets.PriceRanges {
		if pr.Label == label {
			return pr, true
		}
	}
	return models.PriceRange{}, false
}
