package models

import "time"

// Product represents a product in the catalog. Catalog data is
// read-only after load; products are passed by value everywhere.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	Features      []string  `json:"features"`
	Availability  string    `json:"availability"`
	ReleaseDate   time.Time `json:"release_date"`
	Image         string    `json:"image"`
}

// FacetType identifies one independently filterable attribute group.
// The values double as the repeated query-string keys.
type FacetType string

const (
	FacetCategory     FacetType = "category"
	FacetBrand        FacetType = "brand"
	FacetPrice        FacetType = "price"
	FacetRating       FacetType = "rating"
	FacetFeature      FacetType = "feature"
	FacetAvailability FacetType = "availability"
	FacetReleaseDate  FacetType = "releaseDate"
)

// FacetTypes lists every facet in canonical encoding order.
var FacetTypes = []FacetType{
	FacetCategory,
	FacetBrand,
	FacetPrice,
	FacetRating,
	FacetFeature,
	FacetAvailability,
	FacetReleaseDate,
}

// FilterSelection holds the selected values per facet. Within one
// facet the values combine with OR; across facets with AND. An empty
// slice means the facet is inactive, not "match nothing".
type FilterSelection struct {
	Categories   []string `json:"categories"`
	Brands       []string `json:"brands"`
	PriceRanges  []string `json:"price_ranges"`
	Ratings      []string `json:"ratings"`
	Features     []string `json:"features"`
	Availability []string `json:"availability"`
	ReleaseDates []string `json:"release_dates"`
}

// Values returns the selected values for one facet type.
func (s FilterSelection) Values(t FacetType) []string {
	switch t {
	case FacetCategory:
		return s.Categories
	case FacetBrand:
		return s.Brands
	case FacetPrice:
		return s.PriceRanges
	case FacetRating:
		return s.Ratings
	case FacetFeature:
		return s.Features
	case FacetAvailability:
		return s.Availability
	case FacetReleaseDate:
		return s.ReleaseDates
	}
	return nil
}

// SetValues replaces the selected values for one facet type.
func (s *FilterSelection) SetValues(t FacetType, values []string) {
	switch t {
	case FacetCategory:
		s.Categories = values
	case FacetBrand:
		s.Brands = values
	case FacetPrice:
		s.PriceRanges = values
	case FacetRating:
		s.Ratings = values
	case FacetFeature:
		s.Features = values
	case FacetAvailability:
		s.Availability = values
	case FacetReleaseDate:
		s.ReleaseDates = values
	}
}

// Clone returns a deep copy of the selection.
func (s FilterSelection) Clone() FilterSelection {
	var out FilterSelection
	for _, t := range FacetTypes {
		src := s.Values(t)
		if len(src) == 0 {
			continue
		}
		out.SetValues(t, append([]string(nil), src...))
	}
	return out
}

// IsEmpty reports whether no facet has an active selection.
func (s FilterSelection) IsEmpty() bool {
	for _, t := range FacetTypes {
		if len(s.Values(t)) > 0 {
			return false
		}
	}
	return true
}

// ActiveFilter is one (facet, value) pair shown as a removable chip.
// Always derived from a FilterSelection, never stored.
type ActiveFilter struct {
	Type  FacetType `json:"type"`
	Value string    `json:"value"`
}

// ActiveFilters flattens the selection into chip entries, facet order
// first, selection order within a facet. Deterministic for a given
// selection.
func (s FilterSelection) ActiveFilters() []ActiveFilter {
	var out []ActiveFilter
	for _, t := range FacetTypes {
		for _, v := range s.Values(t) {
			out = append(out, ActiveFilter{Type: t, Value: v})
		}
	}
	return out
}

// SortOption enumerates the supported sort orders.
type SortOption string

const (
	SortRelevance  SortOption = "relevance"
	SortPriceAsc   SortOption = "price-asc"
	SortPriceDesc  SortOption = "price-desc"
	SortNewest     SortOption = "newest"
	SortRating     SortOption = "rating"
	SortPopularity SortOption = "popularity"
)

// ValidSortOption reports whether s is a recognized sort token.
func ValidSortOption(s SortOption) bool {
	switch s {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest, SortRating, SortPopularity:
		return true
	}
	return false
}

// ViewType enumerates the catalog display modes.
type ViewType string

const (
	ViewGrid ViewType = "grid"
	ViewList ViewType = "list"
)

// ValidViewType reports whether v is a recognized view token.
func ValidViewType(v ViewType) bool {
	return v == ViewGrid || v == ViewList
}

// CartLine is one product's entry in the cart. Quantity never falls
// below 1; a line is removed only by explicit removal.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartTotals summarizes the cart. Tax is a flat 10% of the subtotal
// and shipping is free.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// PriceRange is a named price bucket from the catalog vocabulary.
// A nil Max means the bucket is open-ended ("and up").
type PriceRange struct {
	Label string   `json:"label"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max"`
}
