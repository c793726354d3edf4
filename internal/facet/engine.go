// Package facet implements the catalog query engine: filtering a
// product collection by a FilterSelection, sorting the survivors, and
// computing would-match counts for sidebar facet values.
//
// Facets with a non-empty selection act as independent predicates
// combined with AND; values within one facet combine with OR. Unknown
// facet values are inert and match nothing. The functions are pure;
// nothing is cached between calls.
package facet

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
)

// FilterAndSort returns the catalog subset matching every active
// facet of sel, sorted by sortBy. Relevance keeps catalog order; all
// sorts are stable. The reference time now anchors release-date
// buckets. A nil catalog is a contract violation.
func FilterAndSort(cat *catalog.Catalog, sel models.FilterSelection, sortBy models.SortOption, now time.Time) []models.Product {
	if cat == nil {
		panic("facet: nil catalog")
	}

	result := make([]models.Product, 0, len(cat.Products))
	for _, p := range cat.Products {
		if matchesSelection(cat, p, sel, now) {
			result = append(result, p)
		}
	}

	sortProducts(result, sortBy)
	return result
}

// FacetCount reports how many products would match candidate applied
// on top of every active facet except facetType. The current
// selection within facetType is deliberately ignored so the count
// answers "what do I get by checking this box".
func FacetCount(cat *catalog.Catalog, sel models.FilterSelection, facetType models.FacetType, candidate string, now time.Time) int {
	if cat == nil {
		panic("facet: nil catalog")
	}

	baseline := sel.Clone()
	baseline.SetValues(facetType, nil)

	count := 0
	for _, p := range cat.Products {
		if !matchesSelection(cat, p, baseline, now) {
			continue
		}
		if matchesValue(cat, p, facetType, candidate, now) {
			count++
		}
	}
	return count
}

func matchesSelection(cat *catalog.Catalog, p models.Product, sel models.FilterSelection, now time.Time) bool {
	for _, t := range models.FacetTypes {
		values := sel.Values(t)
		if len(values) == 0 {
			continue
		}
		if !matchesAny(cat, p, t, values, now) {
			return false
		}
	}
	return true
}

func matchesAny(cat *catalog.Catalog, p models.Product, t models.FacetType, values []string, now time.Time) bool {
	for _, v := range values {
		if matchesValue(cat, p, t, v, now) {
			return true
		}
	}
	return false
}

func matchesValue(cat *catalog.Catalog, p models.Product, t models.FacetType, value string, now time.Time) bool {
	switch t {
	case models.FacetCategory:
		return p.Category == value
	case models.FacetBrand:
		return p.Brand == value
	case models.FacetPrice:
		pr, ok := cat.PriceRange(value)
		if !ok {
			return false
		}
		if pr.Max == nil {
			return p.Price >= pr.Min
		}
		return p.Price >= pr.Min && p.Price <= *pr.Max
	case models.FacetRating:
		min, ok := parseRatingThreshold(value)
		if !ok {
			return false
		}
		return p.Rating >= min
	case models.FacetFeature:
		for _, f := range p.Features {
			if f == value {
				return true
			}
		}
		return false
	case models.FacetAvailability:
		return p.Availability == value
	case models.FacetReleaseDate:
		cutoff, ok := releaseCutoff(value, now)
		if !ok {
			return false
		}
		return !p.ReleaseDate.Before(cutoff)
	}
	return false
}

// parseRatingThreshold accepts "N+" or plain "N" tokens.
func parseRatingThreshold(value string) (float64, bool) {
	n, err := strconv.Atoi(strings.SplitN(value, "+", 2)[0])
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

// releaseCutoff resolves a named release-date bucket to its lower
// bound. Month and year buckets use calendar-aware subtraction, not
// fixed day counts.
func releaseCutoff(period string, now time.Time) (time.Time, bool) {
	switch period {
	case "Last 30 days":
		return now.AddDate(0, 0, -30), true
	case "Last 3 months":
		return now.AddDate(0, -3, 0), true
	case "Last 6 months":
		return now.AddDate(0, -6, 0), true
	case "Last year":
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

func sortProducts(products []models.Product, sortBy models.SortOption) {
	switch sortBy {
	case models.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case models.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case models.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ReleaseDate.After(products[j].ReleaseDate)
		})
	case models.SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case models.SortPopularity:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ReviewCount > products[j].ReviewCount
		})
	}
}
