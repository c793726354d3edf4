package facet

import (
	"testing"
	"time"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }

func testCatalog() *catalog.Catalog {
	products := []models.Product{
		{
			ID: 1, Name: "Cheap Cable", Brand: "Acme", Category: "Accessories",
			Price: 10, Rating: 4.0, ReviewCount: 500,
			Features:     []string{"USB-C"},
			Availability: "In Stock",
			ReleaseDate:  time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, Name: "Mid Speaker", Brand: "Acme", Category: "Audio",
			Price: 50, Rating: 3.5, ReviewCount: 2000,
			Features:     []string{"Bluetooth"},
			Availability: "Out of Stock",
			ReleaseDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: 3, Name: "Fancy Headphones", Brand: "Bolt", Category: "Audio",
			Price: 150, Rating: 5.0, ReviewCount: 1000,
			Features:     []string{"Bluetooth", "Noise Cancelling"},
			Availability: "In Stock",
			ReleaseDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	facets := catalog.Vocabulary{
		Categories: []string{"Accessories", "Audio"},
		Brands:     []string{"Acme", "Bolt"},
		PriceRanges: []models.PriceRange{
			{Label: "$0-$25", Min: 0, Max: fptr(25)},
			{Label: "$25-$100", Min: 25, Max: fptr(100)},
			{Label: "$100+", Min: 100, Max: nil},
		},
		Ratings:      []string{"5", "4+", "3+", "2+"},
		Features:     []string{"USB-C", "Bluetooth", "Noise Cancelling"},
		Availability: []string{"In Stock", "Out of Stock"},
		ReleaseDates: []string{"Last 30 days", "Last 3 months", "Last 6 months", "Last year"},
	}
	return catalog.New(products, facets)
}

func ids(products []models.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestEmptySelectionKeepsCatalogOrder(t *testing.T) {
	cat := testCatalog()

	result := FilterAndSort(cat, models.FilterSelection{}, models.SortRelevance, testNow)

	assert.Equal(t, []int64{1, 2, 3}, ids(result))
}

func TestPriceRangesCombineWithOr(t *testing.T) {
	cat := testCatalog()
	sel := models.FilterSelection{PriceRanges: []string{"$0-$25", "$100+"}}

	result := FilterAndSort(cat, sel, models.SortRelevance, testNow)

	// 10 and 150 match, 50 falls in neither selected range.
	assert.Equal(t, []int64{1, 3}, ids(result))
}

func TestFacetsCombineWithAnd(t *testing.T) {
	cat := testCatalog()
	sel := models.FilterSelection{
		Categories:   []string{"Audio"},
		Availability: []string{"In Stock"},
	}

	result := FilterAndSort(cat, sel, models.SortRelevance, testNow)

	assert.Equal(t, []int64{3}, ids(result))
}

func TestRatingThresholdLowestDominates(t *testing.T) {
	cat := testCatalog()
	sel := models.FilterSelection{Ratings: []string{"5", "3+"}}

	result := FilterAndSort(cat, sel, models.SortRelevance, testNow)

	assert.Equal(t, []int64{1, 2, 3}, ids(result))
}

func TestUnknownValuesMatchNothing(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		name string
		sel  models.FilterSelection
	}{
		{"category", models.FilterSelection{Categories: []string{"Appliances"}}},
		{"price range", models.FilterSelection{PriceRanges: []string{"$9999+"}}},
		{"rating token", models.FilterSelection{Ratings: []string{"lots"}}},
		{"release bucket", models.FilterSelection{ReleaseDates: []string{"Last decade"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterAndSort(cat, tt.sel, models.SortRelevance, testNow)
			assert.Empty(t, result)
		})
	}
}

func TestReleaseDateWindows(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		period string
		want   []int64
	}{
		{"Last 30 days", []int64{1}},
		{"Last 6 months", []int64{1, 2}},
		{"Last year", []int64{1, 2}}, // id 3 released before the cutoff
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			sel := models.FilterSelection{ReleaseDates: []string{tt.period}}
			result := FilterAndSort(cat, sel, models.SortRelevance, testNow)
			assert.Equal(t, tt.want, ids(result))
		})
	}
}

func TestSorting(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		sort models.SortOption
		want []int64
	}{
		{models.SortRelevance, []int64{1, 2, 3}},
		{models.SortPriceAsc, []int64{1, 2, 3}},
		{models.SortPriceDesc, []int64{3, 2, 1}},
		{models.SortNewest, []int64{1, 2, 3}},
		{models.SortRating, []int64{3, 1, 2}},
		{models.SortPopularity, []int64{2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			result := FilterAndSort(cat, models.FilterSelection{}, tt.sort, testNow)
			assert.Equal(t, tt.want, ids(result))
		})
	}
}

func TestSortStableForEqualKeys(t *testing.T) {
	products := []models.Product{
		{ID: 1, Price: 20, Rating: 4},
		{ID: 2, Price: 20, Rating: 4},
		{ID: 3, Price: 20, Rating: 4},
	}
	cat := catalog.New(products, catalog.Vocabulary{})

	result := FilterAndSort(cat, models.FilterSelection{}, models.SortPriceAsc, testNow)

	assert.Equal(t, []int64{1, 2, 3}, ids(result))
}

func TestFacetCountIgnoresOwnFacet(t *testing.T) {
	cat := testCatalog()

	// With "4+" active the result set is narrowed, but counts for the
	// rating facet itself must be computed against the baseline with
	// the rating filter cleared.
	sel := models.FilterSelection{Ratings: []string{"4+"}}

	assert.Equal(t, 1, FacetCount(cat, sel, models.FacetRating, "5", testNow))
	assert.Equal(t, 3, FacetCount(cat, sel, models.FacetRating, "3+", testNow))
}

func TestFacetCountRespectsOtherFacets(t *testing.T) {
	cat := testCatalog()
	sel := models.FilterSelection{
		Categories: []string{"Audio"},
		Brands:     []string{"Acme"},
	}

	// Brand counts see the category restriction but not the brand one.
	assert.Equal(t, 1, FacetCount(cat, sel, models.FacetBrand, "Acme", testNow))
	assert.Equal(t, 1, FacetCount(cat, sel, models.FacetBrand, "Bolt", testNow))

	// Category counts see the brand restriction but not the category one.
	assert.Equal(t, 1, FacetCount(cat, sel, models.FacetCategory, "Accessories", testNow))
	assert.Equal(t, 1, FacetCount(cat, sel, models.FacetCategory, "Audio", testNow))

	// Clearing the brand facet changes category counts.
	relaxed := models.FilterSelection{Categories: []string{"Audio"}}
	assert.Equal(t, 2, FacetCount(cat, relaxed, models.FacetCategory, "Audio", testNow))
}

func TestFacetCountUnknownValue(t *testing.T) {
	cat := testCatalog()

	assert.Zero(t, FacetCount(cat, models.FilterSelection{}, models.FacetPrice, "$banana", testNow))
}

func TestNilCatalogPanics(t *testing.T) {
	require.Panics(t, func() {
		FilterAndSort(nil, models.FilterSelection{}, models.SortRelevance, testNow)
	})
	require.Panics(t, func() {
		FacetCount(nil, models.FilterSelection{}, models.FacetBrand, "Acme", testNow)
	})
}
