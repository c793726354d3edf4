package session

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/urlstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }

func sessionCatalog() *catalog.Catalog {
	products := make([]models.Product, 0, 30)
	for i := 1; i <= 30; i++ {
		category := "Audio"
		if i%2 == 0 {
			category = "Laptops"
		}
		products = append(products, models.Product{
			ID:           int64(i),
			Category:     category,
			Brand:        "Acme",
			Price:        float64(i * 10),
			Availability: "In Stock",
			ReleaseDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return catalog.New(products, catalog.Vocabulary{
		Categories: []string{"Audio", "Laptops"},
		Brands:     []string{"Acme"},
		PriceRanges: []models.PriceRange{
			{Label: "$0 - $100", Min: 0, Max: fptr(100)},
			{Label: "$100+", Min: 100, Max: nil},
		},
		Availability: []string{"In Stock"},
	})
}

type sinkRecorder struct {
	mu     sync.Mutex
	pushes []string
}

func (r *sinkRecorder) sink(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, query)
}

func (r *sinkRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pushes...)
}

func TestFromQueryDecodesOnce(t *testing.T) {
	query, err := url.ParseQuery("category=Audio&sort=price-desc&page=2&perPage=24&view=list")
	require.NoError(t, err)

	s := FromQuery(sessionCatalog(), query, nil, time.Millisecond)
	defer s.Close()

	st := s.State()
	assert.Equal(t, []string{"Audio"}, st.Filters.Categories)
	assert.Equal(t, models.SortPriceDesc, st.Sort)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, 24, st.PerPage)
	assert.Equal(t, models.ViewList, st.View)
}

func TestSetFilterResetsPage(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetPage(3)
	require.Equal(t, 3, s.State().Page)

	s.SetFilter(models.FacetCategory, "Audio", true)

	st := s.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, []string{"Audio"}, st.Filters.Categories)
}

func TestSetFilterIsIdempotentPerValue(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetFilter(models.FacetBrand, "Acme", true)
	s.SetFilter(models.FacetBrand, "Acme", true)

	assert.Equal(t, []string{"Acme"}, s.State().Filters.Brands)
}

func TestRemoveFilterAndClearAll(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetFilter(models.FacetCategory, "Audio", true)
	s.SetFilter(models.FacetBrand, "Acme", true)
	s.SetSort(models.SortNewest)

	s.RemoveFilter(models.FacetCategory, "Audio")
	assert.Empty(t, s.State().Filters.Categories)
	assert.Equal(t, []string{"Acme"}, s.State().Filters.Brands)

	s.ClearAll()
	st := s.State()
	assert.True(t, st.Filters.IsEmpty())
	assert.Equal(t, models.SortRelevance, st.Sort)
	assert.Equal(t, 1, st.Page)
}

func TestInvalidTokensIgnored(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetSort("alphabetical")
	s.SetView("carousel")
	s.SetPerPage(7)
	s.SetPage(0)

	assert.Equal(t, urlstate.DefaultState(), s.State())
}

func TestPageItemsWindow(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	items, page, totalPages := s.PageItems(testNow)
	assert.Equal(t, 1, page)
	assert.Equal(t, 3, totalPages) // 30 products, 12 per page
	require.Len(t, items, 12)
	assert.Equal(t, int64(1), items[0].ID)

	s.SetPage(3)
	items, page, _ = s.PageItems(testNow)
	assert.Equal(t, 3, page)
	require.Len(t, items, 6)
	assert.Equal(t, int64(25), items[0].ID)
}

func TestPageClampedWhenFiltersShrinkResults(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetPage(3)
	// 15 products match, so only two pages remain.
	s.mu.Lock()
	s.state.Filters.Categories = []string{"Audio"}
	s.mu.Unlock()

	items, page, totalPages := s.PageItems(testNow)

	assert.Equal(t, 2, totalPages)
	assert.Equal(t, 2, page)
	assert.NotEmpty(t, items)
}

func TestPagePlan(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	assert.Equal(t, []int{1, 2, 3}, s.PagePlan(testNow))
}

func TestActiveFiltersDerived(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetFilter(models.FacetBrand, "Acme", true)
	s.SetFilter(models.FacetCategory, "Audio", true)

	assert.Equal(t, []models.ActiveFilter{
		{Type: models.FacetCategory, Value: "Audio"},
		{Type: models.FacetBrand, Value: "Acme"},
	}, s.ActiveFilters())

	s.RemoveFilter(models.FacetBrand, "Acme")
	assert.Equal(t, []models.ActiveFilter{
		{Type: models.FacetCategory, Value: "Audio"},
	}, s.ActiveFilters())
}

func TestFacetCountsCoverVocabulary(t *testing.T) {
	s := New(sessionCatalog(), nil, time.Millisecond)
	defer s.Close()

	s.SetFilter(models.FacetCategory, "Audio", true)

	counts := s.FacetCounts(testNow)

	// Category counts ignore the category selection itself.
	assert.Equal(t, 15, counts[models.FacetCategory]["Audio"])
	assert.Equal(t, 15, counts[models.FacetCategory]["Laptops"])
	// Brand counts respect it.
	assert.Equal(t, 15, counts[models.FacetBrand]["Acme"])
	// Price buckets are narrowed too: Audio products are the odd ids,
	// priced 10..290; ten of them are above $100.
	assert.Equal(t, 10, counts[models.FacetPrice]["$100+"])
}

func TestURLPushDebouncedAndDeduplicated(t *testing.T) {
	rec := &sinkRecorder{}
	s := New(sessionCatalog(), rec.sink, 10*time.Millisecond)
	defer s.Close()

	s.SetFilter(models.FacetCategory, "Audio", true)
	s.SetFilter(models.FacetCategory, "Laptops", true)
	s.SetSort(models.SortPriceAsc)

	time.Sleep(100 * time.Millisecond)

	pushes := rec.all()
	require.Len(t, pushes, 1)
	assert.Equal(t, "category=Audio&category=Laptops&sort=price-asc&page=1&perPage=12&view=grid", pushes[0])
}

func TestUnchangedStateNotRePushed(t *testing.T) {
	rec := &sinkRecorder{}
	s := New(sessionCatalog(), rec.sink, 5*time.Millisecond)
	defer s.Close()

	// Toggling a filter on and back off settles at the initial state.
	s.SetFilter(models.FacetCategory, "Audio", true)
	s.SetFilter(models.FacetCategory, "Audio", false)

	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, rec.all())
}
