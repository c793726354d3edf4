package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
)

func TestLoadEmbeddedSeed(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cat.Products)

	for _, p := range cat.Products {
		assert.NotZero(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.False(t, p.ReleaseDate.IsZero(), "product %d has no release date", p.ID)
	}

	assert.NotEmpty(t, cat.Facets.Categories)
	assert.NotEmpty(t, cat.Facets.Brands)
	assert.NotEmpty(t, cat.Facets.PriceRanges)
}

func TestProductByID(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	first := cat.Products[0]
	got, ok := cat.ProductByID(first.ID)
	require.True(t, ok)
	assert.Equal(t, first.Name, got.Name)

	_, ok = cat.ProductByID(-1)
	assert.False(t, ok)
}

func TestPriceRangeLookup(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	// The open-ended bucket has no upper bound.
	pr, ok := cat.PriceRange("$1000+")
	require.True(t, ok)
	assert.Equal(t, 1000.0, pr.Min)
	assert.Nil(t, pr.Max)

	_, ok = cat.PriceRange("no such bucket")
	assert.False(t, ok)
}

func TestVocabularyValues(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	for _, ft := range models.FacetTypes {
		assert.NotEmpty(t, cat.Facets.Values(ft), "facet %s has an empty vocabulary", ft)
	}
	assert.Contains(t, cat.Facets.Values(models.FacetPrice), "$1000+")
}

func TestParseRejectsBadReleaseDate(t *testing.T) {
	_, err := parse([]byte(`{"products":[{"id":1,"name":"X","releaseDate":"not-a-date"}],"filters":{}}`))
	assert.Error(t, err)
}
