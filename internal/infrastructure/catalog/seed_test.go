package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRepository_ListProducts(t *testing.T) {
	repo := NewSeedRepository()

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, products)

	seen := make(map[string]bool)
	categories := make(map[string]bool)
	for _, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		assert.GreaterOrEqual(t, p.Rating, 0.0)
		assert.LessOrEqual(t, p.Rating, 5.0)
		assert.False(t, p.CreatedAt.IsZero())
		seen[p.ID] = true
		categories[p.Category] = true
	}

	for _, want := range []string{"Electronics", "Fashion", "Home", "Sports"} {
		assert.True(t, categories[want], "missing category %s", want)
	}
}

func TestSeedRepository_ReturnsCopy(t *testing.T) {
	repo := NewSeedRepository()
	ctx := context.Background()

	first, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Headphones", second[0].Name)
}

func TestSeedRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSeedRepository().ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
