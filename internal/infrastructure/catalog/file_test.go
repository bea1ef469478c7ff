package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileRepository_Formats(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantIDs  []string
		wantName string
	}{
		{
			name: "yaml document",
			file: "catalog.yaml",
			content: `
products:
  - id: "p-1"
    name: Wireless Headphones
    price: 199.99
    category: Electronics
    brand: AudioTech
    tags: [wireless, bluetooth]
    stock: 5
    rating: 4.5
    reviewCount: 12
    createdAt: 2024-01-15T09:00:00Z
  - id: "p-2"
    name: Gaming Keyboard
    price: 149.99
`,
			wantIDs:  []string{"p-1", "p-2"},
			wantName: "Wireless Headphones",
		},
		{
			name: "yaml list",
			file: "catalog.yml",
			content: `
- id: "a"
  name: Yoga Mat
  price: 34.99
`,
			wantIDs:  []string{"a"},
			wantName: "Yoga Mat",
		},
		{
			name:     "json document",
			file:     "catalog.json",
			content:  `{"products": [{"id": "j-1", "name": "Smart Watch", "price": 249.99, "createdAt": "2024-03-10T09:00:00Z"}]}`,
			wantIDs:  []string{"j-1"},
			wantName: "Smart Watch",
		},
		{
			name:     "json list",
			file:     "catalog.JSON",
			content:  ` [{"id": "j-2", "name": "Laptop Pro 15", "price": 1299.99}]`,
			wantIDs:  []string{"j-2"},
			wantName: "Laptop Pro 15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFileRepository(writeCatalog(t, tt.file, tt.content))

			products, err := repo.ListProducts(context.Background())
			require.NoError(t, err)

			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantName, products[0].Name)
		})
	}
}

func TestFileRepository_YAMLFields(t *testing.T) {
	repo := NewFileRepository(writeCatalog(t, "catalog.yaml", `
products:
  - id: "p-1"
    name: Wireless Headphones
    price: 199.99
    originalPrice: 249.99
    brand: AudioTech
    tags: [wireless, bluetooth]
    stock: 5
    rating: 4.5
    reviewCount: 12
    createdAt: 2024-01-15T09:00:00Z
`))

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.InDelta(t, 199.99, p.Price, 1e-9)
	require.NotNil(t, p.OriginalPrice)
	assert.InDelta(t, 249.99, *p.OriginalPrice, 1e-9)
	assert.Equal(t, []string{"wireless", "bluetooth"}, p.Tags)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 12, p.ReviewCount)
	assert.True(t, p.CreatedAt.Equal(time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)))
}

func TestFileRepository_Empty(t *testing.T) {
	for _, name := range []string{"empty.yaml", "empty.json"} {
		t.Run(name, func(t *testing.T) {
			products, err := NewFileRepository(writeCatalog(t, name, "  \n")).ListProducts(context.Background())
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestFileRepository_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed yaml", "bad.yaml", "products: [\n"},
		{"malformed json", "bad.json", `{"products": [`},
		{"missing id", "noid.yaml", "- name: Thing\n"},
		{"missing name", "noname.yaml", "- id: x\n"},
		{"duplicate id", "dup.json", `[{"id":"1","name":"a"},{"id":"1","name":"b"}]`},
		{"negative price", "price.yaml", "- id: x\n  name: Mat\n  price: -1\n"},
		{"negative original price", "orig.json", `[{"id":"x","name":"Mat","price":10,"originalPrice":-5}]`},
		{"negative stock", "stock.yaml", "- id: x\n  name: Mat\n  stock: -3\n"},
		{"rating above five", "rating.json", `[{"id":"x","name":"Mat","rating":5.5}]`},
		{"negative rating", "low.yaml", "- id: x\n  name: Mat\n  rating: -0.5\n"},
		{"negative review count", "reviews.json", `[{"id":"x","name":"Mat","reviewCount":-1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileRepository(writeCatalog(t, tt.file, tt.content)).ListProducts(context.Background())
			assert.Error(t, err)
		})
	}

	t.Run("boundary values are accepted", func(t *testing.T) {
		products, err := NewFileRepository(writeCatalog(t, "edges.json",
			`[{"id":"a","name":"Free","price":0,"stock":0,"rating":0},{"id":"b","name":"Top","price":1,"rating":5}]`,
		)).ListProducts(context.Background())
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileRepository(filepath.Join(t.TempDir(), "nope.yaml")).ListProducts(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFileRepository_RereadsOnLoad(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", "- id: a\n  name: First\n")
	repo := NewFileRepository(path)

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "First", products[0].Name)

	require.NoError(t, os.WriteFile(path, []byte("- id: a\n  name: Second\n"), 0o600))

	products, err = repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second", products[0].Name)
}
