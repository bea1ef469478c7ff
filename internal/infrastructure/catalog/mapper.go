package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopassist/backend/internal/domain"
)

// timestampLayouts are the formats the product backend emits for created_at
// and updated_at, with and without zone and fractional seconds
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MapToProduct converts a product REST backend entry to the domain model.
// The backend has no ratings; rating and review count stay zero.
func MapToProduct(api *domain.APIProduct) (domain.Product, error) {
	if api == nil {
		return domain.Product{}, fmt.Errorf("nil product")
	}
	if strings.TrimSpace(api.ID) == "" {
		return domain.Product{}, fmt.Errorf("product %q has no id", api.Name)
	}

	price, err := parsePrice(api.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", api.ID, err)
	}

	product := domain.Product{
		ID:          api.ID,
		Name:        api.Name,
		Description: deref(api.Description),
		Price:       price,
		Category:    categoryName(api),
		Brand:       deref(api.Brand),
		Images:      nonNil(api.Images),
		Tags:        nonNil(api.Tags),
		CreatedAt:   parseTimestamp(api.CreatedAt),
		UpdatedAt:   parseTimestamp(api.UpdatedAt),
	}
	if api.Stock != nil {
		product.Stock = *api.Stock
	}
	return product, nil
}

// MapToProducts converts a page of backend products. Entries that cannot be
// mapped are skipped and counted.
func MapToProducts(page []domain.APIProduct) ([]domain.Product, int) {
	products := make([]domain.Product, 0, len(page))
	skipped := 0
	for i := range page {
		product, err := MapToProduct(&page[i])
		if err != nil {
			skipped++
			continue
		}
		products = append(products, product)
	}
	return products, skipped
}

func parsePrice(raw json.Number) (float64, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return 0, nil
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return price, nil
}

// categoryName prefers the embedded category and falls back to the raw id
func categoryName(api *domain.APIProduct) string {
	if api.Category != nil && api.Category.Name != "" {
		return api.Category.Name
	}
	return deref(api.CategoryID)
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
