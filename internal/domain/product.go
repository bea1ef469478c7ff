package domain

import (
	"strings"
	"time"
)

// Product represents a single catalog entry
type Product struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	Price         float64   `json:"price" yaml:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Category      string    `json:"category" yaml:"category"`
	Brand         string    `json:"brand,omitempty" yaml:"brand,omitempty"`
	Images        []string  `json:"images" yaml:"images"`
	Tags          []string  `json:"tags" yaml:"tags"`
	Stock         int       `json:"stock" yaml:"stock"`
	Rating        float64   `json:"rating" yaml:"rating"`
	ReviewCount   int       `json:"reviewCount" yaml:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// SearchableText joins every text field a free-text query may hit, lowercased
func (p Product) SearchableText() string {
	parts := make([]string, 0, 4+len(p.Tags))
	for _, field := range []string{p.Name, p.Description, p.Brand, p.Category} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	parts = append(parts, p.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// InStock reports whether at least one unit is available
func (p Product) InStock() bool {
	return p.Stock > 0
}

// SortKey selects the ordering applied after filtering
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// sortAliases maps the long-form names accepted on input to canonical keys
var sortAliases = map[string]SortKey{
	"relevance":         SortRelevance,
	"price-low":         SortPriceLow,
	"price-ascending":   SortPriceLow,
	"price_asc":         SortPriceLow,
	"price-high":        SortPriceHigh,
	"price-descending":  SortPriceHigh,
	"price_desc":        SortPriceHigh,
	"rating":            SortRating,
	"rating-descending": SortRating,
	"newest":            SortNewest,
	"newest-first":      SortNewest,
}

// ParseSortKey maps any accepted spelling to a canonical key.
// Unknown or empty input yields SortRelevance.
func ParseSortKey(s string) SortKey {
	if key, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return key
	}
	return SortRelevance
}

// PriceRange is an inclusive [Min, Max] price interval
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range, bounds included
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// SearchFilters describes a catalog query
type SearchFilters struct {
	Query      string      `json:"query"`
	Category   string      `json:"category,omitempty"`
	Brand      string      `json:"brand,omitempty"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	MinRating  *float64    `json:"minRating,omitempty"`
	InStock    bool        `json:"inStock,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	SortBy     SortKey     `json:"sortBy,omitempty"`
}

// Preferences carries optional user preferences used for ranking
type Preferences struct {
	PreferredBrands     []string    `json:"preferredBrands,omitempty"`
	PreferredCategories []string    `json:"preferredCategories,omitempty"`
	PriceRange          *PriceRange `json:"priceRange,omitempty"`
}

// FilterSuggestions lists the facets observed in a catalog
type FilterSuggestions struct {
	Categories []string   `json:"categories"`
	Brands     []string   `json:"brands"`
	Tags       []string   `json:"tags"`
	PriceRange PriceRange `json:"priceRange"`
}

// ProductPage is one page of a filtered product listing
type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// SearchRequest represents a paginated product search.
// Filter fields are inlined in the JSON body.
type SearchRequest struct {
	SearchFilters
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// RankRequest represents a preference-aware ranking request
type RankRequest struct {
	Query       string       `json:"query"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}
