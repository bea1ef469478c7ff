package usecase

import (
	"sort"
	"strings"

	"github.com/shopassist/backend/internal/domain"
)

// Relevance score bands
const (
	scoreExactName   = 50
	scoreNameContain = 30
	scoreCategory    = 20
	scoreBrand       = 15
	scoreTag         = 10
	scoreDescription = 5
)

// Preference bonuses used by RankProducts
const (
	bonusPreferredBrand    = 25
	bonusPreferredCategory = 20
	bonusPreferredPrice    = 15
	bonusInStock           = 5
)

const maxRating = 5.0

// NormalizeFilters returns a cleaned copy of filters: trimmed query, an
// ordered non-negative price range, a rating bound within [0, 5] and a
// canonical sort key.
func NormalizeFilters(filters domain.SearchFilters) domain.SearchFilters {
	out := filters
	out.Query = strings.TrimSpace(filters.Query)
	out.Category = strings.TrimSpace(filters.Category)
	out.Brand = strings.TrimSpace(filters.Brand)
	out.SortBy = domain.ParseSortKey(string(filters.SortBy))

	if filters.PriceRange != nil {
		r := *filters.PriceRange
		if r.Min > r.Max {
			r.Min, r.Max = r.Max, r.Min
		}
		if r.Min < 0 {
			r.Min = 0
		}
		if r.Max < 0 {
			r.Max = 0
		}
		out.PriceRange = &r
	}

	if filters.MinRating != nil {
		rating := min(max(*filters.MinRating, 0), maxRating)
		out.MinRating = &rating
	}

	if len(filters.Tags) > 0 {
		tags := make([]string, 0, len(filters.Tags))
		for _, tag := range filters.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		out.Tags = tags
	}

	return out
}

// FilterProducts narrows catalog to the products matching filters and orders
// them by filters.SortBy. The catalog is never modified.
func FilterProducts(catalog []domain.Product, filters domain.SearchFilters) []domain.Product {
	filters = NormalizeFilters(filters)

	filtered := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if matchesFilters(p, filters) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, filters.SortBy, filters.Query)
	return filtered
}

// matchesFilters applies every predicate of an already normalized filter set
func matchesFilters(p domain.Product, f domain.SearchFilters) bool {
	if f.Query != "" && !matchesQuery(p, f.Query) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.PriceRange != nil && !f.PriceRange.Contains(p.Price) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
		return false
	}
	if f.InStock && !p.InStock() {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}

// matchesQuery keeps a product when ANY whitespace token of the query is a
// substring of its searchable text.
func matchesQuery(p domain.Product, query string) bool {
	text := p.SearchableText()
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func hasAnyTag(p domain.Product, want []string) bool {
	for _, tag := range p.Tags {
		for _, w := range want {
			if strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}

// sortProducts orders products in place. All orderings are stable so equal
// keys keep catalog order.
func sortProducts(products []domain.Product, sortBy domain.SortKey, query string) {
	switch sortBy {
	case domain.SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case domain.SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case domain.SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].Rating != products[j].Rating {
				return products[i].Rating > products[j].Rating
			}
			return products[i].ReviewCount > products[j].ReviewCount
		})
	case domain.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default:
		if query == "" {
			return
		}
		sortByScore(products, func(i int) int { return CalculateRelevanceScore(products[i], query) })
	}
}

// sortByScore stably sorts products by a descending per-product score.
// Scores are computed once up front since the sort moves elements.
func sortByScore(products []domain.Product, score func(i int) int) {
	type scored struct {
		product domain.Product
		score   int
	}
	items := make([]scored, len(products))
	for i := range products {
		items[i] = scored{product: products[i], score: score(i)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	for i := range items {
		products[i] = items[i].product
	}
}

// CalculateRelevanceScore weighs how well product matches query. The bands
// are additive except exact-name versus name-contains.
func CalculateRelevanceScore(product domain.Product, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	name := strings.ToLower(product.Name)
	if name == q {
		score += scoreExactName
	} else if strings.Contains(name, q) {
		score += scoreNameContain
	}

	if strings.Contains(strings.ToLower(product.Category), q) {
		score += scoreCategory
	}
	if product.Brand != "" && strings.Contains(strings.ToLower(product.Brand), q) {
		score += scoreBrand
	}
	for _, tag := range product.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score += scoreTag
		}
	}
	if strings.Contains(strings.ToLower(product.Description), q) {
		score += scoreDescription
	}

	return score
}

// RankProducts orders the whole catalog by query relevance plus preference
// bonuses. Ties keep catalog order.
func RankProducts(catalog []domain.Product, query string, prefs *domain.Preferences) []domain.Product {
	ranked := make([]domain.Product, len(catalog))
	copy(ranked, catalog)

	var priceRange *domain.PriceRange
	if prefs != nil && prefs.PriceRange != nil {
		normalized := NormalizeFilters(domain.SearchFilters{PriceRange: prefs.PriceRange})
		priceRange = normalized.PriceRange
	}

	sortByScore(ranked, func(i int) int {
		p := ranked[i]
		score := 0
		if query != "" {
			score += CalculateRelevanceScore(p, query)
		}
		if prefs != nil {
			if p.Brand != "" && containsFold(prefs.PreferredBrands, p.Brand) {
				score += bonusPreferredBrand
			}
			if containsFold(prefs.PreferredCategories, p.Category) {
				score += bonusPreferredCategory
			}
			if priceRange != nil && priceRange.Contains(p.Price) {
				score += bonusPreferredPrice
			}
		}
		if p.InStock() {
			score += bonusInStock
		}
		return score
	})

	return ranked
}

// GetFilterSuggestions derives the distinct facets of catalog, in first-seen
// order. An empty catalog yields a zero price range.
func GetFilterSuggestions(catalog []domain.Product) domain.FilterSuggestions {
	suggestions := domain.FilterSuggestions{
		Categories: []string{},
		Brands:     []string{},
		Tags:       []string{},
	}
	if len(catalog) == 0 {
		return suggestions
	}

	seenCategory := make(map[string]bool)
	seenBrand := make(map[string]bool)
	seenTag := make(map[string]bool)

	suggestions.PriceRange = domain.PriceRange{Min: catalog[0].Price, Max: catalog[0].Price}
	for _, p := range catalog {
		if !seenCategory[p.Category] {
			seenCategory[p.Category] = true
			suggestions.Categories = append(suggestions.Categories, p.Category)
		}
		if p.Brand != "" && !seenBrand[p.Brand] {
			seenBrand[p.Brand] = true
			suggestions.Brands = append(suggestions.Brands, p.Brand)
		}
		for _, tag := range p.Tags {
			if !seenTag[tag] {
				seenTag[tag] = true
				suggestions.Tags = append(suggestions.Tags, tag)
			}
		}
		suggestions.PriceRange.Min = min(suggestions.PriceRange.Min, p.Price)
		suggestions.PriceRange.Max = max(suggestions.PriceRange.Max, p.Price)
	}

	return suggestions
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
