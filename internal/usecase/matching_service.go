package usecase

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

// Term scoring weights
const (
	weightTermMatch = 3 // Term appears anywhere in the searchable text
	weightWordStart = 1 // Term also starts a word
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableDebugLogging bool
}

// MatchingService scores catalog products against chat search terms and
// resolves product names mentioned in chat commands
type MatchingService struct {
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	return &MatchingService{
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// SearchCatalog returns the products with a positive term score, best first.
// Equal scores keep catalog order.
func (s *MatchingService) SearchCatalog(catalog []domain.Product, terms []string) []domain.Product {
	type scored struct {
		product domain.Product
		score   int
	}

	matches := make([]scored, 0, len(catalog))
	for _, p := range catalog {
		score := scoreTerms(p, terms)
		if s.enableDebugLogging {
			log.Debug().Str("component", "match").Str("product", p.Name).Int("score", score).Msg("scored product")
		}
		if score > 0 {
			matches = append(matches, scored{product: p, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]domain.Product, len(matches))
	for i, m := range matches {
		results[i] = m.product
	}
	return results
}

// scoreTerms adds weightTermMatch for every term found in the product text
// and weightWordStart when the term begins a word.
func scoreTerms(p domain.Product, terms []string) int {
	text := p.SearchableText()
	score := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(text, term) {
			score += weightTermMatch
		}
		if strings.HasPrefix(text, term) || strings.Contains(text, " "+term) {
			score += weightWordStart
		}
	}
	return score
}

// FindByName returns the first catalog product whose name contains name,
// ignoring case. An empty name never matches.
func (s *MatchingService) FindByName(catalog []domain.Product, name string) (*domain.Product, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}
	for i := range catalog {
		if strings.Contains(strings.ToLower(catalog[i].Name), needle) {
			p := catalog[i]
			return &p, true
		}
	}
	return nil, false
}

// FindInCart returns the first cart line whose product name contains name
func (s *MatchingService) FindInCart(cart []domain.CartItem, name string) (*domain.CartItem, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}
	for i := range cart {
		if strings.Contains(strings.ToLower(cart[i].Product.Name), needle) {
			item := cart[i]
			return &item, true
		}
	}
	return nil, false
}

// FindInWishlist returns the first wishlist entry whose product name contains name
func (s *MatchingService) FindInWishlist(wishlist []domain.WishlistItem, name string) (*domain.WishlistItem, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, false
	}
	for i := range wishlist {
		if strings.Contains(strings.ToLower(wishlist[i].Product.Name), needle) {
			item := wishlist[i]
			return &item, true
		}
	}
	return nil, false
}
