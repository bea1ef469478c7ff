package usecase

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

const (
	clarifyMaxLength  = 3
	implicitMaxLength = 20
	topMatchCount     = 3
)

// Selector picks an index in [0, n). Tests inject a fixed selector.
type Selector func(n int) int

// intentRule is one entry of the decision list: the first rule whose Match
// returns true produces the reply.
type intentRule struct {
	Name   string
	Match  func(in *intentInput) bool
	Handle func(in *intentInput) domain.AssistantReply
}

// intentInput is the per-call context shared by the rules
type intentInput struct {
	message string // trimmed original text
	lower   string // trimmed, lowercased text
	catalog []domain.Product
	state   domain.ShoppingState
}

// commandWords mark a message as a cart or wishlist command rather than an
// implicit product query
var commandWords = map[string]bool{
	"cart":      true,
	"wishlist":  true,
	"favorite":  true,
	"favorites": true,
	"buy":       true,
	"purchase":  true,
	"save":      true,
	"add":       true,
	"remove":    true,
	"delete":    true,
}

// DefaultReplies are used when no rule recognizes the message
var DefaultReplies = []string{
	"I can help you search for products, manage your cart and wishlist, or answer questions about our products. What would you like to do?",
	"I'm here to help you shop! Try saying things like 'find headphones', 'add to cart', or 'show my wishlist'.",
	"What can I help you find today? I can search products, add items to your cart, or manage your wishlist.",
	"I'm your shopping assistant! Tell me what you're looking for or what you'd like to do.",
	"Ready to help you shop! You can ask me to find products, add items to cart, or check your wishlist.",
}

const clarificationReply = "I need a bit more information to help you. Could you tell me what you're looking for? For example: 'search for headphones' or 'show me laptops'"

// IntentClassifier routes a chat message to a reply and optional action
// using keyword heuristics. It never mutates the catalog or the shopping
// state it is given.
type IntentClassifier struct {
	preprocessor *QueryPreprocessor
	matcher      *MatchingService
	choose       Selector
	rules        []intentRule
}

// NewIntentClassifier wires the decision list. A nil choose selects uniformly
// at random.
func NewIntentClassifier(preprocessor *QueryPreprocessor, matcher *MatchingService, choose Selector) *IntentClassifier {
	if preprocessor == nil {
		preprocessor = NewQueryPreprocessor(nil, false)
	}
	if matcher == nil {
		matcher = NewMatchingService(MatchConfig{})
	}
	if choose == nil {
		choose = rand.IntN
	}

	c := &IntentClassifier{
		preprocessor: preprocessor,
		matcher:      matcher,
		choose:       choose,
	}
	c.rules = c.defaultRules()
	return c
}

// Classify runs the decision list over message. Every path yields a reply.
func (c *IntentClassifier) Classify(message string, catalog []domain.Product, state domain.ShoppingState) domain.AssistantReply {
	trimmed := strings.TrimSpace(message)
	in := &intentInput{
		message: trimmed,
		lower:   strings.ToLower(trimmed),
		catalog: catalog,
		state:   state,
	}

	for _, rule := range c.rules {
		if rule.Match(in) {
			log.Debug().Str("component", "intent").Str("rule", rule.Name).Msg("rule matched")
			return rule.Handle(in)
		}
	}
	return c.defaultReply(in)
}

func (c *IntentClassifier) defaultRules() []intentRule {
	return []intentRule{
		{Name: "clarify", Match: isTooShort, Handle: clarify},
		{Name: "implicit_search", Match: c.isImplicitQuery, Handle: c.implicitSearch},
		{Name: "search", Match: containsAny("search", "find", "show me", "looking for"), Handle: c.explicitSearch},
		{Name: "add_to_cart", Match: containsAny("add to cart", "buy", "purchase"), Handle: c.addToCart},
		{Name: "add_to_wishlist", Match: containsAny("add to wishlist", "save", "favorite"), Handle: c.addToWishlist},
		{Name: "remove_from_cart", Match: containsAny("remove from cart", "delete from cart"), Handle: c.removeFromCart},
		{Name: "remove_from_wishlist", Match: containsAny("remove from wishlist", "delete from wishlist"), Handle: c.removeFromWishlist},
		{Name: "cart_status", Match: containsAny("cart"), Handle: cartStatus},
		{Name: "wishlist_status", Match: containsAny("wishlist", "favorites"), Handle: wishlistStatus},
		{Name: "default", Match: func(*intentInput) bool { return true }, Handle: c.defaultReply},
	}
}

func containsAny(keywords ...string) func(in *intentInput) bool {
	return func(in *intentInput) bool {
		for _, k := range keywords {
			if strings.Contains(in.lower, k) {
				return true
			}
		}
		return false
	}
}

func isTooShort(in *intentInput) bool {
	return utf8.RuneCountInString(in.message) <= clarifyMaxLength
}

func clarify(*intentInput) domain.AssistantReply {
	return domain.AssistantReply{Content: clarificationReply}
}

// isImplicitQuery treats short messages without search verbs or cart and
// wishlist commands as a bare product query
func (c *IntentClassifier) isImplicitQuery(in *intentInput) bool {
	if utf8.RuneCountInString(in.message) > implicitMaxLength {
		return false
	}
	if containsAny("search", "find", "show")(in) {
		return false
	}
	for _, token := range c.preprocessor.Tokenize(in.lower) {
		if commandWords[token] {
			return false
		}
	}
	return true
}

func (c *IntentClassifier) implicitSearch(in *intentInput) domain.AssistantReply {
	results := c.matcher.SearchCatalog(in.catalog, c.preprocessor.SearchTerms(in.message))
	if len(results) == 0 {
		return domain.AssistantReply{
			Content: fmt.Sprintf("I couldn't find any exact matches for %q. Try a related term like \"headphones\", \"laptop\", or \"shoes\" and I'll search again.", in.message),
		}
	}
	return domain.AssistantReply{
		Content: fmt.Sprintf("I found %d products related to %q. Top matches: %s", len(results), in.message, topNames(results)),
		Action:  &domain.ChatAction{Type: domain.ActionSearch, Query: in.message, Results: results},
	}
}

func (c *IntentClassifier) explicitSearch(in *intentInput) domain.AssistantReply {
	query := ExtractSearchQuery(in.message)
	results := c.matcher.SearchCatalog(in.catalog, c.preprocessor.SearchTerms(query))

	content := fmt.Sprintf("I found %d products for %q.", len(results), query)
	if len(results) > 0 {
		content += " Top matches: " + topNames(results)
	}
	return domain.AssistantReply{
		Content: content,
		Action:  &domain.ChatAction{Type: domain.ActionSearch, Query: query, Results: results},
	}
}

func (c *IntentClassifier) addToCart(in *intentInput) domain.AssistantReply {
	name := ExtractProductName(in.message)
	product, ok := c.matcher.FindByName(in.catalog, name)
	if !ok {
		return notFoundReply(name)
	}
	return domain.AssistantReply{
		Content: fmt.Sprintf("I've added %q to your cart! You now have %d items in your cart.", product.Name, len(in.state.Cart)+1),
		Action:  &domain.ChatAction{Type: domain.ActionAddToCart, Product: product},
	}
}

func (c *IntentClassifier) addToWishlist(in *intentInput) domain.AssistantReply {
	name := ExtractProductName(in.message)
	product, ok := c.matcher.FindByName(in.catalog, name)
	if !ok {
		return notFoundReply(name)
	}
	return domain.AssistantReply{
		Content: fmt.Sprintf("I've added %q to your wishlist! You now have %d items in your wishlist.", product.Name, len(in.state.Wishlist)+1),
		Action:  &domain.ChatAction{Type: domain.ActionAddToWishlist, Product: product},
	}
}

func (c *IntentClassifier) removeFromCart(in *intentInput) domain.AssistantReply {
	name := ExtractProductName(in.message)
	item, ok := c.matcher.FindInCart(in.state.Cart, name)
	if !ok {
		return domain.AssistantReply{Content: fmt.Sprintf("I couldn't find %q in your cart.", name)}
	}
	product := item.Product
	return domain.AssistantReply{
		Content: fmt.Sprintf("I've removed %q from your cart.", product.Name),
		Action:  &domain.ChatAction{Type: domain.ActionRemoveFromCart, Product: &product},
	}
}

func (c *IntentClassifier) removeFromWishlist(in *intentInput) domain.AssistantReply {
	name := ExtractProductName(in.message)
	item, ok := c.matcher.FindInWishlist(in.state.Wishlist, name)
	if !ok {
		return domain.AssistantReply{Content: fmt.Sprintf("I couldn't find %q in your wishlist.", name)}
	}
	product := item.Product
	return domain.AssistantReply{
		Content: fmt.Sprintf("I've removed %q from your wishlist.", product.Name),
		Action:  &domain.ChatAction{Type: domain.ActionRemoveFromWishlist, Product: &product},
	}
}

func cartStatus(in *intentInput) domain.AssistantReply {
	if len(in.state.Cart) == 0 {
		return domain.AssistantReply{Content: "Your cart is empty. Would you like me to help you find some products?"}
	}
	quantity, total := in.state.CartTotals()
	names := make([]string, len(in.state.Cart))
	for i, item := range in.state.Cart {
		names[i] = item.Product.Name
	}
	return domain.AssistantReply{
		Content: fmt.Sprintf("You have %d items in your cart worth $%.2f. Items: %s", quantity, total, strings.Join(names, ", ")),
	}
}

func wishlistStatus(in *intentInput) domain.AssistantReply {
	if len(in.state.Wishlist) == 0 {
		return domain.AssistantReply{Content: "Your wishlist is empty. Would you like me to help you find some products to save for later?"}
	}
	names := make([]string, len(in.state.Wishlist))
	for i, item := range in.state.Wishlist {
		names[i] = item.Product.Name
	}
	return domain.AssistantReply{
		Content: fmt.Sprintf("You have %d items in your wishlist: %s", len(in.state.Wishlist), strings.Join(names, ", ")),
	}
}

func (c *IntentClassifier) defaultReply(*intentInput) domain.AssistantReply {
	idx := c.choose(len(DefaultReplies))
	if idx < 0 || idx >= len(DefaultReplies) {
		idx = 0
	}
	return domain.AssistantReply{Content: DefaultReplies[idx]}
}

func notFoundReply(name string) domain.AssistantReply {
	return domain.AssistantReply{
		Content: fmt.Sprintf("I couldn't find a product matching %q. Could you be more specific?", name),
	}
}

func topNames(products []domain.Product) string {
	n := min(len(products), topMatchCount)
	names := make([]string, n)
	for i := range n {
		names[i] = products[i].Name
	}
	return strings.Join(names, ", ")
}
