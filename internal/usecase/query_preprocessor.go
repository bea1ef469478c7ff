package usecase

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// QueryPreprocessor turns chat utterances into search terms and product names
type QueryPreprocessor struct {
	synonyms           map[string][]string
	enableDebugLogging bool
}

// Splits on anything that is not a lowercase letter or digit
var nonTermPattern = regexp.MustCompile(`[^a-z0-9]+`)

// DefaultSynonyms maps a canonical term to the variants it expands to.
// A term expands when it contains the key or equals one of the variants.
var DefaultSynonyms = map[string][]string{
	"laptop":    {"laptop", "notebook", "ultrabook", "computer", "macbook"},
	"phone":     {"phone", "smartphone", "iphone", "android"},
	"shoes":     {"shoes", "sneakers", "trainer", "running", "footwear"},
	"headphone": {"headphone", "headphones", "earbud", "earbuds", "earphone", "earphones", "audio"},
	"camera":    {"camera", "dslr", "mirrorless", "lens", "photography"},
	"chair":     {"chair", "office", "ergonomic", "seat"},
	"watch":     {"watch", "smartwatch", "wearable"},
}

// searchKeywords are tried in order; the query is whatever follows the first hit
var searchKeywords = []string{"search for", "find", "show me", "looking for"}

// productNameStopWords are command words stripped before product name lookup
var productNameStopWords = map[string]bool{
	"add":      true,
	"to":       true,
	"cart":     true,
	"wishlist": true,
	"buy":      true,
	"purchase": true,
	"save":     true,
	"favorite": true,
	"remove":   true,
	"delete":   true,
	"from":     true,
}

// NewQueryPreprocessor creates a preprocessor. A nil synonym table selects
// DefaultSynonyms.
func NewQueryPreprocessor(synonyms map[string][]string, enableDebugLogging bool) *QueryPreprocessor {
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}
	return &QueryPreprocessor{
		synonyms:           synonyms,
		enableDebugLogging: enableDebugLogging,
	}
}

// Tokenize lowercases text and splits it into alphanumeric terms
func (p *QueryPreprocessor) Tokenize(text string) []string {
	parts := nonTermPattern.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			terms = append(terms, part)
		}
	}
	return terms
}

// ExpandSynonyms adds every synonym group a term belongs to. Output keeps
// first-seen order and holds no duplicates.
func (p *QueryPreprocessor) ExpandSynonyms(terms []string) []string {
	seen := make(map[string]bool)
	expanded := make([]string, 0, len(terms))
	add := func(term string) {
		if !seen[term] {
			seen[term] = true
			expanded = append(expanded, term)
		}
	}

	for _, term := range terms {
		add(term)
		for _, key := range sortedKeys(p.synonyms) {
			variants := p.synonyms[key]
			if strings.Contains(term, key) || containsString(variants, term) {
				for _, v := range variants {
					add(v)
				}
			}
		}
	}

	if p.enableDebugLogging {
		log.Debug().Str("component", "preprocess").Strs("terms", terms).Strs("expanded", expanded).Msg("expanded search terms")
	}
	return expanded
}

// SearchTerms tokenizes text and expands the tokens through the synonym table
func (p *QueryPreprocessor) SearchTerms(text string) []string {
	return p.ExpandSynonyms(p.Tokenize(text))
}

// ExtractSearchQuery returns the text following the first search keyword found,
// trying keywords in a fixed order. Without a keyword the whole message is
// returned.
func ExtractSearchQuery(message string) string {
	for _, keyword := range searchKeywords {
		if idx := indexFold(message, keyword); idx != -1 {
			return strings.TrimSpace(message[idx+len(keyword):])
		}
	}
	return message
}

// indexFold is a case-insensitive strings.Index for ASCII keywords. The
// returned offset is into s itself, so s keeps its original case.
func indexFold(s, keyword string) int {
	for i := 0; i+len(keyword) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(keyword)], keyword) {
			return i
		}
	}
	return -1
}

// ExtractProductName drops command words from message and rejoins the rest
func ExtractProductName(message string) string {
	words := strings.Fields(message)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if !productNameStopWords[strings.ToLower(word)] {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// sortedKeys gives map iteration a fixed order so expansion is deterministic
func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
