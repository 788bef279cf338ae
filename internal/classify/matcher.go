// Package classify maps merchant text to budget categories.
//
// The matcher is deliberately a pluggable strategy: the ledger only depends
// on Classifier, so the substring heuristic can be replaced by a smarter
// model without touching the rest of the system.
package classify

import (
	"strings"

	"spokoj/internal/core"
)

// Classifier suggests a category for a piece of merchant text.
type Classifier interface {
	// Match returns the category id for the first mapping whose pattern
	// is contained in text, or ok=false when nothing matches.
	Match(text string) (categoryID string, ok bool)
}

// SubstringMatcher matches learned lowercase patterns by containment.
// Search order is insertion order, first match wins.
type SubstringMatcher struct {
	mappings []core.MerchantMapping
}

// NewSubstringMatcher builds a matcher over the given mappings. The slice is
// not copied; callers hand in a snapshot.
func NewSubstringMatcher(mappings []core.MerchantMapping) *SubstringMatcher {
	return &SubstringMatcher{mappings: mappings}
}

// Match implements Classifier.
func (m *SubstringMatcher) Match(text string) (string, bool) {
	needle := strings.ToLower(text)
	for _, mapping := range m.mappings {
		if mapping.Pattern == "" {
			continue
		}
		if strings.Contains(needle, strings.ToLower(mapping.Pattern)) {
			return mapping.CategoryID, true
		}
	}
	return "", false
}

// Upsert adds or replaces a mapping by case-insensitive pattern equality and
// returns the updated list. An existing mapping keeps its position so match
// precedence is stable; new mappings are appended. The stored pattern is
// lowercased.
func Upsert(mappings []core.MerchantMapping, mapping core.MerchantMapping) []core.MerchantMapping {
	mapping.Pattern = strings.ToLower(strings.TrimSpace(mapping.Pattern))
	for i, existing := range mappings {
		if strings.EqualFold(existing.Pattern, mapping.Pattern) {
			mappings[i] = mapping
			return mappings
		}
	}
	return append(mappings, mapping)
}
