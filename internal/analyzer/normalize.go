package analyzer

import (
	"strings"
)

// functionWords are removed during normalization when the remaining text
// still holds at least two tokens. Conjunctions like "and" and "then" are
// deliberately absent: the complexity heuristics depend on them.
var functionWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "on": {},
	"at": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"for": {}, "with": {}, "our": {}, "my": {}, "your": {}, "please": {},
}

// Normalize produces the canonical form of a request used for all cache
// keys: lowercase, whitespace collapsed, trailing sentence punctuation
// stripped, and function words removed when at least two tokens survive.
// Identical normalized forms must produce identical analyses.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	lowered = strings.TrimRight(lowered, ".!?;:,")

	tokens := strings.Fields(lowered)
	if len(tokens) == 0 {
		return ""
	}

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, skip := functionWords[tok]; skip {
			continue
		}
		filtered = append(filtered, tok)
	}
	if len(filtered) < 2 {
		return strings.Join(tokens, " ")
	}
	return strings.Join(filtered, " ")
}
