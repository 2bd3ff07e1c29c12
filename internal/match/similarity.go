package match

import (
	"strings"

	"github.com/agext/levenshtein"
)

// legalSuffixes maps common legal-form spellings to a canonical token so
// "Acme Corporation" and "Acme Corp" normalize identically.
var legalSuffixes = map[string]string{
	"corporation":  "corp",
	"corp":         "corp",
	"co":           "co",
	"company":      "co",
	"incorporated": "inc",
	"inc":          "inc",
	"limited":      "ltd",
	"ltd":          "ltd",
	"llc":          "llc",
	"llp":          "llp",
	"plc":          "plc",
	"gmbh":         "gmbh",
	"sa":           "sa",
	"ag":           "ag",
}

// Normalize lowercases an organization name, strips punctuation, collapses
// whitespace, and canonicalizes legal-form suffixes.
func Normalize(name string) string {
	return strings.Join(normalizeTokens(name), " ")
}

func normalizeTokens(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'&")
		if f == "" {
			continue
		}
		if canonical, ok := legalSuffixes[f]; ok {
			f = canonical
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Similarity returns a ratio in [0,1] between two organization names.
//
// It takes the higher of two measures on the normalized names: edit-distance
// similarity of the joined strings, and a token-set containment score. The
// containment score handles the common case where one report uses a short
// form of the other's name ("Qantas" vs "Qantas Airways"): a strict token
// subset scores 1.0.
func Similarity(a, b string) float64 {
	tokensA := normalizeTokens(a)
	tokensB := normalizeTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	edit := levenshtein.Similarity(strings.Join(tokensA, " "), strings.Join(tokensB, " "), nil)
	containment := tokenContainment(tokensA, tokensB)
	if containment > edit {
		return containment
	}
	return edit
}

// tokenContainment scores how much the smaller token set is contained in the
// larger one: full containment is 1.0, no overlap is 0.
func tokenContainment(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	smaller, larger := setA, setB
	if len(setB) < len(setA) {
		smaller, larger = setB, setA
	}

	shared := 0
	for t := range smaller {
		if larger[t] {
			shared++
		}
	}
	if len(smaller) == 0 {
		return 0
	}
	return float64(shared) / float64(len(smaller))
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
