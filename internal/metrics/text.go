package metrics

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// stopwords are excluded when measuring topical overlap.
var stopwords = toSet(
	"a", "about", "above", "after", "again", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "because", "been", "before", "being", "between", "both", "but", "by",
	"can", "could", "did", "do", "does", "doing", "down", "during",
	"each", "few", "for", "from", "further", "had", "has", "have", "having", "he", "her", "here",
	"hers", "him", "his", "how", "i", "if", "in", "into", "is", "it", "its", "itself",
	"just", "me", "more", "most", "my", "no", "nor", "not", "now", "of", "off", "on", "once",
	"only", "or", "other", "our", "ours", "out", "over", "own", "same", "she", "should", "so",
	"some", "such", "than", "that", "the", "their", "them", "then", "there", "these", "they",
	"this", "those", "through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"would", "you", "your", "yours", "explain", "describe", "tell", "please",
)

// Normalize applies NFKC normalization and Unicode case folding. A fresh
// Caser is used per call because Casers carry state.
func Normalize(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// Words splits normalized text into word tokens made of letters, digits and
// inner apostrophes.
func Words(s string) []string {
	fields := strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Stem reduces an already normalized word to a crude stem so that simple
// inflections ("vehicles", "vehicle") compare equal.
func Stem(w string) string {
	w = strings.TrimSuffix(w, "'s")
	for _, rule := range stemRules {
		if strings.HasSuffix(w, rule.suffix) && len(w)-len(rule.suffix) >= 3 {
			w = w[:len(w)-len(rule.suffix)] + rule.repl
			break
		}
	}
	if len(w) > 4 && strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	return w
}

var stemRules = []struct{ suffix, repl string }{
	{"izations", "ize"},
	{"ization", "ize"},
	{"ational", "ate"},
	{"ations", "ate"},
	{"ation", "ate"},
	{"ments", ""},
	{"ment", ""},
	{"ness", ""},
	{"ings", ""},
	{"ing", ""},
	{"ies", "y"},
	{"sses", "ss"},
	{"edly", ""},
	{"ed", ""},
	{"ly", ""},
	{"ss", "ss"},
	{"s", ""},
}

// IsStopword reports whether the normalized word carries no topical signal.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// SignificantStems returns the set of stems of non-stopword tokens in s.
func SignificantStems(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(s) {
		if len(w) < 2 || IsStopword(w) {
			continue
		}
		set[Stem(w)] = struct{}{}
	}
	return set
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
