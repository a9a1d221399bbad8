// Package category holds the fixed set of topical buckets used to partition
// prompts and historical performance, and the classifier that assigns a
// prompt to one of them.
package category

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Names of the built-in categories, in declaration order.
const (
	ElectricVehicles   = "Electric Vehicles"
	AITechnology       = "AI/Technology"
	ClimateEnvironment = "Climate/Environment"
	BusinessEconomics  = "Business/Economics"
	GeneralTechnical   = "General Technical"

	// Default is used when no keyword of any profile occurs in the prompt.
	Default = "General"
)

// Profile is a named category with its ordered keyword list.
type Profile struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// profiles is defined once and never mutated; All returns copies.
var profiles = []Profile{
	{Name: ElectricVehicles, Keywords: []string{
		"electric vehicle", "electric car", "ev", "evs", "vehicle", "automotive", "car", "cars",
		"battery", "batteries", "charging", "tesla", "hybrid",
	}},
	{Name: AITechnology, Keywords: []string{
		"artificial intelligence", "ai", "machine learning", "neural", "algorithm",
		"deep learning", "data", "software", "automation", "chatbot",
	}},
	{Name: ClimateEnvironment, Keywords: []string{
		"climate", "environment", "renewable", "sustainab", "carbon", "emission",
		"green", "solar", "wind", "pollution",
	}},
	{Name: BusinessEconomics, Keywords: []string{
		"business", "econom", "market", "finance", "startup", "enterprise",
		"revenue", "profit", "strateg", "investment", "productivity", "corporation",
	}},
	{Name: GeneralTechnical, Keywords: []string{
		"technical", "system", "process", "method", "principle", "concept", "theory",
		"research", "quantum", "cybersecurity", "blockchain", "computing",
	}},
}

// shortKeyword is the length up to which a keyword must match a whole word,
// so that "ai" does not fire inside "said".
const shortKeyword = 3

// All returns the built-in profiles in declaration order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = Profile{Name: p.Name, Keywords: append([]string(nil), p.Keywords...)}
	}
	return out
}

// Names returns the built-in category names in declaration order, followed
// by the default category.
func Names() []string {
	names := make([]string, 0, len(profiles)+1)
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return append(names, Default)
}

// Known reports whether name is a built-in category or the default.
func Known(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Match is the keyword count of one profile for a prompt.
type Match struct {
	Category string
	Hits     int
}

// Score counts case-insensitive occurrences of every keyword of every
// profile in prompt, in declaration order. Punctuation is treated as a word
// break, keywords longer than three characters match as substrings and
// shorter ones only as whole words.
func Score(prompt string) []Match {
	words := strings.FieldsFunc(cases.Fold().String(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	text := " " + strings.Join(words, " ") + " "

	matches := make([]Match, len(profiles))
	for i, p := range profiles {
		matches[i].Category = p.Name
		for _, kw := range p.Keywords {
			if utf8.RuneCountInString(kw) <= shortKeyword {
				matches[i].Hits += countWord(words, kw)
				continue
			}
			matches[i].Hits += strings.Count(text, kw)
		}
	}
	return matches
}

func countWord(words []string, kw string) int {
	n := 0
	for _, w := range words {
		if w == kw {
			n++
		}
	}
	return n
}

// Classify returns the category with the most keyword hits. Ties go to the
// profile declared first; zero hits everywhere yields Default.
func Classify(prompt string) string {
	best, bestHits := Default, 0
	for _, m := range Score(prompt) {
		if m.Hits > bestHits {
			best, bestHits = m.Category, m.Hits
		}
	}
	return best
}
