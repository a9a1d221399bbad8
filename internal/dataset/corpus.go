// Package dataset provides the prompt corpora driven through the test runner:
// the built-in corpus, the quick subset, and YAML or CSV files on disk.
package dataset

import (
	"github.com/spboyer/modeleval/internal/category"
)

// Prompt is one corpus entry.
type Prompt struct {
	Text             string `yaml:"prompt" json:"prompt"`
	ExpectedCategory string `yaml:"expected_category,omitempty" json:"expected_category,omitempty"`
}

// Corpus is a named, ordered prompt set.
type Corpus struct {
	Name    string   `yaml:"name" json:"name"`
	Prompts []Prompt `yaml:"prompts" json:"prompts"`
}

var builtIn = []Prompt{
	{"Explain the future of electric vehicles and their impact on the automotive industry.", category.ElectricVehicles},
	{"What are the main challenges facing electric vehicle adoption globally?", category.ElectricVehicles},
	{"Compare the environmental benefits of electric vehicles versus traditional cars.", category.ElectricVehicles},

	{"How is artificial intelligence transforming healthcare?", category.AITechnology},
	{"Explain the potential risks and benefits of machine learning in finance.", category.AITechnology},
	{"What role will AI play in education over the next decade?", category.AITechnology},

	{"Describe renewable energy solutions for sustainable development.", category.ClimateEnvironment},
	{"How can businesses reduce their carbon footprint effectively?", category.ClimateEnvironment},
	{"Explain the role of technology in fighting climate change.", category.ClimateEnvironment},

	{"What factors drive successful digital transformation in enterprises?", category.BusinessEconomics},
	{"Analyze the impact of remote work on business productivity.", category.BusinessEconomics},
	{"How do startups compete with established corporations?", category.BusinessEconomics},

	{"Explain quantum computing in simple terms.", category.GeneralTechnical},
	{"What are the key principles of cybersecurity?", category.GeneralTechnical},
	{"How does blockchain technology work and what are its applications?", category.GeneralTechnical},
}

var quick = []Prompt{
	{"Explain electric vehicle adoption challenges", category.ElectricVehicles},
	{"How does AI impact healthcare?", category.AITechnology},
	{"What are climate change solutions?", category.ClimateEnvironment},
	{"Analyze digital transformation strategies", category.BusinessEconomics},
	{"Explain quantum computing basics", category.GeneralTechnical},
}

// BuiltIn returns the full built-in corpus, three prompts per category.
func BuiltIn() Corpus {
	return Corpus{Name: "built-in", Prompts: append([]Prompt(nil), builtIn...)}
}

// Quick returns the five-prompt smoke-test corpus.
func Quick() Corpus {
	return Corpus{Name: "quick", Prompts: append([]Prompt(nil), quick...)}
}

// Limit returns the first n prompts. n <= 0 or n beyond the corpus size keeps
// every prompt.
func (c Corpus) Limit(n int) Corpus {
	if n <= 0 || n >= len(c.Prompts) {
		return c
	}
	return Corpus{Name: c.Name, Prompts: append([]Prompt(nil), c.Prompts[:n]...)}
}

// Texts returns the prompt strings in order.
func (c Corpus) Texts() []string {
	out := make([]string, len(c.Prompts))
	for i, p := range c.Prompts {
		out[i] = p.Text
	}
	return out
}
