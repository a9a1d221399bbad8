package execution

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"github.com/spboyer/modeleval/internal/category"
)

// Style shapes the offline responses of one model.
type Style struct {
	Intro   string
	Closing string
	// Sentences is how many topical sentences the model emits (1..3).
	Sentences int
}

// DefaultStyles are the styles of the reference models.
var DefaultStyles = map[string]Style{
	"GPT2": {
		Intro:     "Based on my analysis,",
		Closing:   "This analysis reflects a capability for comprehensive reasoning and detailed explanation.",
		Sentences: 3,
	},
	"DistilGPT2": {
		Intro:     "In summary,",
		Closing:   "This response favors efficient processing while keeping informational value.",
		Sentences: 1,
	},
	"T5-Small": {
		Intro:     "To address this topic:",
		Closing:   "The structured approach reflects text-to-text transformation strengths.",
		Sentences: 2,
	},
	"BERT-Base": {
		Intro:     "Understanding the context,",
		Closing:   "This contextual reading highlights bidirectional processing capabilities.",
		Sentences: 2,
	},
}

var fallbackStyle = Style{
	Intro:     "Considering the question,",
	Closing:   "Further detail depends on the specific setting.",
	Sentences: 2,
}

// topicSentences holds candidate passages per category. Each passage is a
// list of sentences; a model emits the first Style.Sentences of them.
var topicSentences = map[string][][]string{
	category.ElectricVehicles: {
		{
			"electric vehicles represent a significant shift in transportation technology.",
			"Growth in EV adoption is driven by environmental concerns, technological advances and supportive policies.",
			"However, charging infrastructure development and battery sustainability must be addressed for widespread adoption.",
		},
		{
			"the electric vehicle transition is reshaping the automotive landscape.",
			"Key factors include improved battery efficiency, declining costs and increasing consumer awareness.",
			"Major automakers are investing heavily, though infrastructure and supply chain challenges remain significant.",
		},
	},
	category.AITechnology: {
		{
			"artificial intelligence is transforming industries through automated decision-making and pattern recognition.",
			"AI applications span from healthcare diagnostics to financial analysis.",
			"Ethical considerations and job displacement concerns require careful management.",
		},
		{
			"machine learning algorithms let systems improve performance through experience.",
			"The technology drives innovation in personalization, predictive analytics and autonomous systems.",
			"It also raises questions about privacy and algorithmic bias.",
		},
	},
	category.ClimateEnvironment: {
		{
			"environmental sustainability requires renewable energy adoption, emissions reduction and resource conservation.",
			"The transition involves technological innovation, policy support and behavioral change across society.",
			"International cooperation is essential for reaching carbon neutrality goals.",
		},
		{
			"climate change mitigation demands urgent action through renewable energy deployment and efficiency improvements.",
			"Solar, wind and hydroelectric power form the backbone of sustainable energy systems.",
			"Storage technology and grid modernization remain open challenges.",
		},
	},
	category.BusinessEconomics: {
		{
			"economic trends reflect interactions between technological advancement, policy decisions and market dynamics.",
			"Understanding these relationships helps inform strategic business decisions.",
			"Companies adapt through innovation, strategic planning and stakeholder engagement.",
		},
		{
			"market analysis reveals shifting consumer preferences and emerging business opportunities.",
			"Financial markets respond to technological disruption, regulatory change and global conditions.",
			"Successful navigation requires careful analysis and risk management.",
		},
	},
	category.GeneralTechnical: {
		{
			"technological innovation drives economic growth and societal transformation.",
			"Emerging technologies such as cloud computing, quantum computing and blockchain create new opportunities.",
			"They also require adaptation in education, workforce development and regulation.",
		},
		{
			"the underlying principles combine established theory with practical engineering methods.",
			"Research continues to refine the core concepts and their applications.",
			"Adoption depends on tooling, standards and skilled practitioners.",
		},
	},
}

// OfflineGenerator produces deterministic, topic-aware responses without any
// network access. The same (model, prompt) always yields the same text.
type OfflineGenerator struct {
	styles  map[string]Style
	latency time.Duration
}

// OfflineOption configures an OfflineGenerator.
type OfflineOption func(*OfflineGenerator)

// WithStyles overrides or adds per-model styles.
func WithStyles(styles map[string]Style) OfflineOption {
	return func(g *OfflineGenerator) {
		for k, v := range styles {
			g.styles[k] = v
		}
	}
}

// WithLatency makes every call wait d, honoring context cancellation.
func WithLatency(d time.Duration) OfflineOption {
	return func(g *OfflineGenerator) { g.latency = d }
}

// NewOfflineGenerator returns a generator seeded with DefaultStyles.
func NewOfflineGenerator(opts ...OfflineOption) *OfflineGenerator {
	g := &OfflineGenerator{styles: make(map[string]Style, len(DefaultStyles))}
	for k, v := range DefaultStyles {
		g.styles[k] = v
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator.
func (g *OfflineGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	if g.latency > 0 {
		t := time.NewTimer(g.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", inferenceError(model, ctx.Err())
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", inferenceError(model, err)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", inferenceError(model, fmt.Errorf("empty prompt"))
	}

	style, ok := g.styles[model]
	if !ok {
		style = fallbackStyle
	}
	n := min(max(style.Sentences, 1), 3)

	var body []string
	if passages, ok := topicSentences[category.Classify(prompt)]; ok {
		p := passages[pick(model, prompt, len(passages))]
		body = p[:n]
	} else {
		body = genericSentences(prompt)[:n]
	}

	parts := make([]string, 0, n+2)
	parts = append(parts, style.Intro+" "+body[0])
	parts = append(parts, body[1:]...)
	parts = append(parts, style.Closing)
	return strings.Join(parts, " "), nil
}

func pick(model, prompt string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return int(h.Sum32() % uint32(n))
}

// genericSentences builds a response around up to three salient prompt words.
func genericSentences(prompt string) []string {
	var keys []string
	for _, w := range strings.FieldsFunc(prompt, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	}) {
		if len([]rune(w)) >= 4 || (len(w) > 0 && unicode.IsUpper([]rune(w)[0])) {
			keys = append(keys, strings.ToLower(w))
		}
		if len(keys) == 3 {
			break
		}
	}
	topic := "the topic discussed"
	if len(keys) > 0 {
		topic = strings.Join(keys, ", ")
	}
	return []string{
		fmt.Sprintf("regarding %s, multiple factors contribute to the current situation.", topic),
		"Interconnected challenges and opportunities call for a clear understanding of each factor.",
		"Effective answers weigh immediate concerns against long-term implications.",
	}
}
