package learning

import (
	_ "embed"
	"fmt"
	"strings"

	"iqscalar-service/internal/apperror"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

type Example struct {
	Type        string `yaml:"type" json:"type"`
	Question    string `yaml:"question" json:"question"`
	Answer      string `yaml:"answer" json:"answer"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

type Topic struct {
	Slug        string    `yaml:"slug" json:"slug"`
	Title       string    `yaml:"title" json:"title"`
	Category    string    `yaml:"category" json:"category"`
	Description string    `yaml:"description" json:"description"`
	Overview    string    `yaml:"overview" json:"overview"`
	KeyConcepts []string  `yaml:"keyConcepts" json:"keyConcepts"`
	Strategies  []string  `yaml:"strategies" json:"strategies"`
	Examples    []Example `yaml:"examples" json:"examples"`
}

// Summary is the short form returned by topic listings
type Summary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type Library struct {
	topics []Topic
	bySlug map[string]int
}

func Default() (*Library, error) {
	return Parse(defaultContent)
}

// Parse reads a YAML document with a top-level topics list. Slugs must be
// present and unique.
func Parse(data []byte) (*Library, error) {
	var doc struct {
		Topics []Topic `yaml:"topics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse learning content: %w", err)
	}

	lib := &Library{topics: doc.Topics, bySlug: make(map[string]int, len(doc.Topics))}
	for i, t := range doc.Topics {
		if t.Slug == "" {
			return nil, fmt.Errorf("learning topic %d has no slug", i)
		}
		if _, dup := lib.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("duplicate learning topic %q", t.Slug)
		}
		lib.bySlug[t.Slug] = i
	}
	return lib, nil
}

func (l *Library) Summaries() []Summary {
	out := make([]Summary, len(l.topics))
	for i, t := range l.topics {
		out[i] = Summary{Slug: t.Slug, Title: t.Title, Category: t.Category, Description: t.Description}
	}
	return out
}

func (l *Library) Topic(slug string) (*Topic, error) {
	i, ok := l.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		return nil, apperror.NotFound("Learning topic")
	}
	t := l.topics[i]
	return &t, nil
}
