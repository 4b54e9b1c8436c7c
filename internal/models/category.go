package models

import "strings"

// Category is one branch of the aptitude taxonomy. Questions refer to a
// category by Name; Slug is used in URLs and learning content.
type Category struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
}

const DefaultCategory = "General"

var Categories = []Category{
	{
		Slug:        "verbal-logical",
		Name:        "Verbal-Logical Reasoning",
		Description: "Analogies, word relationships and deductive arguments.",
		Tags:        []string{"verbal-reasoning", "logical-thinking"},
	},
	{
		Slug:        "numerical-abstract",
		Name:        "Numerical & Abstract Reasoning",
		Description: "Number sequences, arithmetic relationships and abstract rules.",
		Tags:        []string{"numerical-reasoning", "mathematical-thinking"},
	},
	{
		Slug:        "pattern-recognition",
		Name:        "Pattern Recognition",
		Description: "Letter, shape and symbol series that follow a hidden rule.",
		Tags:        []string{"pattern-recognition", "visual-thinking"},
	},
	{
		Slug:        "spatial",
		Name:        "Spatial Reasoning",
		Description: "Mental rotation, folding and three-dimensional visualisation.",
		Tags:        []string{"spatial-reasoning", "visual-thinking"},
	},
	{
		Slug:        "memory",
		Name:        "Memory",
		Description: "Short-term recall of lists, sequences and pairings.",
		Tags:        []string{"working-memory", "recall"},
	},
}

// LookupCategory matches a slug or display name, ignoring case.
func LookupCategory(key string) (Category, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, c := range Categories {
		if c.Slug == k || strings.ToLower(c.Name) == k {
			return c, true
		}
	}
	return Category{}, false
}

// TagsForCategory derives question tags from keywords in a category name.
// A name can match several keyword groups; tags are not repeated.
func TagsForCategory(name string) []string {
	lower := strings.ToLower(name)
	groups := []struct {
		keywords []string
		tags     []string
	}{
		{[]string{"verbal", "logical"}, []string{"verbal-reasoning", "logical-thinking"}},
		{[]string{"numerical", "abstract"}, []string{"numerical-reasoning", "mathematical-thinking"}},
		{[]string{"pattern"}, []string{"pattern-recognition", "visual-thinking"}},
		{[]string{"spatial"}, []string{"spatial-reasoning", "visual-thinking"}},
		{[]string{"memory"}, []string{"working-memory", "recall"}},
	}

	tags := []string{}
	seen := map[string]bool{}
	for _, g := range groups {
		matched := false
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, t := range g.tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	return tags
}
