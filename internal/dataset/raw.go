package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RawQuestion is one entry of a bundled question file before normalization.
type RawQuestion struct {
	ID           flexString `json:"id"`
	Category     string     `json:"category"`
	QuestionText string     `json:"question_text"`
	Question     string     `json:"question"`
	Options      rawOptions `json:"options"`
	Answer       flexString `json:"answer"`
	Explanation  string     `json:"explanation"`
}

type rawFile struct {
	Questions []*RawQuestion `json:"questions"`
}

// ParseFile accepts either {"questions": [...]} or a bare array.
func ParseFile(data []byte) ([]*RawQuestion, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []*RawQuestion
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to parse question list: %w", err)
		}
		return list, nil
	}
	var f rawFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("failed to parse question file: %w", err)
	}
	return f.Questions, nil
}

// flexString decodes a JSON string or number into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

// rawOptions holds option texts in display order. Files give them either as
// an array or as an object keyed by letter; object keys are taken in sorted
// order so A..E come out first. Non-string values are skipped.
type rawOptions []string

func (o *rawOptions) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*o = nil
		return nil
	}
	switch trimmed[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*o = stringsOnly(items)
	case '{':
		var m map[string]any
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return err
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, 0, len(keys))
		for _, k := range keys {
			items = append(items, m[k])
		}
		*o = stringsOnly(items)
	default:
		*o = nil
	}
	return nil
}

func stringsOnly(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
