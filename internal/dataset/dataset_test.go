package dataset

import (
	"errors"
	"testing"
	"time"

	"iqscalar-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileShapes(t *testing.T) {
	wrapped := []byte(`{"questions":[{"id":1,"category":"Memory","question_text":"Q?","options":{"B":"two","A":"one"},"answer":"B","explanation":"e"}]}`)
	bare := []byte(`[{"id":"x7","question":"Q?","options":["one","two",3],"answer":"two"}]`)

	w, err := ParseFile(wrapped)
	require.NoError(t, err)
	require.Len(t, w, 1)
	assert.Equal(t, "1", w[0].ID.String())
	assert.Equal(t, []string{"one", "two"}, []string(w[0].Options))

	b, err := ParseFile(bare)
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, "x7", b[0].ID.String())
	assert.Equal(t, []string{"one", "two"}, []string(b[0].Options))

	_, err = ParseFile([]byte(`{"questions": 5}`))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name      string
		raw       *RawQuestion
		ok        bool
		wantText  string
		wantIndex int
		category  string
	}{
		{
			name:      "letter answer",
			raw:       &RawQuestion{ID: "1", Category: "Memory", QuestionText: "Q", Options: rawOptions{"a", "b", "c"}, Answer: "c"},
			ok:        true,
			wantText:  "c",
			wantIndex: 2,
			category:  "Memory",
		},
		{
			name:      "text answer",
			raw:       &RawQuestion{ID: "2", Question: "Q", Options: rawOptions{"red", "blue"}, Answer: "blue"},
			ok:        true,
			wantText:  "blue",
			wantIndex: 1,
			category:  models.DefaultCategory,
		},
		{
			name:      "letter list takes first",
			raw:       &RawQuestion{ID: "3", QuestionText: "Q", Options: rawOptions{"a", "b", "c", "d"}, Answer: "D, B"},
			ok:        true,
			wantText:  "d",
			wantIndex: 3,
			category:  models.DefaultCategory,
		},
		{
			name:      "letter beyond options falls back",
			raw:       &RawQuestion{ID: "4", QuestionText: "Q", Options: rawOptions{"a", "b"}, Answer: "E"},
			ok:        true,
			wantText:  "a",
			wantIndex: 0,
			category:  models.DefaultCategory,
		},
		{
			name: "single option dropped",
			raw:  &RawQuestion{ID: "5", QuestionText: "Q", Options: rawOptions{"a"}, Answer: "A"},
			ok:   false,
		},
		{
			name: "missing text dropped",
			raw:  &RawQuestion{ID: "6", Options: rawOptions{"a", "b"}, Answer: "A"},
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, ok := Normalize(tc.raw, "src", 0)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.wantText, q.AnswerText)
			assert.Equal(t, tc.wantIndex, q.CorrectIndex)
			assert.Equal(t, tc.category, q.Category)
			assert.Equal(t, "src", q.Source)
		})
	}
}

func TestNormalizeNumbersMissingID(t *testing.T) {
	q, ok := Normalize(&RawQuestion{QuestionText: "Q", Options: rawOptions{"a", "b"}}, "src", 4)
	require.True(t, ok)
	assert.Equal(t, "5", q.ID)
}

func TestContentHashIgnoresCaseSpacingAndOptionOrder(t *testing.T) {
	a := models.NormalizedQuestion{Question: "What  comes NEXT?", Options: []string{"One", "Two "}}
	b := models.NormalizedQuestion{Question: " what comes next? ", Options: []string{"two", "one"}}
	c := models.NormalizedQuestion{Question: "What comes next?", Options: []string{"one", "three"}}

	assert.Equal(t, ContentHash(a), ContentHash(b))
	assert.NotEqual(t, ContentHash(a), ContentHash(c))
	assert.Len(t, Dedup([]models.NormalizedQuestion{a, b, c}), 2)
}

func TestLoadPrefixesAndDeduplicates(t *testing.T) {
	files := map[string]string{
		"one": `{"questions":[
			{"id":1,"category":"Memory","question_text":"Same?","options":{"A":"x","B":"y"},"answer":"A"},
			{"id":1,"category":"Memory","question_text":"Repeated id","options":{"A":"x","B":"y"},"answer":"A"},
			{"id":2,"category":"Spatial Reasoning","question_text":"Other","options":{"A":"x","B":"y"},"answer":"B"}]}`,
		"two": `[{"id":1,"category":"Memory","question_text":"same?","options":["y","x"],"answer":"x"}]`,
	}
	sources := []Source{{Name: "one"}, {Name: "two"}}

	bank, err := Load(sources, func(s Source) ([]byte, error) { return []byte(files[s.Name]), nil })
	require.NoError(t, err)

	assert.Equal(t, 2, bank.Len())
	assert.False(t, bank.IsFallback())
	assert.Equal(t, []string{"Memory", "Spatial Reasoning"}, bank.Categories())

	q, ok := bank.Find("one_2")
	require.True(t, ok)
	assert.Equal(t, "2", q.SourceID)
	assert.Equal(t, 1, q.CorrectIndex)

	_, ok = bank.Find("two_1")
	assert.False(t, ok, "content duplicate from the second source should be dropped")

	assert.Equal(t, map[string]map[string]int{"one": {"Memory": 1, "Spatial Reasoning": 1}}, bank.Distribution())
}

func TestLoadFallsBackWhenEmpty(t *testing.T) {
	bank, err := Load([]Source{{Name: "empty"}}, func(Source) ([]byte, error) { return []byte(`{"questions":[]}`), nil })
	require.NoError(t, err)
	assert.True(t, bank.IsFallback())
	assert.Equal(t, 3, bank.Len())
}

func TestLoadReadError(t *testing.T) {
	_, err := Load([]Source{{Name: "broken"}}, func(Source) ([]byte, error) { return nil, errors.New("disk gone") })
	assert.Error(t, err)
}

func TestLoadDefaultEmbeddedSources(t *testing.T) {
	bank, err := LoadDefault()
	require.NoError(t, err)

	assert.False(t, bank.IsFallback())
	assert.Greater(t, bank.Len(), 60)
	for _, c := range []string{"Memory", "Spatial Reasoning", "Pattern Recognition"} {
		assert.Contains(t, bank.Categories(), c)
	}
	for _, q := range bank.All() {
		require.GreaterOrEqual(t, len(q.Options), 2, q.ID)
		require.Equal(t, q.Options[q.CorrectIndex], q.AnswerText, q.ID)
	}
}

func TestToModel(t *testing.T) {
	now := time.Now()
	q := models.NormalizedQuestion{
		ID:           "practice_core_3",
		Category:     "Pattern Recognition",
		Question:     "Next letter: A, C, E, ?",
		Options:      []string{"F", "G", "H", "I", "J", "K"},
		AnswerText:   "G",
		CorrectIndex: 1,
		Explanation:  "Skip one letter.",
		Source:       "practice_core",
	}

	m := ToModel(q, now)
	assert.Equal(t, "B", m.CorrectAnswer)
	assert.Equal(t, "J", m.Options.E)
	assert.Equal(t, models.DefaultDifficulty, m.Difficulty)
	assert.Equal(t, []string{"pattern-recognition", "visual-thinking"}, m.Tags)
	assert.NoError(t, m.Validate())

	q.CorrectIndex = 5
	assert.Equal(t, "A", ToModel(q, now).CorrectAnswer)
}

func TestUniqueByText(t *testing.T) {
	qs := []models.Question{
		{QuestionID: "a", QuestionText: "Which is odd?"},
		{QuestionID: "b", QuestionText: "which  is ODD?"},
		{QuestionID: "c", QuestionText: "Which is even?"},
	}
	out := UniqueByText(qs)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].QuestionID)
}
