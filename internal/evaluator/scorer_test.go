package evaluator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(DefaultWeights())
	text := "Create a python function to debug the api server and list the results"

	first := s.Score(text, "generation", "coding")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Score(text, "generation", "coding"), "同一输入必须得到同一输出")
	}
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer(DefaultWeights())

	cases := map[string]struct {
		text     string
		taskType string
		domain   string
	}{
		"空文本":   {"", "", ""},
		"全模糊词":  {"something stuff thing maybe whatever somehow anything everything nothing basically", "", ""},
		"全大写喊叫": {"DO THE THING NOW PLEASE", "generation", "coding"},
		"超长文本":  {strings.Repeat("word ", 500), "analysis", "legal"},
		"理想提示词": {
			"Create a detailed python function that will debug the api server code, list all endpoints in json format, and explain the algorithm for the database queries",
			"generation", "coding",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := s.Score(tc.text, tc.taskType, tc.domain)
			for label, score := range map[string]float64{
				"clarity":   r.ClarityScore,
				"relevance": r.RelevanceScore,
				"length":    r.LengthScore,
				"final":     r.FinalScore,
			} {
				assert.GreaterOrEqual(t, score, 0.0, label)
				assert.LessOrEqual(t, score, 100.0, label)
			}
		})
	}
}

func TestClarityRules(t *testing.T) {
	t.Run("模糊词扣分", func(t *testing.T) {
		clean, _, _, _ := scoreClarity("create a parser")
		vague, _, _, found := scoreClarity("create something for stuff")
		assert.Less(t, vague, clean)
		assert.NotEmpty(t, found)
	})

	t.Run("缺少动作动词扣分", func(t *testing.T) {
		withAction, _, found, _ := scoreClarity("summarize the report")
		noAction, _, none, _ := scoreClarity("the report from yesterday")
		assert.NotEmpty(t, found)
		assert.Empty(t, none)
		assert.Greater(t, withAction, noAction)
	})

	t.Run("列表结构加分", func(t *testing.T) {
		plain, _, _, _ := scoreClarity("describe the system architecture in detail today")
		listed, notes, _, _ := scoreClarity("describe the system:\n1. overview\n2. components")
		assert.GreaterOrEqual(t, listed, plain)
		assert.Contains(t, strings.Join(notes, "|"), "lists")
	})

	t.Run("全大写扣分", func(t *testing.T) {
		normal, _, _, _ := scoreClarity("review the code")
		shouting, notes, _, _ := scoreClarity("REVIEW THE CODE")
		assert.Less(t, shouting, normal)
		assert.Contains(t, strings.Join(notes, "|"), "capital")
	})
}

func TestRelevanceRules(t *testing.T) {
	t.Run("领域匹配加分", func(t *testing.T) {
		matched, _, matches, _ := scoreRelevance("debug the api function in the database", "", "coding")
		missed, _, none, _ := scoreRelevance("bake a cake tomorrow", "", "coding")
		assert.Greater(t, matched, missed)
		assert.NotEmpty(t, matches)
		assert.Empty(t, none)
	})

	t.Run("任务类型匹配加分", func(t *testing.T) {
		matched, _, _, taskMatches := scoreRelevance("summarize and condense the article", "summarization", "")
		missed, _, _, _ := scoreRelevance("walk the dog", "summarization", "")
		assert.Greater(t, matched, missed)
		assert.NotEmpty(t, taskMatches)
	})

	t.Run("未知领域不影响基准分", func(t *testing.T) {
		score, notes, _, _ := scoreRelevance("hello world", "", "astrology")
		assert.Equal(t, 50.0, score)
		assert.Empty(t, notes)
	})

	t.Run("指定输出格式加分", func(t *testing.T) {
		withFormat, _, _, _ := scoreRelevance("return the data in json", "", "")
		without, _, _, _ := scoreRelevance("return the data somehow", "", "")
		assert.Greater(t, withFormat, without)
	})
}

func TestLengthScoreBands(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	cases := []struct {
		name  string
		count int
		check func(t *testing.T, score float64)
	}{
		{"过短", 3, func(t *testing.T, s float64) { assert.Less(t, s, 30.0) }},
		{"偏短", 10, func(t *testing.T, s float64) { assert.GreaterOrEqual(t, s, 50.0); assert.Less(t, s, 100.0) }},
		{"最优下界", 15, func(t *testing.T, s float64) { assert.Equal(t, 100.0, s) }},
		{"最优上界", 150, func(t *testing.T, s float64) { assert.Equal(t, 100.0, s) }},
		{"偏长", 200, func(t *testing.T, s float64) { assert.Less(t, s, 100.0); assert.GreaterOrEqual(t, s, 70.0) }},
		{"过长", 400, func(t *testing.T, s float64) { assert.Less(t, s, 70.0) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, _, wordCount := scoreLength(words(tc.count))
			require.Equal(t, tc.count, wordCount)
			tc.check(t, score)
		})
	}
}

func TestFinalScoreWeighting(t *testing.T) {
	s := NewScorer(Weights{Clarity: 0.4, Relevance: 0.4, Length: 0.2})
	r := s.Score("analyze the patient symptoms and summarize the diagnosis for the doctor in a table", "analysis", "healthcare")

	expected := r.ClarityScore*0.4 + r.RelevanceScore*0.4 + r.LengthScore*0.2
	assert.InDelta(t, expected, r.FinalScore, 0.01)
}

func TestSuggestions(t *testing.T) {
	t.Run("低分维度给出建议", func(t *testing.T) {
		s := NewScorer(DefaultWeights())
		r := s.Score("stuff", "", "")
		suggestions := Suggestions(r)
		assert.NotEmpty(t, suggestions)
	})

	t.Run("高分文本无建议", func(t *testing.T) {
		suggestions := Suggestions(Result{
			ClarityScore:   90,
			RelevanceScore: 90,
			LengthScore:    100,
			WordCount:      50,
		})
		assert.Empty(t, suggestions)
	})
}
