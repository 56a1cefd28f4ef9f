package evaluator

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// 长度评分阈值（按单词数）
const (
	minWords        = 5
	optimalMinWords = 15
	optimalMaxWords = 150
	maxWords        = 300
)

// Weights 各维度权重，总和应为 1
type Weights struct {
	Clarity   float64
	Relevance float64
	Length    float64
}

// DefaultWeights 默认权重
func DefaultWeights() Weights {
	return Weights{Clarity: 0.4, Relevance: 0.4, Length: 0.2}
}

// Result 单次评估结果，所有得分均在 [0,100] 区间
type Result struct {
	ClarityScore   float64 `json:"clarity_score"`
	RelevanceScore float64 `json:"relevance_score"`
	LengthScore    float64 `json:"length_score"`
	FinalScore     float64 `json:"final_score"`
	Notes          string  `json:"evaluation_notes"`

	// 明细，供建议生成和前端展示
	ActionWordsFound []string `json:"action_words_found,omitempty"`
	VagueWordsFound  []string `json:"vague_words_found,omitempty"`
	DomainMatches    []string `json:"domain_matches,omitempty"`
	TaskMatches      []string `json:"task_matches,omitempty"`
	WordCount        int      `json:"word_count"`
}

// Scorer 规则评分器。无内部状态，纯函数式实现，同一输入永远得到同一输出
type Scorer struct {
	weights Weights
}

// NewScorer 创建评分器，weights 为零值时使用默认权重
func NewScorer(weights Weights) *Scorer {
	if weights.Clarity == 0 && weights.Relevance == 0 && weights.Length == 0 {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// listPattern 匹配编号列表或项目符号
var listPattern = regexp.MustCompile(`(\d+\.|•|-)\s`)

// digitPattern 匹配数字细节
var digitPattern = regexp.MustCompile(`\d+`)

// Score 评估提示词文本，返回三维得分与加权综合分
// taskType 和 domain 可为空，为空时对应维度的匹配规则不生效
func (s *Scorer) Score(text, taskType, domain string) Result {
	clarity, clarityNotes, actionFound, vagueFound := scoreClarity(text)
	relevance, relevanceNotes, domainMatches, taskMatches := scoreRelevance(text, taskType, domain)
	length, lengthNotes, wordCount := scoreLength(text)

	final := clarity*s.weights.Clarity + relevance*s.weights.Relevance + length*s.weights.Length

	var notes []string
	notes = append(notes, clarityNotes...)
	notes = append(notes, relevanceNotes...)
	notes = append(notes, lengthNotes...)
	noteText := "No issues found."
	if len(notes) > 0 {
		noteText = strings.Join(notes, " | ")
	}

	return Result{
		ClarityScore:     round2(clarity),
		RelevanceScore:   round2(relevance),
		LengthScore:      round2(length),
		FinalScore:       round2(clamp(final)),
		Notes:            noteText,
		ActionWordsFound: actionFound,
		VagueWordsFound:  vagueFound,
		DomainMatches:    domainMatches,
		TaskMatches:      taskMatches,
		WordCount:        wordCount,
	}
}

// scoreClarity 清晰度评分：模糊词扣分、动作动词加分、结构化加分、全大写扣分
func scoreClarity(text string) (score float64, notes []string, actionFound, vagueFound []string) {
	score = 100.0
	lower := strings.ToLower(text)

	// 规则 1：模糊用语每个扣 8 分
	for _, kw := range vagueKeywords {
		if strings.Contains(lower, kw) {
			vagueFound = append(vagueFound, kw)
			score -= 8
		}
	}
	if len(vagueFound) > 0 {
		notes = append(notes, "Vague terms found: "+strings.Join(firstN(vagueFound, 3), ", "))
	}

	// 规则 2：动作动词每个加 5 分，完全没有则扣 15 分
	for _, word := range clearActionWords {
		if strings.Contains(lower, word) {
			actionFound = append(actionFound, word)
			score += 5
		}
	}
	if len(actionFound) == 0 {
		score -= 15
		notes = append(notes, "Missing clear action verbs")
	}

	// 规则 3：问号表示具体询问
	if strings.Contains(text, "?") {
		score += 5
	}

	// 规则 4：编号列表或项目符号
	if listPattern.MatchString(text) {
		score += 10
		notes = append(notes, "Well-structured with lists")
	}

	// 规则 5：包含数字等具体细节
	if digitPattern.MatchString(text) {
		score += 5
	}

	// 规则 6：全大写比例过高视为"喊叫"
	runes := []rune(text)
	upperCount := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upperCount++
		}
	}
	total := len(runes)
	if total == 0 {
		total = 1
	}
	if float64(upperCount)/float64(total) > 0.5 {
		score -= 10
		notes = append(notes, "Too many capital letters")
	}

	return clamp(score), notes, actionFound, vagueFound
}

// scoreRelevance 相关性评分：领域关键词、任务类型指示词、上下文与格式限定词
func scoreRelevance(text, taskType, domain string) (score float64, notes []string, domainMatches, taskMatches []string) {
	score = 50.0 // 基准分
	lower := strings.ToLower(text)

	// 规则 1：领域关键词每个加 5 分，一个都没有则扣 10 分
	if kws, ok := domainKeywords[strings.ToLower(domain)]; domain != "" && ok {
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				domainMatches = append(domainMatches, kw)
				score += 5
			}
		}
		if len(domainMatches) == 0 {
			score -= 10
			notes = append(notes, fmt.Sprintf("Low relevance to %s domain", domain))
		} else {
			notes = append(notes, fmt.Sprintf("Matches %s: %s", domain, strings.Join(firstN(domainMatches, 3), ", ")))
		}
	}

	// 规则 2：任务类型指示词每个加 8 分，一个都没有则扣 15 分
	if kws, ok := taskIndicators[strings.ToLower(taskType)]; taskType != "" && ok {
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				taskMatches = append(taskMatches, kw)
				score += 8
			}
		}
		if len(taskMatches) == 0 {
			score -= 15
			notes = append(notes, fmt.Sprintf("Doesn't align with %s task", taskType))
		} else {
			notes = append(notes, fmt.Sprintf("Good %s indicators", taskType))
		}
	}

	// 规则 3：上下文限定词
	for _, w := range contextWords {
		if strings.Contains(lower, w) {
			score += 10
			break
		}
	}

	// 规则 4：输出格式指定词
	for _, w := range formatWords {
		if strings.Contains(lower, w) {
			score += 10
			notes = append(notes, "Specifies output format")
			break
		}
	}

	return clamp(score), notes, domainMatches, taskMatches
}

// scoreLength 长度评分：按单词数分段打分，最优区间 [15,150]
func scoreLength(text string) (score float64, notes []string, wordCount int) {
	wordCount = len(strings.Fields(text))

	switch {
	case wordCount < minWords:
		score = float64(wordCount) / float64(minWords) * 30
		notes = append(notes, fmt.Sprintf("Too short (%d words)", wordCount))
	case wordCount < optimalMinWords:
		score = 50 + float64(wordCount-minWords)/float64(optimalMinWords-minWords)*30
		notes = append(notes, fmt.Sprintf("Could be more detailed (%d words)", wordCount))
	case wordCount <= optimalMaxWords:
		score = 100
		notes = append(notes, fmt.Sprintf("Optimal length (%d words)", wordCount))
	case wordCount <= maxWords:
		excess := float64(wordCount - optimalMaxWords)
		maxExcess := float64(maxWords - optimalMaxWords)
		score = 100 - excess/maxExcess*30
		notes = append(notes, fmt.Sprintf("Slightly long (%d words)", wordCount))
	default:
		score = 70 - float64(wordCount-maxWords)/50*10
		notes = append(notes, fmt.Sprintf("Too long (%d words)", wordCount))
	}

	return clamp(score), notes, wordCount
}

// clamp 将得分限制在 [0,100]
func clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// firstN 取切片前 n 个元素
func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
