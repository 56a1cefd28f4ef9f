package evaluator

import "fmt"

// Suggestions 根据评估结果生成改进建议
// 三个维度任意一项低于 70 分时给出对应的改进方向
func Suggestions(result Result) []string {
	var suggestions []string

	// 清晰度建议
	if result.ClarityScore < 70 {
		suggestions = append(suggestions, "Add clear action verbs like 'create', 'analyze', or 'summarize'")
		if len(result.VagueWordsFound) > 0 {
			suggestions = append(suggestions, "Replace vague words with specific terms")
		}
	}

	// 相关性建议
	if result.RelevanceScore < 70 {
		suggestions = append(suggestions, "Include more domain-specific keywords")
		suggestions = append(suggestions, "Specify the expected output format")
	}

	// 长度建议
	if result.LengthScore < 70 {
		if result.WordCount < optimalMinWords {
			suggestions = append(suggestions, fmt.Sprintf("Expand the prompt to at least %d words", optimalMinWords))
		} else {
			suggestions = append(suggestions, fmt.Sprintf("Condense the prompt to under %d words", optimalMaxWords))
		}
	}

	return suggestions
}
