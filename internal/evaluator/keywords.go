package evaluator

// 评分规则使用的关键词表。
// 修改这些列表会直接影响历史评估与新评估之间的可比性，谨慎调整。

// vagueKeywords 模糊用语，出现则降低清晰度得分
var vagueKeywords = []string{
	"something", "stuff", "thing", "things", "maybe", "etc", "whatever",
	"somehow", "somewhere", "anything", "everything", "nothing",
	"kind of", "sort of", "like", "basically", "actually",
}

// clearActionWords 明确的动作动词，出现则提升清晰度得分
var clearActionWords = []string{
	"create", "generate", "write", "analyze", "summarize", "explain",
	"list", "describe", "compare", "evaluate", "implement", "design",
	"calculate", "find", "search", "extract", "convert", "translate",
	"review", "optimize", "debug", "test", "validate", "format",
}

// domainKeywords 各领域的特征关键词
var domainKeywords = map[string][]string{
	"healthcare": {
		"patient", "diagnosis", "treatment", "medical", "health",
		"symptom", "disease", "medication", "clinical", "doctor",
		"hospital", "therapy", "prescription", "nursing", "surgery",
	},
	"coding": {
		"function", "code", "debug", "implement", "api", "class",
		"method", "variable", "algorithm", "database", "server",
		"frontend", "backend", "python", "javascript", "sql",
	},
	"education": {
		"teach", "explain", "learn", "student", "lesson", "course",
		"curriculum", "assignment", "grade", "exam", "tutorial",
		"concept", "theory", "practice", "exercise", "quiz",
	},
	"business": {
		"revenue", "profit", "customer", "market", "strategy",
		"sales", "product", "service", "growth", "investment",
		"roi", "kpi", "analytics", "report", "presentation",
	},
	"creative": {
		"story", "poem", "character", "plot", "narrative",
		"fiction", "dialogue", "scene", "imagination", "creative",
		"artistic", "style", "voice", "theme", "metaphor",
	},
	"legal": {
		"contract", "agreement", "clause", "terms", "legal",
		"compliance", "regulation", "law", "court", "litigation",
		"policy", "liability", "rights", "obligation", "statute",
	},
}

// taskIndicators 各任务类型的指示词
var taskIndicators = map[string][]string{
	"generation": {
		"create", "generate", "write", "produce", "make", "build",
		"compose", "draft", "construct", "develop", "design",
	},
	"analysis": {
		"analyze", "evaluate", "assess", "review", "examine",
		"investigate", "study", "inspect", "critique", "audit",
	},
	"summarization": {
		"summarize", "condense", "shorten", "brief", "synopsis",
		"overview", "abstract", "digest", "recap", "outline",
	},
	"translation": {
		"translate", "convert", "transform", "adapt", "localize",
		"interpret", "render", "transpose",
	},
	"classification": {
		"classify", "categorize", "sort", "organize", "group",
		"label", "tag", "identify", "distinguish",
	},
	"extraction": {
		"extract", "find", "locate", "identify", "retrieve",
		"pull", "get", "fetch", "obtain", "gather",
	},
}

// contextWords 上下文限定词，出现说明提示词有明确的针对对象
var contextWords = []string{"for", "about", "regarding", "concerning", "related to"}

// formatWords 输出格式指定词
var formatWords = []string{"json", "list", "table", "bullet", "paragraph", "code", "markdown"}
