package prompt

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/evaluator"
	"backend/internal/logger"
	"backend/internal/metrics"
)

// Scorer 评分协作方
// 评估服务只关心输入文本与输出得分，不关心评分规则本身
type Scorer interface {
	Score(text, taskType, domain string) evaluator.Result
}

// EvaluationService 评估服务，维护追加式评估缓存
type EvaluationService struct {
	db     *gorm.DB
	scorer Scorer
}

// NewEvaluationService 创建评估服务
func NewEvaluationService(db *gorm.DB, scorer Scorer) *EvaluationService {
	return &EvaluationService{db: db, scorer: scorer}
}

// EvaluationResult 评估响应，附带改进建议
type EvaluationResult struct {
	Evaluation  *PromptEvaluation `json:"evaluation"`
	Suggestions []string          `json:"suggestions"`
}

// Evaluate 评估指定版本并持久化结果
// 评估记录只追加不覆盖，同一版本重复评估会产生新记录；
// 只能评估自己提示词下的版本
func (s *EvaluationService) Evaluate(ctx context.Context, ownerID, versionID string) (*EvaluationResult, error) {
	version, err := versionOwnedBy(s.db.WithContext(ctx), ownerID, versionID)
	if err != nil {
		return nil, err
	}

	var parent Prompt
	if err := s.db.WithContext(ctx).Where("id = ?", version.PromptID).First(&parent).Error; err != nil {
		return nil, fmt.Errorf("查询提示词失败: %w", err)
	}

	result := s.scorer.Score(version.PromptText, parent.TaskType, parent.Domain)

	evaluation := &PromptEvaluation{
		VersionID:      versionID,
		ClarityScore:   result.ClarityScore,
		RelevanceScore: result.RelevanceScore,
		LengthScore:    result.LengthScore,
		FinalScore:     result.FinalScore,
		Notes:          result.Notes,
	}
	if err := s.db.WithContext(ctx).Create(evaluation).Error; err != nil {
		metrics.RecordEvaluation(0, err)
		return nil, fmt.Errorf("保存评估记录失败: %w", err)
	}

	metrics.RecordEvaluation(result.FinalScore, nil)
	return &EvaluationResult{
		Evaluation:  evaluation,
		Suggestions: evaluator.Suggestions(result),
	}, nil
}

// BatchEvaluationResult 批量评估的单版本结果
type BatchEvaluationResult struct {
	VersionID     string            `json:"version_id"`
	VersionNumber int               `json:"version_number"`
	Evaluation    *PromptEvaluation `json:"evaluation,omitempty"`
	Skipped       bool              `json:"skipped,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// EvaluateAll 评估提示词的全部版本
// 每个版本独立评估，单个版本失败不影响其余版本；已有评估记录的版本跳过
func (s *EvaluationService) EvaluateAll(ctx context.Context, ownerID, promptID string) ([]BatchEvaluationResult, error) {
	if err := promptOwnedBy(s.db.WithContext(ctx), ownerID, promptID); err != nil {
		return nil, err
	}

	var versions []PromptVersion
	if err := s.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("version_number ASC").
		Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("查询版本列表失败: %w", err)
	}

	results := make([]BatchEvaluationResult, 0, len(versions))
	for _, version := range versions {
		entry := BatchEvaluationResult{
			VersionID:     version.ID,
			VersionNumber: version.VersionNumber,
		}

		// 已有评估记录的版本跳过
		var evaluated int64
		if err := s.db.WithContext(ctx).Model(&PromptEvaluation{}).
			Where("version_id = ?", version.ID).
			Count(&evaluated).Error; err != nil {
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}
		if evaluated > 0 {
			entry.Skipped = true
			results = append(results, entry)
			continue
		}

		res, err := s.Evaluate(ctx, ownerID, version.ID)
		if err != nil {
			logger.Warn("批量评估单版本失败",
				zap.String("version_id", version.ID),
				zap.Error(err))
			entry.Error = err.Error()
		} else {
			entry.Evaluation = res.Evaluation
		}
		results = append(results, entry)
	}

	return results, nil
}

// GetLatestEvaluation 获取版本的最新评估记录，只读不触发评分
func (s *EvaluationService) GetLatestEvaluation(ctx context.Context, ownerID, versionID string) (*PromptEvaluation, error) {
	if _, err := versionOwnedBy(s.db.WithContext(ctx), ownerID, versionID); err != nil {
		return nil, err
	}

	var evaluation PromptEvaluation
	if err := s.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("evaluated_at DESC").
		First(&evaluation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodeEvaluationNotFound, "")
		}
		return nil, fmt.Errorf("查询评估记录失败: %w", err)
	}
	return &evaluation, nil
}

// EvaluationWithVersion 评估记录及其所属版本信息
type EvaluationWithVersion struct {
	PromptEvaluation
	VersionNumber int  `json:"version_number"`
	IsCurrent     bool `json:"is_current"`
}

// ListEvaluations 列出提示词所有版本的评估记录，按综合分倒序
func (s *EvaluationService) ListEvaluations(ctx context.Context, ownerID, promptID string) ([]EvaluationWithVersion, error) {
	if err := promptOwnedBy(s.db.WithContext(ctx), ownerID, promptID); err != nil {
		return nil, err
	}

	var results []EvaluationWithVersion
	if err := s.db.WithContext(ctx).
		Model(&PromptEvaluation{}).
		Select("prompt_evaluations.*, prompt_versions.version_number, prompt_versions.is_current").
		Joins("JOIN prompt_versions ON prompt_versions.id = prompt_evaluations.version_id").
		Where("prompt_versions.prompt_id = ?", promptID).
		Order("prompt_evaluations.final_score DESC").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("查询评估记录失败: %w", err)
	}
	return results, nil
}

// Recommendation 版本推荐结果
type Recommendation struct {
	Best         *RankedVersion  `json:"best"`
	Alternatives []RankedVersion `json:"alternatives"`
}

// RankedVersion 参与排名的版本
type RankedVersion struct {
	VersionID     string  `json:"version_id"`
	VersionNumber int     `json:"version_number"`
	IsCurrent     bool    `json:"is_current"`
	FinalScore    float64 `json:"final_score"`
	ClarityScore  float64 `json:"clarity_score"`
	EvaluatedAt   string  `json:"evaluated_at"`
}

// Recommend 推荐得分最高的版本
// 以各版本最新一次评估为准；综合分并列时取版本号更大的，
// 没有任何已评估版本时返回未找到错误
func (s *EvaluationService) Recommend(ctx context.Context, ownerID, promptID string) (*Recommendation, error) {
	if err := promptOwnedBy(s.db.WithContext(ctx), ownerID, promptID); err != nil {
		return nil, err
	}

	var versions []PromptVersion
	if err := s.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("version_number DESC").
		Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("查询版本列表失败: %w", err)
	}

	var ranked []RankedVersion
	for _, version := range versions {
		var evaluation PromptEvaluation
		err := s.db.WithContext(ctx).
			Where("version_id = ?", version.ID).
			Order("evaluated_at DESC").
			First(&evaluation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue // 未评估的版本不参与推荐
		}
		if err != nil {
			return nil, fmt.Errorf("查询评估记录失败: %w", err)
		}

		ranked = append(ranked, RankedVersion{
			VersionID:     version.ID,
			VersionNumber: version.VersionNumber,
			IsCurrent:     version.IsCurrent,
			FinalScore:    evaluation.FinalScore,
			ClarityScore:  evaluation.ClarityScore,
			EvaluatedAt:   evaluation.EvaluatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	if len(ranked) == 0 {
		return nil, common.NewBusinessError(common.CodeEvaluationNotFound, "该提示词尚无已评估版本")
	}

	// versions 已按版本号倒序，稳定选择首个最高分即可满足并列取高版本号
	best := 0
	for i := 1; i < len(ranked); i++ {
		if ranked[i].FinalScore > ranked[best].FinalScore {
			best = i
		}
	}

	alternatives := make([]RankedVersion, 0, len(ranked)-1)
	for i, rv := range ranked {
		if i != best {
			alternatives = append(alternatives, rv)
		}
	}

	return &Recommendation{Best: &ranked[best], Alternatives: alternatives}, nil
}

// QuickEvaluate 即席评估任意文本，不持久化
func (s *EvaluationService) QuickEvaluate(text, taskType, domain string) (*evaluator.Result, []string) {
	result := s.scorer.Score(text, taskType, domain)
	return &result, evaluator.Suggestions(result)
}
