package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/common"
	"backend/internal/evaluator"
)

// stubScorer 按文本返回固定综合分，便于验证推荐逻辑
type stubScorer struct {
	scores map[string]float64
}

func (s *stubScorer) Score(text, taskType, domain string) evaluator.Result {
	final := s.scores[text]
	return evaluator.Result{
		ClarityScore:   final,
		RelevanceScore: final,
		LengthScore:    final,
		FinalScore:     final,
		Notes:          "stub",
	}
}

func TestEvaluatePersistsAppendOnly(t *testing.T) {
	db := initTestDB(t)
	svc := NewEvaluationService(db, evaluator.NewScorer(evaluator.DefaultWeights()))
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "create a python function to debug the api server code")
	versionID := detail.CurrentVersion.ID

	first, err := svc.Evaluate(ctx, "owner-1", versionID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first.Evaluation.FinalScore, 0.0)
	assert.LessOrEqual(t, first.Evaluation.FinalScore, 100.0)

	// 重复评估产生新记录而非覆盖
	second, err := svc.Evaluate(ctx, "owner-1", versionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Evaluation.ID, second.Evaluation.ID)

	var count int64
	require.NoError(t, db.Model(&PromptEvaluation{}).Where("version_id = ?", versionID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// 版本文本不变，两次得分一致
	assert.Equal(t, first.Evaluation.FinalScore, second.Evaluation.FinalScore)
}

func TestGetLatestEvaluationReadOnly(t *testing.T) {
	db := initTestDB(t)
	svc := NewEvaluationService(db, evaluator.NewScorer(evaluator.DefaultWeights()))
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "explain the algorithm")
	versionID := detail.CurrentVersion.ID

	t.Run("未评估时返回未找到且不触发评分", func(t *testing.T) {
		_, err := svc.GetLatestEvaluation(ctx, "owner-1", versionID)
		assert.True(t, common.IsNotFound(err))

		var count int64
		require.NoError(t, db.Model(&PromptEvaluation{}).Where("version_id = ?", versionID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("评估后返回最新记录", func(t *testing.T) {
		res, err := svc.Evaluate(ctx, "owner-1", versionID)
		require.NoError(t, err)

		latest, err := svc.GetLatestEvaluation(ctx, "owner-1", versionID)
		require.NoError(t, err)
		assert.Equal(t, res.Evaluation.ID, latest.ID)
	})

	t.Run("版本不存在返回未找到", func(t *testing.T) {
		_, err := svc.GetLatestEvaluation(ctx, "owner-1", "no-such-version")
		assert.True(t, common.IsNotFound(err))
	})
}

func TestEvaluationScopedToOwner(t *testing.T) {
	db := initTestDB(t)
	svc := NewEvaluationService(db, evaluator.NewScorer(evaluator.DefaultWeights()))
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "analyze my private data")
	promptID := detail.Prompt.ID
	versionID := detail.CurrentVersion.ID

	_, err := svc.Evaluate(ctx, "owner-2", versionID)
	assert.True(t, common.IsNotFound(err))

	_, err = svc.GetLatestEvaluation(ctx, "owner-2", versionID)
	assert.True(t, common.IsNotFound(err))

	_, err = svc.EvaluateAll(ctx, "owner-2", promptID)
	assert.True(t, common.IsNotFound(err))

	_, err = svc.ListEvaluations(ctx, "owner-2", promptID)
	assert.True(t, common.IsNotFound(err))

	_, err = svc.Recommend(ctx, "owner-2", promptID)
	assert.True(t, common.IsNotFound(err))

	// 他人的尝试不应留下任何评估记录
	var count int64
	require.NoError(t, db.Model(&PromptEvaluation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestEvaluateAllSkipsEvaluatedVersions(t *testing.T) {
	db := initTestDB(t)
	versions := NewVersionService(db)
	svc := NewEvaluationService(db, evaluator.NewScorer(evaluator.DefaultWeights()))
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "analyze the sales data")
	promptID := detail.Prompt.ID
	_, err := versions.AppendVersion(ctx, "owner-1", promptID, "analyze the quarterly sales data and report trends", "")
	require.NoError(t, err)

	// 先单独评估 v1
	_, err = svc.Evaluate(ctx, "owner-1", detail.CurrentVersion.ID)
	require.NoError(t, err)

	results, err := svc.EvaluateAll(ctx, "owner-1", promptID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byNumber := make(map[int]BatchEvaluationResult)
	for _, r := range results {
		byNumber[r.VersionNumber] = r
	}
	assert.True(t, byNumber[1].Skipped, "已评估的版本应被跳过")
	assert.False(t, byNumber[2].Skipped)
	require.NotNil(t, byNumber[2].Evaluation)
	assert.Empty(t, byNumber[2].Error)
}

func TestRecommendTieBreaksOnVersionNumber(t *testing.T) {
	db := initTestDB(t)
	versions := NewVersionService(db)
	ctx := context.Background()

	scorer := &stubScorer{scores: map[string]float64{
		"text v1": 70,
		"text v2": 85,
		"text v3": 85,
	}}
	svc := NewEvaluationService(db, scorer)

	detail := createTestPrompt(t, db, "owner-1", "text v1")
	promptID := detail.Prompt.ID
	_, err := versions.AppendVersion(ctx, "owner-1", promptID, "text v2", "")
	require.NoError(t, err)
	_, err = versions.AppendVersion(ctx, "owner-1", promptID, "text v3", "")
	require.NoError(t, err)

	_, err = svc.EvaluateAll(ctx, "owner-1", promptID)
	require.NoError(t, err)

	rec, err := svc.Recommend(ctx, "owner-1", promptID)
	require.NoError(t, err)
	require.NotNil(t, rec.Best)
	assert.Equal(t, 3, rec.Best.VersionNumber, "并列最高分时取版本号更大的")
	assert.InDelta(t, 85, rec.Best.FinalScore, 0.001)
	assert.Len(t, rec.Alternatives, 2)
}

func TestRecommendWithoutEvaluations(t *testing.T) {
	db := initTestDB(t)
	svc := NewEvaluationService(db, evaluator.NewScorer(evaluator.DefaultWeights()))

	detail := createTestPrompt(t, db, "owner-1", "never evaluated")
	_, err := svc.Recommend(context.Background(), "owner-1", detail.Prompt.ID)
	assert.True(t, common.IsNotFound(err))
}

func TestQuickEvaluateDoesNotPersist(t *testing.T) {
	db := initTestDB(t)
	svc := NewEvaluationService(db, evaluator.NewScorer(evaluator.DefaultWeights()))

	result, suggestions := svc.QuickEvaluate("stuff", "generation", "coding")
	require.NotNil(t, result)
	assert.NotEmpty(t, suggestions, "低分文本应附带改进建议")

	var count int64
	require.NoError(t, db.Model(&PromptEvaluation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestListEvaluationsOrderedByScore(t *testing.T) {
	db := initTestDB(t)
	versions := NewVersionService(db)
	ctx := context.Background()

	scorer := &stubScorer{scores: map[string]float64{
		"low":  40,
		"high": 90,
	}}
	svc := NewEvaluationService(db, scorer)

	detail := createTestPrompt(t, db, "owner-1", "low")
	_, err := versions.AppendVersion(ctx, "owner-1", detail.Prompt.ID, "high", "")
	require.NoError(t, err)

	_, err = svc.EvaluateAll(ctx, "owner-1", detail.Prompt.ID)
	require.NoError(t, err)

	list, err := svc.ListEvaluations(ctx, "owner-1", detail.Prompt.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.InDelta(t, 90, list[0].FinalScore, 0.001)
	assert.Equal(t, 2, list[0].VersionNumber)
}
