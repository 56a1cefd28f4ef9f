package evaluations

import (
	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/prompt"
)

// Handler 评估处理器
// 除即席评估外，所有操作都以当前登录用户为作用域
type Handler struct {
	evaluations *prompt.EvaluationService
}

// NewHandler 创建评估处理器
func NewHandler(evaluations *prompt.EvaluationService) *Handler {
	return &Handler{evaluations: evaluations}
}

// QuickEvaluateRequest 即席评估请求
type QuickEvaluateRequest struct {
	PromptText string `json:"prompt_text" binding:"required"`
	TaskType   string `json:"task_type"`
	Domain     string `json:"domain"`
}

// GetLatest 获取版本的最新评估记录（只读，不触发评分）
func (h *Handler) GetLatest(c *gin.Context) {
	evaluation, err := h.evaluations.GetLatestEvaluation(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, evaluation)
}

// Evaluate 评估指定版本并持久化
func (h *Handler) Evaluate(c *gin.Context) {
	result, err := h.evaluations.Evaluate(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, result)
}

// EvaluateAll 评估提示词的全部版本（单版本失败不中断）
func (h *Handler) EvaluateAll(c *gin.Context) {
	results, err := h.evaluations.EvaluateAll(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, results)
}

// ListByPrompt 列出提示词所有版本的评估记录
func (h *Handler) ListByPrompt(c *gin.Context) {
	results, err := h.evaluations.ListEvaluations(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, results)
}

// Recommend 推荐得分最高的版本
func (h *Handler) Recommend(c *gin.Context) {
	recommendation, err := h.evaluations.Recommend(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, recommendation)
}

// QuickEvaluate 即席评估任意文本，不持久化
func (h *Handler) QuickEvaluate(c *gin.Context) {
	var req QuickEvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, suggestions := h.evaluations.QuickEvaluate(req.PromptText, req.TaskType, req.Domain)
	common.ResponseSuccess(c, gin.H{
		"evaluation":  result,
		"suggestions": suggestions,
	})
}
