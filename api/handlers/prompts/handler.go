package prompts

import (
	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/prompt"
)

// Handler 提示词处理器
type Handler struct {
	prompts *prompt.PromptService
}

// NewHandler 创建提示词处理器
func NewHandler(prompts *prompt.PromptService) *Handler {
	return &Handler{prompts: prompts}
}

// Create 创建提示词（含初始版本与标签关联，整体原子）
func (h *Handler) Create(c *gin.Context) {
	var req prompt.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	detail, err := h.prompts.Create(c.Request.Context(), auth.MustUserID(c), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseCreated(c, detail)
}

// List 列出当前用户的提示词
func (h *Handler) List(c *gin.Context) {
	var req prompt.ListPromptsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ResponseBadRequest(c, "查询参数错误: "+err.Error())
		return
	}

	items, total, err := h.prompts.List(c.Request.Context(), auth.MustUserID(c), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseList(c, items, total, &req.PaginationRequest)
}

// Get 获取提示词详情
func (h *Handler) Get(c *gin.Context) {
	detail, err := h.prompts.Get(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, detail)
}

// Update 更新提示词（文本变更走版本账本）
func (h *Handler) Update(c *gin.Context) {
	var req prompt.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	detail, err := h.prompts.Update(c.Request.Context(), auth.MustUserID(c), c.Param("id"), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, detail)
}

// Delete 删除提示词
func (h *Handler) Delete(c *gin.Context) {
	if err := h.prompts.Delete(c.Request.Context(), auth.MustUserID(c), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccessMessage(c, "提示词已删除", nil)
}

// Stats 统计当前用户的提示词概况
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.prompts.Stats(c.Request.Context(), auth.MustUserID(c))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, stats)
}
