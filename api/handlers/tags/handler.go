package tags

import (
	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/prompt"
	"backend/internal/tag"
)

// Handler 标签处理器
type Handler struct {
	tags    *tag.Service
	prompts *prompt.PromptService
}

// NewHandler 创建标签处理器
func NewHandler(tags *tag.Service, prompts *prompt.PromptService) *Handler {
	return &Handler{tags: tags, prompts: prompts}
}

// AttachRequest 打标签请求
type AttachRequest struct {
	TagID string `json:"tag_id" binding:"required"`
}

// List 列出所有标签（名称升序，附带使用数）
func (h *Handler) List(c *gin.Context) {
	items, err := h.tags.List(c.Request.Context())
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, items)
}

// Create 创建标签
func (h *Handler) Create(c *gin.Context) {
	var req tag.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	t, err := h.tags.Create(c.Request.Context(), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseCreated(c, t)
}

// Update 更新标签
func (h *Handler) Update(c *gin.Context) {
	var req tag.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	t, err := h.tags.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, t)
}

// Delete 删除标签及其所有关联
func (h *Handler) Delete(c *gin.Context) {
	if err := h.tags.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccessMessage(c, "标签已删除", nil)
}

// PromptsByTag 列出标签下属于当前用户的提示词
func (h *Handler) PromptsByTag(c *gin.Context) {
	// 先确认标签存在
	if _, err := h.tags.Get(c.Request.Context(), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	req := &prompt.ListPromptsRequest{TagID: c.Param("id")}
	items, total, err := h.prompts.List(c.Request.Context(), auth.MustUserID(c), req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseList(c, items, total, &req.PaginationRequest)
}

// Attach 给提示词打标签（已关联时为幂等空操作）
func (h *Handler) Attach(c *gin.Context) {
	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 只能操作自己的提示词
	if _, err := h.prompts.Get(c.Request.Context(), auth.MustUserID(c), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	if err := h.tags.Attach(c.Request.Context(), c.Param("id"), req.TagID); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccessMessage(c, "标签已关联", nil)
}

// Detach 移除提示词上的标签，关联不存在返回 404
func (h *Handler) Detach(c *gin.Context) {
	if _, err := h.prompts.Get(c.Request.Context(), auth.MustUserID(c), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	if err := h.tags.Detach(c.Request.Context(), c.Param("id"), c.Param("tagId")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccessMessage(c, "标签已移除", nil)
}
