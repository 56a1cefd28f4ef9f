package versions

import (
	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/prompt"
)

// Handler 版本处理器
// 所有操作都以当前登录用户为作用域，他人提示词下的版本一律视为不存在
type Handler struct {
	versions *prompt.VersionService
}

// NewHandler 创建版本处理器
func NewHandler(versions *prompt.VersionService) *Handler {
	return &Handler{versions: versions}
}

// AppendRequest 追加版本请求
type AppendRequest struct {
	PromptText string `json:"prompt_text" binding:"required"`
	Notes      string `json:"notes"`
}

// ListByPrompt 列出提示词的全部版本（版本号倒序）
func (h *Handler) ListByPrompt(c *gin.Context) {
	versions, err := h.versions.ListVersions(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, versions)
}

// Append 追加新版本并设为当前版本
func (h *Handler) Append(c *gin.Context) {
	var req AppendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	version, err := h.versions.AppendVersion(c.Request.Context(), auth.MustUserID(c), c.Param("id"), req.PromptText, req.Notes)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseCreated(c, version)
}

// Get 获取单个版本
func (h *Handler) Get(c *gin.Context) {
	version, err := h.versions.GetVersion(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, version)
}

// Delete 删除版本（唯一版本不可删，删除当前版本自动提升接替者）
func (h *Handler) Delete(c *gin.Context) {
	if err := h.versions.DeleteVersion(c.Request.Context(), auth.MustUserID(c), c.Param("id")); err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccessMessage(c, "版本已删除", nil)
}

// SetCurrent 将指定版本设为当前版本
func (h *Handler) SetCurrent(c *gin.Context) {
	version, err := h.versions.SetCurrent(c.Request.Context(), auth.MustUserID(c), c.Param("id"))
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, version)
}

// Compare 对比同一提示词的两个版本
func (h *Handler) Compare(c *gin.Context) {
	v1 := c.Query("v1")
	v2 := c.Query("v2")
	if v1 == "" || v2 == "" {
		common.ResponseBadRequest(c, "缺少 v1 或 v2 参数")
		return
	}

	diff, err := h.versions.CompareVersions(c.Request.Context(), auth.MustUserID(c), v1, v2)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	common.ResponseSuccess(c, diff)
}
