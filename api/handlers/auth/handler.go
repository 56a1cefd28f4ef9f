package auth

import (
	"github.com/gin-gonic/gin"

	authsvc "backend/internal/auth"
	"backend/internal/common"
	"backend/internal/user"
)

// Handler 认证处理器
type Handler struct {
	users *user.Service
	jwt   *authsvc.JWTService
}

// NewHandler 创建认证处理器
func NewHandler(users *user.Service, jwt *authsvc.JWTService) *Handler {
	return &Handler{users: users, jwt: jwt}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User  *user.User         `json:"user"`
	Token *authsvc.TokenPair `json:"token"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出请求
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register 注册新用户
func (h *Handler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	u, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	token, err := h.jwt.GenerateTokenPair(u.ID, u.Username, u.Role)
	if err != nil {
		common.ResponseServerError(c, "生成令牌失败")
		return
	}

	common.ResponseCreated(c, LoginResponse{User: u, Token: token})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		common.ResponseFromError(c, err)
		return
	}

	token, err := h.jwt.GenerateTokenPair(u.ID, u.Username, u.Role)
	if err != nil {
		common.ResponseServerError(c, "生成令牌失败")
		return
	}

	common.ResponseSuccess(c, LoginResponse{User: u, Token: token})
}

// Refresh 用刷新令牌换取新令牌对
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	token, err := h.jwt.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.ResponseUnauthorized(c, "刷新令牌无效或已过期")
		return
	}

	common.ResponseSuccess(c, token)
}

// Logout 登出，将当前令牌加入黑名单
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	// 访问令牌与刷新令牌都失效
	if token := authsvc.ExtractTokenFromBearer(c.GetHeader("Authorization")); token != "" {
		_ = h.jwt.InvalidateToken(c.Request.Context(), token)
	}
	if req.RefreshToken != "" {
		_ = h.jwt.InvalidateToken(c.Request.Context(), req.RefreshToken)
	}

	common.ResponseSuccessMessage(c, "已登出", nil)
}
