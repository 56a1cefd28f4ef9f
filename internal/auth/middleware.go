package auth

import (
	"github.com/gin-gonic/gin"

	"backend/internal/common"
)

// UserContextKey 用户信息在 Gin Context 中的键
const UserContextKey = "user"

// UserContext 用户上下文
type UserContext struct {
	UserID   string
	Username string
	Role     string
}

// AuthMiddleware JWT 认证中间件
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 Header 获取令牌
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.AbortWithError(c, common.CodeUnauthorized, "缺少认证令牌")
			return
		}

		// 提取纯令牌
		token := ExtractTokenFromBearer(authHeader)
		if token == "" {
			common.AbortWithError(c, common.CodeUnauthorized, "无效的令牌格式")
			return
		}

		// 验证令牌
		claims, err := jwtService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			common.AbortWithError(c, common.CodeUnauthorized, "令牌验证失败: "+err.Error())
			return
		}

		// 确保是访问令牌
		if claims.TokenType != "access" {
			common.AbortWithError(c, common.CodeUnauthorized, "令牌类型错误")
			return
		}

		// 将用户信息存入上下文
		c.Set(UserContextKey, &UserContext{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})

		c.Next()
	}
}

// GetUserContext 从 Gin Context 获取用户上下文
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	userCtx, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}

	ctx, ok := userCtx.(*UserContext)
	return ctx, ok
}

// MustUserID 从 Gin Context 获取当前用户 ID，未认证时返回空串
func MustUserID(c *gin.Context) string {
	userCtx, ok := GetUserContext(c)
	if !ok {
		return ""
	}
	return userCtx.UserID
}
