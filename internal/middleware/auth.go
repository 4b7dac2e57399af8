package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/moviehub/internal/service"
	"github.com/user/moviehub/internal/utils"
)

// 上下文键
const (
	ContextUserID   = "user_id"
	ContextEmail    = "email"
	ContextUsername = "username"
)

// RequireAuth 必须登录中间件，Token 缺失或无效时返回 401
func RequireAuth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.Verify(BearerToken(c))
		if err != nil {
			utils.Unauthorized(c, "Access token required")
			return
		}

		// 将用户信息存入上下文
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

// BearerToken 从 Authorization Header 中提取 Token
func BearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// GetUserID 从上下文获取用户 ID（未登录返回 0）
func GetUserID(c *gin.Context) int {
	if userID, exists := c.Get(ContextUserID); exists {
		if id, ok := userID.(int); ok {
			return id
		}
	}
	return 0
}
