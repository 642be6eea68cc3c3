package auth

import (
	"net/http"
	"strings"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID gin 上下文里的用户 ID 键
	ContextUserID = "user_id"
	// ContextRole gin 上下文里的角色键
	ContextRole = "role"
)

// Middleware JWT 认证中间件
func Middleware(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing authorization header",
			})
			c.Abort()
			return
		}

		// 移除 "Bearer " 前缀
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := tm.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "invalid token",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}

		// 将用户信息存储到上下文
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RequireRole 角色限制中间件,必须挂在 Middleware 之后
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(ContextRole)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthenticated",
			})
			c.Abort()
			return
		}

		role, _ := value.(model.Role)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": "insufficient role",
		})
		c.Abort()
	}
}

// UserID 从 gin 上下文取当前用户 ID
func UserID(c *gin.Context) string {
	value, ok := c.Get(ContextUserID)
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}

// RoleOf 从 gin 上下文取当前用户角色
func RoleOf(c *gin.Context) model.Role {
	value, ok := c.Get(ContextRole)
	if !ok {
		return ""
	}
	role, _ := value.(model.Role)
	return role
}
