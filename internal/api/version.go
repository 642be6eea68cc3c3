package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// contextAPIVersion gin 上下文里的 API 版本键
const contextAPIVersion = "api_version"

// VersionMiddleware API 版本中间件
// 版本取自 URL 路径(/api/v1/...),请求头 API-Version 可以覆盖它;
// 目前只有 v1,解析结果放进上下文供响应侧使用
func VersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		version := versionFromPath(c.Request.URL.Path)
		if headerVersion := c.GetHeader("API-Version"); headerVersion != "" {
			version = headerVersion
		}

		c.Header("X-API-Version", version)
		c.Set(contextAPIVersion, version)
		c.Next()
	}
}

// versionFromPath 从 /api/vN/... 里取出版本段,取不到回退为 v1
func versionFromPath(path string) string {
	const prefix = "/api/"
	if !strings.HasPrefix(path, prefix) {
		return "v1"
	}
	rest := strings.TrimPrefix(path, prefix)
	segment, _, _ := strings.Cut(rest, "/")
	if strings.HasPrefix(segment, "v") && len(segment) > 1 {
		return segment
	}
	return "v1"
}

// GetAPIVersion 从上下文获取 API 版本
func GetAPIVersion(c *gin.Context) string {
	if version, exists := c.Get(contextAPIVersion); exists {
		if v, ok := version.(string); ok {
			return v
		}
	}
	return "v1"
}
