package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedRouter(t *testing.T, tm *TokenManager, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Middleware(tm)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": UserID(c),
			"role":    RoleOf(c),
		})
	})
	router.GET("/protected", handlers...)
	return router
}

// TestMiddlewareMissingHeader 无 Authorization 头返回 401
func TestMiddlewareMissingHeader(t *testing.T) {
	tm := newTestTokenManager(t)
	router := newAuthedRouter(t, tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestMiddlewareInvalidToken 非法 token 返回 401
func TestMiddlewareInvalidToken(t *testing.T) {
	tm := newTestTokenManager(t)
	router := newAuthedRouter(t, tm)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestMiddlewareValidToken 合法 token 放行并把用户信息写进上下文
func TestMiddlewareValidToken(t *testing.T) {
	tm := newTestTokenManager(t)
	router := newAuthedRouter(t, tm)

	token, err := tm.Issue(&model.UserModel{ID: "user-1", Role: model.RoleManager})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, w.Body.String(), `"role":"MANAGER"`)
}

// TestRequireRoleForbidden 角色不在允许列表返回 403
func TestRequireRoleForbidden(t *testing.T) {
	tm := newTestTokenManager(t)
	router := newAuthedRouter(t, tm, RequireRole(model.RoleAdmin))

	token, err := tm.Issue(&model.UserModel{ID: "user-1", Role: model.RoleOfficer})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestRequireRoleAllowed 命中允许角色放行
func TestRequireRoleAllowed(t *testing.T) {
	tm := newTestTokenManager(t)
	router := newAuthedRouter(t, tm, RequireRole(model.RoleAdmin, model.RoleManager))

	token, err := tm.Issue(&model.UserModel{ID: "admin-1", Role: model.RoleAdmin})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
