package auth

import (
	"testing"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, "document-management", time.Hour)
	require.NoError(t, err)
	return tm
}

// TestNewTokenManagerRejectsShortSecret 密钥不足 32 字节拒绝启动
func TestNewTokenManagerRejectsShortSecret(t *testing.T) {
	_, err := NewTokenManager("too-short", "issuer", time.Hour)
	assert.Error(t, err)
}

// TestIssueAndValidate 签发的 token 能被验证并还原声明
func TestIssueAndValidate(t *testing.T) {
	tm := newTestTokenManager(t)
	user := &model.UserModel{ID: "user-1", Name: "user-1", Role: model.RoleManager}

	token, err := tm.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, model.RoleManager, claims.Role)
	assert.Equal(t, "document-management", claims.Issuer)
}

// TestValidateRejectsWrongSecret 换密钥后旧 token 全部失效
func TestValidateRejectsWrongSecret(t *testing.T) {
	tm := newTestTokenManager(t)
	other, err := NewTokenManager("ffffffffffffffffffffffffffffffff", "document-management", time.Hour)
	require.NoError(t, err)

	token, err := tm.Issue(&model.UserModel{ID: "user-1", Role: model.RoleOfficer})
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

// TestValidateRejectsWrongIssuer 签发方不匹配拒绝
func TestValidateRejectsWrongIssuer(t *testing.T) {
	tm := newTestTokenManager(t)
	other, err := NewTokenManager(testSecret, "another-service", time.Hour)
	require.NoError(t, err)

	token, err := other.Issue(&model.UserModel{ID: "user-1", Role: model.RoleOfficer})
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

// TestValidateRejectsExpiredToken 过期 token 拒绝
func TestValidateRejectsExpiredToken(t *testing.T) {
	tm, err := NewTokenManager(testSecret, "document-management", time.Nanosecond)
	require.NoError(t, err)
	// ttl<=0 会回退为默认值,这里用 1ns 再等它过期
	token, err := tm.Issue(&model.UserModel{ID: "user-1", Role: model.RoleOfficer})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = tm.Validate(token)
	assert.Error(t, err)
}

// TestValidateRejectsGarbage 非 JWT 输入拒绝
func TestValidateRejectsGarbage(t *testing.T) {
	tm := newTestTokenManager(t)
	_, err := tm.Validate("not-a-token")
	assert.Error(t, err)
}
