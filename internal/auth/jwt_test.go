package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret", "prompt-manager-test", time.Hour, 24*time.Hour, nil)
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair("user-1", "alice", "user")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	t.Run("访问令牌有效", func(t *testing.T) {
		claims, err := svc.ValidateToken(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("刷新令牌类型正确", func(t *testing.T) {
		claims, err := svc.ValidateToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("篡改令牌被拒绝", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, pair.AccessToken+"x")
		assert.Error(t, err)
	})

	t.Run("错误密钥被拒绝", func(t *testing.T) {
		other := NewJWTService("another-secret", "prompt-manager-test", time.Hour, 24*time.Hour, nil)
		_, err := other.ValidateToken(ctx, pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	svc := newTestJWTService()
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair("user-1", "alice", "admin")
	require.NoError(t, err)

	t.Run("刷新令牌换取新令牌对", func(t *testing.T) {
		renewed, err := svc.RefreshAccessToken(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(ctx, renewed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("访问令牌不能用于刷新", func(t *testing.T) {
		_, err := svc.RefreshAccessToken(ctx, pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestExtractTokenFromBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromBearer("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromBearer("abc"))
	assert.Equal(t, "", ExtractTokenFromBearer(""))
}
