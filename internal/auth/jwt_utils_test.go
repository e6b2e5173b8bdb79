package auth

import (
	"testing"
	"time"

	"go-ticket-pos/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Configure(config.AuthSettings{JWTSecret: "test-secret-0123456789", TokenTTL: time.Hour})

	signed, claims, err := GenerateToken(7, 4, 2, "cashier1")
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	parsed, err := ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.UserID)
	assert.Equal(t, uint(4), parsed.RoleID)
	assert.Equal(t, uint(2), parsed.TenantID)
	assert.Equal(t, "cashier1", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), parsed.ExpiresAt.Time, 5*time.Second)
}

func TestValidateToken_Rejects(t *testing.T) {
	Configure(config.AuthSettings{JWTSecret: "test-secret-0123456789", TokenTTL: time.Hour})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1})
		signed, err := other.SignedString([]byte("another-secret-value"))
		require.NoError(t, err)
		_, err = ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		signed, err := expired.SignedString(jwtKey)
		require.NoError(t, err)
		_, err = ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
		signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ValidateToken(signed)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
