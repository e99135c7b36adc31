package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_ExpiryWindow(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tm, err := NewTokenManager("secret", 24*time.Hour)
	require.NoError(t, err)
	tm.Now = fixedClock(issued)

	token, err := tm.GenerateToken(7, "u1", "Alice", "user")
	require.NoError(t, err)

	tm.Now = fixedClock(issued.Add(23*time.Hour + 59*time.Minute))
	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "u1", claims.RegisterID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "user", claims.Role)

	tm.Now = fixedClock(issued.Add(24*time.Hour + time.Minute))
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	tm, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(1, "u1", "A", "user")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := tm.GenerateToken(0, "u1", "A", "user")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"zero user id", noUser},
		{"garbage", "not-a-token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("p@ss", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "p@ss", hash)
	assert.True(t, CheckPassword(hash, "p@ss"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "p@ss"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword(strings.Repeat("a", MaxPasswordBytes)))

	err := ValidatePassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.True(t, IsKind(err, KindBadRequest))
}
