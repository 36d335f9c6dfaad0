package util

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storefrontSecret = "storefront-jwt-secret"

func issuePair(t *testing.T, userID uint, role string) *TokenPair {
	t.Helper()
	pair, err := GenerateTokenPair(userID, "shopper@example.com", role, storefrontSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return pair
}

func TestTokenPair_CarriesShopperClaims(t *testing.T) {
	pair := issuePair(t, 42, "admin")

	access, err := ValidateToken(pair.AccessToken, storefrontSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "42", access.Subject)
	assert.Equal(t, "shopper@example.com", access.Email)
	assert.Equal(t, "admin", access.Role)
	assert.Equal(t, AccessToken, access.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), access.ExpiresAt.Time, 5*time.Second)

	refresh, err := ValidateToken(pair.RefreshToken, storefrontSecret)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, refresh.TokenType)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refresh.ExpiresAt.Time, 5*time.Second)
}

// Logout revokes by token id, so every issued token needs its own.
func TestTokenPair_EveryTokenHasItsOwnID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		pair := issuePair(t, 7, "user")
		for _, raw := range []string{pair.AccessToken, pair.RefreshToken} {
			claims, err := ValidateToken(raw, storefrontSecret)
			require.NoError(t, err)
			require.NotEmpty(t, claims.ID)
			assert.False(t, seen[claims.ID], "token id %s issued twice", claims.ID)
			seen[claims.ID] = true
		}
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	pair := issuePair(t, 1, "user")

	parts := strings.Split(pair.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"empty", "", storefrontSecret},
		{"garbage", "not-a-jwt", storefrontSecret},
		{"other secret", pair.AccessToken, "another-shop"},
		{"tampered payload", tampered, storefrontSecret},
		{"alg none", unsigned, storefrontSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	pair, err := GenerateTokenPair(3, "late@example.com", "user", storefrontSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(pair.AccessToken, storefrontSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = ValidateToken(pair.RefreshToken, storefrontSecret)
	assert.NoError(t, err)
}
