package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func useFastHashing(t *testing.T) {
	t.Helper()
	prev := hashCost
	hashCost = bcrypt.MinCost
	t.Cleanup(func() { hashCost = prev })
}

func TestValidatePassword_Policy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"Five characters", "abcde", ErrPasswordTooShort},
		{"Six characters", "abcdef", nil},
		{"Six accented runes", "mậtkhẩ", nil},
		{"72 bytes", strings.Repeat("a", 72), nil},
		{"73 bytes", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"Few runes but too many bytes", strings.Repeat("ẩ", 25), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	useFastHashing(t)

	hash, err := HashPassword("checkout-2026")
	require.NoError(t, err)
	assert.NotEqual(t, "checkout-2026", hash)

	assert.True(t, VerifyPassword(hash, "checkout-2026"))
	assert.False(t, VerifyPassword(hash, "checkout-2025"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPassword_SaltsEveryHash(t *testing.T) {
	useFastHashing(t)

	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "same password"))
	assert.True(t, VerifyPassword(second, "same password"))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("", "anything"))
	assert.False(t, VerifyPassword("plain-text-not-a-hash", "plain-text-not-a-hash"))
}
