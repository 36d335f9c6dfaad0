package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository, *MemoryTokenBlacklist) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	blacklist := NewMemoryTokenBlacklist()
	return NewAuthService(userRepo, blacklist, testSecret, 15*time.Minute, 24*time.Hour), userRepo, blacklist
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
		FullName:        "Test User",
		Phone:           "0900000000",
	}
}

func TestAuthService_Register(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register(registerInput("  Alice@Example.com "))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.NotNil(t, tokens)

	claims, err := util.ValidateToken(tokens.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, util.AccessToken, claims.TokenType)
}

func TestAuthService_Register_Errors(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)
	_, _, err := authService.Register(registerInput("taken@example.com"))
	require.NoError(t, err)

	mismatch := registerInput("new@example.com")
	mismatch.ConfirmPassword = "different"

	short := registerInput("short@example.com")
	short.Password, short.ConfirmPassword = "abc", "abc"

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"Duplicate email", registerInput("TAKEN@example.com"), ErrEmailAlreadyExists},
		{"Password mismatch", mismatch, ErrPasswordMismatch},
		{"Password too short", short, util.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, user)
			assert.Nil(t, tokens)
		})
	}
}

func TestAuthService_Register_MismatchSkipsDatabase(t *testing.T) {
	// nil repository panics if touched
	authService := NewAuthService(nil, nil, testSecret, time.Minute, time.Hour)
	in := registerInput("a@example.com")
	in.ConfirmPassword = "nope"

	_, _, err := authService.Register(in)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestAuthService_Login(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)
	registered, _, err := authService.Register(registerInput("bob@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"Valid credentials", "bob@example.com", "secret123", nil},
		{"Email is case-insensitive", "BOB@example.com", "secret123", nil},
		{"Wrong password", "bob@example.com", "wrong-pass", ErrInvalidCredentials},
		{"Unknown email", "nobody@example.com", "secret123", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
			assert.NotEmpty(t, tokens.RefreshToken)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)
	_, tokens, err := authService.Register(registerInput("carol@example.com"))
	require.NoError(t, err)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	claims, err := util.ValidateToken(refreshed.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", claims.Email)

	_, err = authService.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = authService.Refresh("garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Logout(t *testing.T) {
	authService, _, blacklist := setupAuthServiceTest(t)
	ctx := context.Background()

	require.NoError(t, authService.Logout(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// already expired tokens need no blacklist entry
	require.NoError(t, authService.Logout(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)
	user, _, err := authService.Register(registerInput("dave@example.com"))
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, " Dave Nguyen ", "0911222333")
	require.NoError(t, err)
	assert.Equal(t, "Dave Nguyen", updated.FullName)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "0911222333", found.Phone)

	_, err = authService.UpdateProfile(9999, "x", "y")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)
	user, _, err := authService.Register(registerInput("erin@example.com"))
	require.NoError(t, err)

	assert.ErrorIs(t, authService.ChangePassword(user.ID, "wrong-pass", "newsecret"), ErrInvalidCredentials)
	assert.ErrorIs(t, authService.ChangePassword(user.ID, "secret123", "abc"), util.ErrPasswordTooShort)

	require.NoError(t, authService.ChangePassword(user.ID, "secret123", "newsecret"))
	_, _, err = authService.Login("erin@example.com", "newsecret")
	assert.NoError(t, err)
	_, _, err = authService.Login("erin@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryTokenBlacklist_Expires(t *testing.T) {
	b := NewMemoryTokenBlacklist()
	now := time.Now()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "t", time.Minute))
	revoked, _ := b.IsRevoked(ctx, "t")
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = b.IsRevoked(ctx, "t")
	assert.False(t, revoked)
}
