package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *captureNotifier) SendResetToken(_ context.Context, email, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = make(map[string]string)
	}
	n.tokens[email] = token
	return nil
}

func setupPasswordResetTest(t *testing.T) (PasswordResetService, AuthService, *captureNotifier) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	notifier := &captureNotifier{}
	resetService := NewPasswordResetService(repository.NewPasswordResetRepository(testDB), userRepo, notifier)
	authService := NewAuthService(userRepo, nil, testSecret, time.Minute, time.Hour)
	return resetService, authService, notifier
}

func TestPasswordResetService_Flow(t *testing.T) {
	resetService, authService, notifier := setupPasswordResetTest(t)
	ctx := context.Background()

	_, _, err := authService.Register(registerInput("frank@example.com"))
	require.NoError(t, err)

	require.NoError(t, resetService.RequestReset(ctx, "Frank@Example.com"))
	token := notifier.tokens["frank@example.com"]
	require.Len(t, token, 64)

	assert.ErrorIs(t, resetService.ResetPassword(token, "newsecret", "other"), ErrPasswordMismatch)
	require.NoError(t, resetService.ResetPassword(token, "newsecret", "newsecret"))

	_, _, err = authService.Login("frank@example.com", "newsecret")
	assert.NoError(t, err)

	// single use
	assert.ErrorIs(t, resetService.ResetPassword(token, "another1", "another1"), ErrInvalidResetToken)
}

func TestPasswordResetService_UnknownEmailIsSilent(t *testing.T) {
	resetService, _, notifier := setupPasswordResetTest(t)

	require.NoError(t, resetService.RequestReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, notifier.tokens)
}

func TestPasswordResetService_ExpiredToken(t *testing.T) {
	resetService, authService, notifier := setupPasswordResetTest(t)
	ctx := context.Background()
	_, _, err := authService.Register(registerInput("gina@example.com"))
	require.NoError(t, err)
	require.NoError(t, resetService.RequestReset(ctx, "gina@example.com"))

	svc := resetService.(*passwordResetService)
	svc.now = func() time.Time { return time.Now().Add(2 * ResetTokenExpiry) }

	err = resetService.ResetPassword(notifier.tokens["gina@example.com"], "newsecret", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	n, err := resetService.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPasswordResetService_UnknownToken(t *testing.T) {
	resetService, _, _ := setupPasswordResetTest(t)
	assert.ErrorIs(t, resetService.ResetPassword("nope", "newsecret", "newsecret"), ErrInvalidResetToken)
}
