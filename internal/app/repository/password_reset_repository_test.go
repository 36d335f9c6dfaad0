package repository

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetRepository_Lifecycle(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewPasswordResetRepository(testDB)
	now := time.Now()

	live := &model.PasswordReset{UserID: 1, Email: "a@example.com", Token: "live", ExpiresAt: now.Add(time.Hour)}
	expired := &model.PasswordReset{UserID: 1, Email: "a@example.com", Token: "expired", ExpiresAt: now.Add(-time.Minute)}
	used := &model.PasswordReset{UserID: 2, Email: "b@example.com", Token: "used", ExpiresAt: now.Add(time.Hour)}
	for _, r := range []*model.PasswordReset{live, expired, used} {
		require.NoError(t, repo.Create(r))
	}
	require.NoError(t, repo.MarkAsUsed(used.ID))

	found, err := repo.FindByToken("live")
	require.NoError(t, err)
	assert.True(t, found.Usable(now))

	deleted, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = repo.FindByToken("expired")
	assert.Error(t, err)
	_, err = repo.FindByToken("live")
	assert.NoError(t, err)
}
