package repository

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepository_NewestFirstAndAverage(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewReviewRepository(testDB)
	user := &model.User{Email: "r@example.com", PasswordHash: "x", FullName: "Reviewer"}
	require.NoError(t, testDB.Create(user).Error)

	now := time.Now()
	for i, rating := range []int{5, 4, 4} {
		require.NoError(t, repo.Create(&model.Review{
			UserID:    user.ID,
			ProductID: "p1",
			Rating:    rating,
			Comment:   "ok",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(&model.Review{UserID: user.ID, ProductID: "p2", Rating: 1, Comment: "bad"}))

	reviews, err := repo.FindByProductID("p1")
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.True(t, reviews[0].CreatedAt.After(reviews[2].CreatedAt))
	assert.Equal(t, "Reviewer", reviews[0].User.FullName)

	avg, count, err := repo.AverageRating("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.InDelta(t, 4.333, avg, 0.001)

	avg, count, err = repo.AverageRating("none")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)
}
