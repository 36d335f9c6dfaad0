package repository

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: &model.User{
				Email:        "linh@example.com",
				PasswordHash: "hashedpassword",
				FullName:     "Nguyễn Linh",
				Phone:        "0901234567",
				Role:         model.RoleUser,
			},
			wantErr: false,
		},
		{
			name: "Duplicate email",
			user: &model.User{
				Email:        "linh@example.com",
				PasswordHash: "other",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Email: "an@example.com", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByEmail("an@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateProfileAndPassword(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Email: "an@example.com", PasswordHash: "old", Role: model.RoleUser}
	require.NoError(t, repo.Create(user))

	user.FullName = "Trần An"
	user.Phone = "0912345678"
	require.NoError(t, repo.Update(user))
	require.NoError(t, repo.UpdatePassword(user.ID, "new"))
	require.NoError(t, repo.UpdateAvatar(user.ID, "https://cdn.example.com/avatars/1.png"))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trần An", found.FullName)
	assert.Equal(t, "0912345678", found.Phone)
	assert.Equal(t, "new", found.PasswordHash)
	assert.Equal(t, "https://cdn.example.com/avatars/1.png", found.AvatarURL)
}

func TestUserRepository_CountByRole(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(&model.User{Email: "a@example.com", PasswordHash: "x", Role: model.RoleUser}))
	require.NoError(t, repo.Create(&model.User{Email: "b@example.com", PasswordHash: "x", Role: model.RoleUser}))
	require.NoError(t, repo.Create(&model.User{Email: "c@example.com", PasswordHash: "x", Role: model.RoleAdmin}))

	count, err := repo.CountByRole(model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
