package repository

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAddressTest(t *testing.T) (*gorm.DB, AddressRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	return testDB, NewAddressRepository(testDB)
}

func newAddress(userID uint, label string) *model.Address {
	return &model.Address{
		UserID:      userID,
		Label:       label,
		Recipient:   "Phạm Minh",
		Phone:       "0987654321",
		FullAddress: "45 Nguyễn Huệ, Quận 1, TP.HCM",
		Lat:         10.7741,
		Lng:         106.7038,
	}
}

func defaultCount(t *testing.T, repo AddressRepository, userID uint) int {
	t.Helper()
	addresses, err := repo.FindByUserID(userID)
	require.NoError(t, err)
	n := 0
	for _, a := range addresses {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestAddressRepository_FirstAddressIsDefault(t *testing.T) {
	testDB, repo := setupAddressTest(t)
	defer db.CleanupTestDB(testDB)

	home := newAddress(1, "Home")
	require.NoError(t, repo.Create(home))
	assert.True(t, home.IsDefault)

	office := newAddress(1, "Office")
	require.NoError(t, repo.Create(office))
	assert.False(t, office.IsDefault)
	assert.Equal(t, 1, defaultCount(t, repo, 1))
}

func TestAddressRepository_CreateDefaultReplacesPrevious(t *testing.T) {
	testDB, repo := setupAddressTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newAddress(1, "Home")))
	office := newAddress(1, "Office")
	office.IsDefault = true
	require.NoError(t, repo.Create(office))

	def, err := repo.FindDefault(1)
	require.NoError(t, err)
	assert.Equal(t, office.ID, def.ID)
	assert.Equal(t, 1, defaultCount(t, repo, 1))
}

func TestAddressRepository_SetDefaultIsExclusivePerUser(t *testing.T) {
	testDB, repo := setupAddressTest(t)
	defer db.CleanupTestDB(testDB)

	home := newAddress(1, "Home")
	office := newAddress(1, "Office")
	stranger := newAddress(2, "Home")
	require.NoError(t, repo.Create(home))
	require.NoError(t, repo.Create(office))
	require.NoError(t, repo.Create(stranger))

	require.NoError(t, repo.SetDefault(1, office.ID))
	def, err := repo.FindDefault(1)
	require.NoError(t, err)
	assert.Equal(t, office.ID, def.ID)
	assert.Equal(t, 1, defaultCount(t, repo, 1))

	// another user's default is untouched
	def, err = repo.FindDefault(2)
	require.NoError(t, err)
	assert.Equal(t, stranger.ID, def.ID)

	assert.ErrorIs(t, repo.SetDefault(1, stranger.ID), gorm.ErrRecordNotFound)
}

func TestAddressRepository_DeleteDefaultPromotesAnother(t *testing.T) {
	testDB, repo := setupAddressTest(t)
	defer db.CleanupTestDB(testDB)

	home := newAddress(1, "Home")
	office := newAddress(1, "Office")
	require.NoError(t, repo.Create(home))
	require.NoError(t, repo.Create(office))

	require.NoError(t, repo.Delete(home.ID))

	def, err := repo.FindDefault(1)
	require.NoError(t, err)
	assert.Equal(t, office.ID, def.ID)
}
