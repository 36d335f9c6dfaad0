package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string]string)}
}

func (f *fakeObjects) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(data)
	return f.PublicURL(key), nil
}

func (f *fakeObjects) PresignPut(_ context.Context, key, _ string) (string, error) {
	return "https://signed.example/" + key + "?sig=1", nil
}

func (f *fakeObjects) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func pngFile(name string) FileUpload {
	return FileUpload{Filename: name, ContentType: "image/png", Size: 4, Body: strings.NewReader("\x89PNG")}
}

func TestUploadService_UploadImage(t *testing.T) {
	objects := newFakeObjects()
	uploadService := NewUploadService(objects, nil)
	ctx := context.Background()

	result, err := uploadService.UploadImage(ctx, storage.FolderProducts, pngFile("shirt.png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "products/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "https://cdn.example/"+result.Key, result.URL)
	assert.Equal(t, "\x89PNG", objects.objects[result.Key])

	_, err = uploadService.UploadImage(ctx, "secrets", pngFile("x.png"))
	assert.ErrorIs(t, err, storage.ErrUnknownFolder)

	_, err = uploadService.UploadImage(ctx, storage.FolderProducts, FileUpload{Filename: "x.exe", ContentType: "application/octet-stream"})
	assert.ErrorIs(t, err, storage.ErrUnsupportedType)

	big := pngFile("big.png")
	big.Size = storage.MaxImageSize + 1
	_, err = uploadService.UploadImage(ctx, storage.FolderProducts, big)
	assert.ErrorIs(t, err, storage.ErrFileTooLarge)
}

func TestUploadService_PresignImage(t *testing.T) {
	uploadService := NewUploadService(newFakeObjects(), nil)

	result, err := uploadService.PresignImage(context.Background(), storage.FolderCategories, "banner.webp", "image/webp")
	require.NoError(t, err)
	assert.Contains(t, result.UploadURL, result.Key)
	assert.Equal(t, "https://cdn.example/"+result.Key, result.PublicURL)
}

func TestUploadService_UploadAvatar(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	userRepo := repository.NewUserRepository(testDB)
	user := &model.User{Email: "avatar@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(user))

	uploadService := NewUploadService(newFakeObjects(), userRepo)
	updated, err := uploadService.UploadAvatar(context.Background(), user.ID, pngFile("me.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/avatars/1.png", updated.AvatarURL)
}

func TestUploadService_Disabled(t *testing.T) {
	uploadService := NewUploadService(nil, nil)
	_, err := uploadService.UploadImage(context.Background(), storage.FolderProducts, pngFile("a.png"))
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
