package controller

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects struct {
	keys []string
}

func (m *memoryObjects) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return m.PublicURL(key), nil
}

func (m *memoryObjects) PresignPut(_ context.Context, key, _ string) (string, error) {
	return "https://signed.example/" + key, nil
}

func (m *memoryObjects) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func multipartImage(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func upload(router http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupUploadControllerTest(t *testing.T, objects service.ObjectStorage) (*gin.Engine, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	user := &model.User{Email: "avatar@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, userRepo.Create(user))

	ctrl := NewUploadController(service.NewUploadService(objects, userRepo))
	router := gin.New()
	router.POST("/auth/avatar", asUser(user.ID), ctrl.UploadAvatar)
	router.POST("/admin/upload/image", ctrl.UploadImage)
	router.POST("/admin/upload/presigned-url", ctrl.GeneratePresignedURL)
	return router, user
}

func TestUploadController_UploadAvatar(t *testing.T) {
	objects := &memoryObjects{}
	router, _ := setupUploadControllerTest(t, objects)

	body, ct := multipartImage(t, "me.png", "image/png", []byte("\x89PNG\r\n"))
	w := upload(router, "/auth/avatar", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, objects.keys, 1)
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "https://cdn.example/"+objects.keys[0], user["avatar_url"])
}

func TestUploadController_UploadImage(t *testing.T) {
	router, _ := setupUploadControllerTest(t, &memoryObjects{})

	body, ct := multipartImage(t, "shirt.jpg", "image/jpeg", []byte("jpeg"))
	w := upload(router, "/admin/upload/image", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, decodeBody(t, w)["key"], "products/")

	body, ct = multipartImage(t, "notes.txt", "text/plain", []byte("hello"))
	w = upload(router, "/admin/upload/image", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartImage(t, "shirt.jpg", "image/jpeg", []byte("jpeg"))
	w = upload(router, "/admin/upload/image?folder=secrets", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPost, "/admin/upload/image", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadController_GeneratePresignedURL(t *testing.T) {
	router, _ := setupUploadControllerTest(t, &memoryObjects{})

	w := performRequest(router, http.MethodPost, "/admin/upload/presigned-url", gin.H{
		"filename":     "banner.webp",
		"content_type": "image/webp",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Contains(t, body["upload_url"], "https://signed.example/products/")
	assert.Contains(t, body["public_url"], "https://cdn.example/products/")
}

func TestUploadController_StorageDisabled(t *testing.T) {
	router, _ := setupUploadControllerTest(t, nil)

	w := performRequest(router, http.MethodPost, "/admin/upload/presigned-url", gin.H{
		"filename":     "banner.png",
		"content_type": "image/png",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
