package controller

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "controller-test-secret"

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	blacklist := service.NewMemoryTokenBlacklist()
	authService := service.NewAuthService(userRepo, blacklist, testJWTSecret, 15*time.Minute, time.Hour)
	resetService := service.NewPasswordResetService(repository.NewPasswordResetRepository(testDB), userRepo, nil)
	ctrl := NewAuthController(authService, resetService)
	auth := middleware.NewAuthMiddleware(testJWTSecret, blacklist)

	router := gin.New()
	router.POST("/auth/register", ctrl.Register)
	router.POST("/auth/login", ctrl.Login)
	router.POST("/auth/refresh", ctrl.Refresh)
	router.POST("/auth/forgot-password", ctrl.ForgotPassword)
	router.POST("/auth/reset-password", ctrl.ResetPassword)
	router.POST("/auth/logout", auth.Authenticate(), ctrl.Logout)
	router.GET("/auth/me", auth.Authenticate(), ctrl.GetMe)
	router.PUT("/auth/me", auth.Authenticate(), ctrl.UpdateMe)
	router.PUT("/auth/password", auth.Authenticate(), ctrl.ChangePassword)
	return router
}

func register(t *testing.T, router *gin.Engine, email string) (string, string) {
	t.Helper()
	w := performRequest(router, http.MethodPost, "/auth/register", gin.H{
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
		"full_name":        "Nguyen Van A",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	return tokens["access_token"].(string), tokens["refresh_token"].(string)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthController_Register(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := performRequest(router, http.MethodPost, "/auth/register", gin.H{
		"email":            "Shopper@Example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
		"full_name":        "Shopper",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "shopper@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password_hash")
	assert.NotEmpty(t, body["tokens"].(map[string]interface{})["access_token"])
}

func TestAuthController_Register_PasswordMismatch(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := performRequest(router, http.MethodPost, "/auth/register", gin.H{
		"email":            "a@example.com",
		"password":         "secret123",
		"confirm_password": "secret124",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTH_PASSWORD_MISMATCH", decodeBody(t, w)["error"])
}

func TestAuthController_Register_Duplicate(t *testing.T) {
	router := setupAuthControllerTest(t)
	register(t, router, "dup@example.com")

	w := performRequest(router, http.MethodPost, "/auth/register", gin.H{
		"email":            "dup@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUTH_EMAIL_EXISTS", decodeBody(t, w)["error"])
}

func TestAuthController_Register_InvalidBody(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := performRequest(router, http.MethodPost, "/auth/register", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Login(t *testing.T) {
	router := setupAuthControllerTest(t)
	register(t, router, "login@example.com")

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{"correct password", "secret123", http.StatusOK},
		{"wrong password", "nope-nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/auth/login", gin.H{
				"email":    "login@example.com",
				"password": tt.password,
			})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthController_Refresh(t *testing.T) {
	router := setupAuthControllerTest(t)
	access, refresh := register(t, router, "refresh@example.com")

	w := performRequest(router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_MeAndLogout(t *testing.T) {
	router := setupAuthControllerTest(t)
	access, _ := register(t, router, "me@example.com")

	w := performRequest(router, http.MethodGet, "/auth/me", nil, bearer(access))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me@example.com", decodeBody(t, w)["user"].(map[string]interface{})["email"])

	w = performRequest(router, http.MethodPut, "/auth/me", gin.H{"full_name": "Tran Thi B", "phone": "0901234567"}, bearer(access))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tran Thi B", decodeBody(t, w)["user"].(map[string]interface{})["full_name"])

	w = performRequest(router, http.MethodPost, "/auth/logout", nil, bearer(access))
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/auth/me", nil, bearer(access))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_ChangePassword(t *testing.T) {
	router := setupAuthControllerTest(t)
	access, _ := register(t, router, "change@example.com")

	w := performRequest(router, http.MethodPut, "/auth/password", gin.H{
		"current_password": "wrong-one",
		"new_password":     "another123",
	}, bearer(access))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPut, "/auth/password", gin.H{
		"current_password": "secret123",
		"new_password":     "another123",
	}, bearer(access))
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "change@example.com",
		"password": "another123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_ForgotPassword_UnknownEmail(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := performRequest(router, http.MethodPost, "/auth/forgot-password", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_ResetPassword_InvalidToken(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := performRequest(router, http.MethodPost, "/auth/reset-password", gin.H{
		"token":            "does-not-exist",
		"new_password":     "another123",
		"confirm_password": "another123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AUTH_RESET_TOKEN_INVALID", decodeBody(t, w)["error"])
}
