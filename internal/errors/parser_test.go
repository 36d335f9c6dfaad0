package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		resource string
		wantCode string
	}{
		{"nil", nil, "", InternalServerError},
		{"record not found product", gorm.ErrRecordNotFound, "product", ProductNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), "order", OrderNotFound},
		{"unknown resource not found", gorm.ErrRecordNotFound, "widget", ResourceNotFound},
		{"pg unique email", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, "user", AuthEmailAlreadyExists},
		{"pg unique slug", &pgconn.PgError{Code: "23505", ConstraintName: "idx_categories_slug"}, "category", ResourceAlreadyExists},
		{"pg fk still referenced", &pgconn.PgError{Code: "23503", Detail: "Key (id)=(x) is still referenced from table products."}, "category", ResourceConflict},
		{"pg fk missing parent", &pgconn.PgError{Code: "23503", Detail: "Key (category_id)=(x) is not present"}, "product", ResourceNotFound},
		{"pg not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, "product", ValidationRequired},
		{"pg other", &pgconn.PgError{Code: "40001"}, "order", InternalDatabaseError},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.email"), "user", AuthEmailAlreadyExists},
		{"timeout", errors.New("dial tcp: i/o timeout"), "", InternalExternalAPI},
		{"other", errors.New("boom"), "product", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.resource)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestRespondWithParsedError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondWithParsedError(c, tt.err, "product")
		assert.Equal(t, tt.wantStatus, w.Code)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}
