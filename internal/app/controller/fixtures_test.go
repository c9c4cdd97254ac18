package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/auth"
	"github.com/e4rthen/storefront-backend/internal/db"
	apperrors "github.com/e4rthen/storefront-backend/internal/errors"
	"github.com/e4rthen/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// as stands in for the auth middleware.
func as(identity auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func createUser(t *testing.T, testDB *gorm.DB, username string) auth.Identity {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return auth.Identity{UserID: user.ID, Username: user.Username, Email: user.Email}
}

func createProduct(t *testing.T, testDB *gorm.DB, name, price string) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	decode(t, w, &body)
	return body.Error
}

func mustField(t *testing.T, w *httptest.ResponseRecorder, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	decode(t, w, &fields)
	value, ok := fields[name]
	require.True(t, ok, "missing field %s", name)
	return value
}
