package service

import (
	"testing"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/auth"
	"github.com/e4rthen/storefront-backend/internal/db"
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

func createUser(t *testing.T, testDB *gorm.DB, username, email string) (*model.User, auth.Identity) {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user, auth.Identity{UserID: user.ID, Username: user.Username, Email: user.Email}
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

func countRows(t *testing.T, testDB *gorm.DB, value interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, testDB.Model(value).Count(&count).Error)
	return count
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
