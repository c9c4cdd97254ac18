package repository

import (
	"context"
	"testing"

	"github.com/e4rthen/storefront-backend/internal/app/model"
	"github.com/e4rthen/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewUserRepository(testDB)
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"},
			wantErr: false,
		},
		{
			name:    "Duplicate username",
			user:    &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "hash"},
			wantErr: true,
		},
		{
			name:    "Duplicate email is allowed by the schema",
			user:    &model.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "hash"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
				assert.Equal(t, model.RoleUser, tt.user.Role)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	found, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_FindAllByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	users, err := repo.FindAllByEmail(ctx, "shared@example.com")
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, repo.Create(ctx, &model.User{Username: "one", Email: "shared@example.com", PasswordHash: "hash"}))
	require.NoError(t, repo.Create(ctx, &model.User{Username: "two", Email: "shared@example.com", PasswordHash: "hash"}))

	users, err = repo.FindAllByEmail(ctx, "shared@example.com")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "one", users[0].Username)
}
