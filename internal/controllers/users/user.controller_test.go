package userController

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gentrack/internal/apperrors"
	"gentrack/internal/database"
	. "gentrack/internal/models"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTest(t *testing.T) (repositories.Repository, UserControllerInterface, *User) {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.DB{SQL: gormDB}
	require.NoError(t, db.MigrateModels())

	repos := repositories.New(db)
	controller := New(repos.User, repos.Venue)

	admin := &User{Username: "admin", Email: "admin@example.com", Role: RoleAdmin, IsActive: true}
	require.NoError(t, admin.SetPassword("password"))
	require.NoError(t, repos.User.Create(ctx, admin))

	return repos, controller, admin
}

func TestCreateUser(t *testing.T) {
	repos, controller, admin := setupTest(t)
	ctx := context.Background()

	venue := &Venue{Name: "Fairgrounds", IsActive: true, CreatedByID: admin.ID}
	require.NoError(t, repos.Venue.Create(ctx, venue))

	user, err := controller.Create(ctx, admin, CreateUserRequest{
		Username:        "operator",
		Email:           "Operator@Example.com",
		Password:        "secret",
		AssignedVenueID: &venue.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, user.Role, "role defaults to user")
	assert.Equal(t, "operator@example.com", user.Email, "email is normalized")
	require.NotNil(t, user.AssignedVenueID)
	assert.Equal(t, venue.ID, *user.AssignedVenueID)
	assert.True(t, user.CheckPassword("secret"))
}

func TestCreateUserValidation(t *testing.T) {
	repos, controller, admin := setupTest(t)
	ctx := context.Background()

	inactive := &Venue{Name: "Closed", IsActive: false, CreatedByID: admin.ID}
	require.NoError(t, repos.Venue.Create(ctx, inactive))

	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr error
	}{
		{
			name:    "missing username",
			req:     CreateUserRequest{Email: "a@b.com", Password: "x"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "missing password",
			req:     CreateUserRequest{Username: "a", Email: "a@b.com"},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "invalid role",
			req: CreateUserRequest{
				Username: "a", Email: "a@b.com", Password: "x", Role: Role("owner"),
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "duplicate username",
			req: CreateUserRequest{
				Username: "admin", Email: "other@example.com", Password: "x",
			},
			wantErr: apperrors.ErrConflict,
		},
		{
			name: "unknown venue",
			req: CreateUserRequest{
				Username: "a", Email: "a@b.com", Password: "x",
				AssignedVenueID: ptr(uuid.New()),
			},
			wantErr: apperrors.ErrNotFound,
		},
		{
			name: "inactive venue",
			req: CreateUserRequest{
				Username: "a", Email: "a@b.com", Password: "x",
				AssignedVenueID: &inactive.ID,
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := controller.Create(ctx, admin, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateUserVenueAssignment(t *testing.T) {
	repos, controller, admin := setupTest(t)
	ctx := context.Background()

	venue := &Venue{Name: "Fairgrounds", IsActive: true, CreatedByID: admin.ID}
	require.NoError(t, repos.Venue.Create(ctx, venue))

	user, err := controller.Create(ctx, admin, CreateUserRequest{
		Username: "operator", Email: "op@example.com", Password: "secret",
	})
	require.NoError(t, err)

	updated, err := controller.Update(ctx, admin, user.ID, UpdateUserRequest{
		AssignedVenueID: &venue.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedVenueID)
	assert.Equal(t, venue.ID, *updated.AssignedVenueID)

	cleared, err := controller.Update(ctx, admin, user.ID, UpdateUserRequest{ClearVenue: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedVenueID)
}

func TestSelfProtection(t *testing.T) {
	_, controller, admin := setupTest(t)
	ctx := context.Background()

	err := controller.Delete(ctx, admin, admin.ID)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	demoted := RoleUser
	_, err = controller.Update(ctx, admin, admin.ID, UpdateUserRequest{Role: &demoted})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDeleteDeactivates(t *testing.T) {
	repos, controller, admin := setupTest(t)
	ctx := context.Background()

	user, err := controller.Create(ctx, admin, CreateUserRequest{
		Username: "operator", Email: "op@example.com", Password: "secret",
	})
	require.NoError(t, err)

	require.NoError(t, controller.Delete(ctx, admin, user.ID))

	// The row survives for audit references, just deactivated.
	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// And it is gone from the admin listing.
	listed, err := controller.List(ctx, admin)
	require.NoError(t, err)
	for _, u := range listed {
		assert.NotEqual(t, user.ID, u.ID)
	}
}

func TestResetPassword(t *testing.T) {
	repos, controller, admin := setupTest(t)
	ctx := context.Background()

	user, err := controller.Create(ctx, admin, CreateUserRequest{
		Username: "operator", Email: "op@example.com", Password: "old",
	})
	require.NoError(t, err)

	require.ErrorIs(t,
		controller.ResetPassword(ctx, admin, user.ID, ""),
		apperrors.ErrValidation,
	)

	require.NoError(t, controller.ResetPassword(ctx, admin, user.ID, "new"))

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.CheckPassword("old"))
	assert.True(t, stored.CheckPassword("new"))
}

func TestChangePassword(t *testing.T) {
	repos, controller, admin := setupTest(t)
	ctx := context.Background()

	user, err := controller.Create(ctx, admin, CreateUserRequest{
		Username: "operator", Email: "op@example.com", Password: "old",
	})
	require.NoError(t, err)

	require.ErrorIs(t,
		controller.ChangePassword(ctx, user, "", "new"),
		apperrors.ErrValidation,
	)
	require.ErrorIs(t,
		controller.ChangePassword(ctx, user, "old", ""),
		apperrors.ErrValidation,
	)
	require.ErrorIs(t,
		controller.ChangePassword(ctx, user, "wrong", "new"),
		apperrors.ErrUnauthorized,
	)

	require.NoError(t, controller.ChangePassword(ctx, user, "old", "new"))

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.CheckPassword("old"))
	assert.True(t, stored.CheckPassword("new"))
}

func TestInactiveFlagPersistsOnCreate(t *testing.T) {
	repos, _, admin := setupTest(t)
	ctx := context.Background()

	// A record inserted with IsActive false must stay false; a column
	// default would silently flip it on insert.
	venue := &Venue{Name: "Closed", IsActive: false, CreatedByID: admin.ID}
	require.NoError(t, repos.Venue.Create(ctx, venue))

	stored, err := repos.Venue.GetByID(ctx, venue.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestAdminOnly(t *testing.T) {
	repos, controller, _ := setupTest(t)
	ctx := context.Background()

	operator := &User{Username: "operator", Email: "op@example.com", Role: RoleUser, IsActive: true}
	require.NoError(t, operator.SetPassword("password"))
	require.NoError(t, repos.User.Create(ctx, operator))

	_, err := controller.List(ctx, operator)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = controller.Create(ctx, operator, CreateUserRequest{
		Username: "x", Email: "x@example.com", Password: "x",
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func ptr[T any](v T) *T {
	return &v
}
