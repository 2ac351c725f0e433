package authController

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gentrack/config"
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

const testSecret = "test-secret-key"

func setupTest(t *testing.T) (repositories.Repository, AuthControllerInterface) {
	t.Helper()

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
	controller := New(repos.User, config.Config{
		JWTSecret:      testSecret,
		JWTExpiryHours: config.DefaultJWTExpiryHours,
	})
	return repos, controller
}

func createAccount(t *testing.T, repos repositories.Repository, username string, active bool) *User {
	t.Helper()

	user := &User{
		Username: username,
		Email:    username + "@example.com",
		Role:     RoleUser,
		IsActive: active,
	}
	require.NoError(t, user.SetPassword("correct horse"))
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	user := createAccount(t, repos, "deakins", true)

	byUsername, err := controller.Login(ctx, LoginRequest{Login: "deakins", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), byUsername.User.ID)
	assert.NotEmpty(t, byUsername.Token)

	byEmail, err := controller.Login(ctx, LoginRequest{Login: "deakins@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), byEmail.User.ID)

	// Login is recorded.
	reloaded, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	createAccount(t, repos, "deakins", true)
	createAccount(t, repos, "ghost", false)

	// Wrong password, unknown account, and deactivated account must be
	// indistinguishable to the caller.
	var messages []string
	for _, req := range []LoginRequest{
		{Login: "deakins", Password: "wrong"},
		{Login: "nobody", Password: "correct horse"},
		{Login: "ghost", Password: "correct horse"},
	} {
		_, err := controller.Login(ctx, req)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		messages = append(messages, err.Error())
	}
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[1], messages[2])
}

func TestLoginRequiresFields(t *testing.T) {
	_, controller := setupTest(t)
	ctx := context.Background()

	_, err := controller.Login(ctx, LoginRequest{Login: "", Password: "x"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = controller.Login(ctx, LoginRequest{Login: "x", Password: ""})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTokenRoundTrip(t *testing.T) {
	user := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Username:      "deakins",
		Role:          RoleAdmin,
	}

	token, err := generateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed)

	_, err = ParseToken(token, "other-secret")
	require.Error(t, err)

	expired, err := generateToken(user, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	require.Error(t, err)
}
