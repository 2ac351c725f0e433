package repositories

import (
	"context"
	"time"

	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"

	"github.com/google/uuid"
)

const (
	USER_CACHE_EXPIRY = 24 * time.Hour
	USER_CACHE_PREFIX = "user:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	ListActive(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if found := r.getCacheByID(ctx, id, &user); found {
		return &user, nil
	}

	if err := r.db.SQLWithContext(ctx).Preload("AssignedVenue").First(&user, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	if err := r.addUserToCache(ctx, &user); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

// GetByLogin resolves a user by username or email, matching the login form
// which accepts either.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	log := r.log.Function("GetByLogin")

	var user User
	if err := r.db.SQLWithContext(ctx).
		Preload("AssignedVenue").
		Where("username = ? OR email = ?", login, login).
		First(&user).Error; err != nil {
		return nil, log.Err("failed to get user by login", err, "login", login)
	}

	return &user, nil
}

func (r *userRepository) ListActive(ctx context.Context) ([]User, error) {
	log := r.log.Function("ListActive")

	var users []User
	if err := r.db.SQLWithContext(ctx).
		Preload("AssignedVenue").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, log.Err("failed to list active users", err)
	}

	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "username", user.Username)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	if err := r.clearUserCache(ctx, user.ID); err != nil {
		log.Warn("failed to clear user cache after update", "userID", user.ID, "error", err)
	}

	return nil
}

func (r *userRepository) getCacheByID(ctx context.Context, userID uuid.UUID, user *User) bool {
	if r.db.Cache.User == nil {
		return false
	}

	cacheKey := USER_CACHE_PREFIX + userID.String()
	found, err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Get(user)
	if err != nil {
		r.log.Function("getCacheByID").
			Warn("failed to get user from cache", "userID", userID, "error", err)
		return false
	}

	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) error {
	if r.db.Cache.User == nil {
		return nil
	}

	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	if err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addUserToCache").
			Err("failed to add user to cache", err, "userID", user.ID)
	}
	return nil
}

func (r *userRepository) clearUserCache(ctx context.Context, userID uuid.UUID) error {
	if r.db.Cache.User == nil {
		return nil
	}

	cacheKey := USER_CACHE_PREFIX + userID.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Delete()
}
