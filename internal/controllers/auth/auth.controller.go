package authController

import (
	"context"
	"errors"
	"strings"
	"time"

	"gentrack/config"
	"gentrack/internal/apperrors"
	"gentrack/internal/logger"
	. "gentrack/internal/models"
	"gentrack/internal/repositories"

	"gorm.io/gorm"
)

type AuthControllerInterface interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type AuthController struct {
	userRepo repositories.UserRepository
	config   config.Config
	log      logger.Logger
}

func New(userRepo repositories.UserRepository, config config.Config) AuthControllerInterface {
	return &AuthController{
		userRepo: userRepo,
		config:   config,
		log:      logger.New("authController"),
	}
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// errInvalidCredentials is shared by every login failure mode so the
// response never reveals whether the account exists.
var errInvalidCredentials = apperrors.Unauthorized("invalid username or password")

// Login accepts username or email, verifies the password, and issues a JWT.
func (c *AuthController) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := c.log.Function("Login")

	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, apperrors.Validation("login and password are required")
	}

	user, err := c.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, log.Err("failed to look up user", err)
	}

	if !user.IsActive || !user.CheckPassword(req.Password) {
		return nil, errInvalidCredentials
	}

	expiry := time.Duration(c.config.JWTExpiryHours) * time.Hour
	token, err := generateToken(user, c.config.JWTSecret, expiry)
	if err != nil {
		return nil, log.Err("failed to sign token", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := c.userRepo.Update(ctx, user); err != nil {
		log.Er("failed to record last login", err, "userID", user.ID)
	}

	return &LoginResult{Token: token, User: user.ToProfile()}, nil
}
