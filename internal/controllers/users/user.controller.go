package userController

import (
	"context"
	"errors"
	"strings"

	"gentrack/internal/apperrors"
	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"
	"gentrack/internal/policy"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserControllerInterface interface {
	List(ctx context.Context, actor *User) ([]User, error)
	Create(ctx context.Context, actor *User, req CreateUserRequest) (*User, error)
	Update(ctx context.Context, actor *User, id uuid.UUID, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, actor *User, id uuid.UUID) error
	ResetPassword(ctx context.Context, actor *User, id uuid.UUID, password string) error
	ChangePassword(ctx context.Context, actor *User, current, next string) error
}

type UserController struct {
	userRepo  repositories.UserRepository
	venueRepo repositories.VenueRepository
	log       logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	venueRepo repositories.VenueRepository,
) UserControllerInterface {
	return &UserController{
		userRepo:  userRepo,
		venueRepo: venueRepo,
		log:       logger.New("userController"),
	}
}

type CreateUserRequest struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	Role            Role       `json:"role"`
	AssignedVenueID *uuid.UUID `json:"assignedVenueId,omitempty"`
}

type UpdateUserRequest struct {
	Username        *string    `json:"username,omitempty"`
	Email           *string    `json:"email,omitempty"`
	Role            *Role      `json:"role,omitempty"`
	AssignedVenueID *uuid.UUID `json:"assignedVenueId,omitempty"`
	ClearVenue      bool       `json:"clearVenue,omitempty"`
}

func (c *UserController) List(ctx context.Context, actor *User) ([]User, error) {
	log := c.log.Function("List")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	users, err := c.userRepo.ListActive(ctx)
	if err != nil {
		return nil, log.Err("failed to list users", err)
	}

	return users, nil
}

func (c *UserController) Create(
	ctx context.Context,
	actor *User,
	req CreateUserRequest,
) (*User, error) {
	log := c.log.Function("Create")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, apperrors.Validation("username, email, and password are required")
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if role != RoleAdmin && role != RoleUser {
		return nil, apperrors.Validation("invalid role")
	}

	if err := c.validateVenueAssignment(ctx, req.AssignedVenueID); err != nil {
		return nil, err
	}

	user := &User{
		Username:        username,
		Email:           email,
		Role:            role,
		IsActive:        true,
		AssignedVenueID: req.AssignedVenueID,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, log.Err("failed to hash password", err)
	}

	if err := c.userRepo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("username or email already exists")
		}
		return nil, log.Err("failed to create user", err)
	}

	return c.userRepo.GetByID(ctx, user.ID)
}

func (c *UserController) Update(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	req UpdateUserRequest,
) (*User, error) {
	log := c.log.Function("Update")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := c.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apperrors.Validation("username cannot be empty")
		}
		user.Username = username
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" {
			return nil, apperrors.Validation("email cannot be empty")
		}
		user.Email = email
	}
	if req.Role != nil {
		if *req.Role != RoleAdmin && *req.Role != RoleUser {
			return nil, apperrors.Validation("invalid role")
		}
		// Demoting the last admin would lock everyone out of user management.
		if user.Role == RoleAdmin && *req.Role != RoleAdmin && actor.ID == user.ID {
			return nil, apperrors.Validation("you cannot demote your own account")
		}
		user.Role = *req.Role
	}

	if req.ClearVenue {
		user.AssignedVenueID = nil
		user.AssignedVenue = nil
	} else if req.AssignedVenueID != nil {
		if err := c.validateVenueAssignment(ctx, req.AssignedVenueID); err != nil {
			return nil, err
		}
		user.AssignedVenueID = req.AssignedVenueID
	}

	if err := c.userRepo.Update(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("username or email already exists")
		}
		return nil, log.Err("failed to update user", err)
	}

	return c.userRepo.GetByID(ctx, user.ID)
}

// Delete deactivates the account. Audit entries keep their user reference,
// so accounts are never hard deleted.
func (c *UserController) Delete(ctx context.Context, actor *User, id uuid.UUID) error {
	log := c.log.Function("Delete")

	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	if actor.ID == id {
		return apperrors.Validation("you cannot delete your own account")
	}

	user, err := c.getActive(ctx, id)
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := c.userRepo.Update(ctx, user); err != nil {
		return log.Err("failed to deactivate user", err)
	}

	return nil
}

func (c *UserController) ResetPassword(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	password string,
) error {
	log := c.log.Function("ResetPassword")

	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	if password == "" {
		return apperrors.Validation("password is required")
	}

	user, err := c.getActive(ctx, id)
	if err != nil {
		return err
	}

	if err := user.SetPassword(password); err != nil {
		return log.Err("failed to hash password", err)
	}

	if err := c.userRepo.Update(ctx, user); err != nil {
		return log.Err("failed to update password", err)
	}

	return nil
}

// ChangePassword lets a user rotate their own password. Unlike
// ResetPassword it requires no admin role, but the current password must
// verify first.
func (c *UserController) ChangePassword(
	ctx context.Context,
	actor *User,
	current, next string,
) error {
	log := c.log.Function("ChangePassword")

	if actor == nil {
		return apperrors.Forbidden("authentication required")
	}

	if current == "" || next == "" {
		return apperrors.Validation("current and new password are required")
	}

	user, err := c.getActive(ctx, actor.ID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(current) {
		return apperrors.Unauthorized("current password is incorrect")
	}

	if err := user.SetPassword(next); err != nil {
		return log.Err("failed to hash password", err)
	}

	if err := c.userRepo.Update(ctx, user); err != nil {
		return log.Err("failed to update password", err)
	}

	return nil
}

func (c *UserController) getActive(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := c.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (c *UserController) validateVenueAssignment(
	ctx context.Context,
	venueID *uuid.UUID,
) error {
	if venueID == nil {
		return nil
	}

	venue, err := c.venueRepo.GetByID(ctx, *venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("venue")
		}
		return apperrors.Internal(err)
	}
	if !venue.IsActive {
		return apperrors.Validation("venue has been deactivated")
	}

	return nil
}
