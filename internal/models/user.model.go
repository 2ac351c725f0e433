package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	BaseUUIDModel
	Username     string     `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text;not null"             json:"-"`
	Role         Role       `gorm:"type:text;default:user"         json:"role"`
	IsActive     bool       `gorm:"type:bool"                      json:"isActive"`
	LastLoginAt  *time.Time `gorm:"type:timestamp"                 json:"lastLoginAt,omitempty"`

	// AssignedVenue scopes a non-admin user's visibility. Meaningless for
	// admins, who see everything.
	AssignedVenueID *uuid.UUID `gorm:"type:uuid"             json:"assignedVenueId,omitempty"`
	AssignedVenue   *Venue     `gorm:"foreignKey:AssignedVenueID" json:"assignedVenue,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// UserProfile represents public user information; the password hash never
// leaves the model.
type UserProfile struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"isActive"`
	AssignedVenue *Venue     `json:"assignedVenue,omitempty"`
}

// ToProfile converts a User to a UserProfile (public information only)
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:            u.ID.String(),
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		IsActive:      u.IsActive,
		AssignedVenue: u.AssignedVenue,
	}
}
