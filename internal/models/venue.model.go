package models

import (
	"github.com/google/uuid"
)

// Venue is a physical site generators are assigned to. A venue gates
// whether its generators may be energized: deactivated venues force-detach
// everything attached to them.
type Venue struct {
	BaseUUIDModel
	Name          string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Location      string    `gorm:"type:text"                      json:"location"`
	Description   string    `gorm:"type:text"                      json:"description"`
	ContactPerson string    `gorm:"type:text"                      json:"contactPerson"`
	IsActive      bool      `gorm:"type:bool"                      json:"isActive"`
	CreatedByID   uuid.UUID `gorm:"type:uuid"                      json:"createdById"`
	CreatedBy     *User     `gorm:"foreignKey:CreatedByID"         json:"createdBy,omitempty"`
}
