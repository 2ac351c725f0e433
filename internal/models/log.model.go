package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LogAction string

const (
	ActionCreated      LogAction = "CREATED"
	ActionUpdated      LogAction = "UPDATED"
	ActionDeleted      LogAction = "DELETED"
	ActionTurnOn       LogAction = "TURN_ON"
	ActionTurnOff      LogAction = "TURN_OFF"
	ActionVenueUntag   LogAction = "VENUE_UNTAGGED"
	ActionVenueDeleted LogAction = "VENUE_DELETED"
	ActionManual       LogAction = "MANUAL"
)

// AllLogActions lists every action value, for filter dropdowns and
// validation.
var AllLogActions = []LogAction{
	ActionCreated,
	ActionUpdated,
	ActionDeleted,
	ActionTurnOn,
	ActionTurnOff,
	ActionVenueUntag,
	ActionVenueDeleted,
	ActionManual,
}

const MaxLogNotesLength = 500

// LogDetails carries structured context for aggregate entries, currently
// the venue-deletion summary with the generators it untagged.
type LogDetails struct {
	UntaggedCount int         `json:"untaggedCount,omitempty"`
	GensetIDs     []uuid.UUID `json:"gensetIds,omitempty"`
}

// Log is one audit entry for a state-affecting action. GensetID is nil only
// on venue-deletion summary entries; VenueID is nil only when the generator
// had no venue at the time.
type Log struct {
	BaseUUIDModel
	GensetID *uuid.UUID `gorm:"type:uuid;index"          json:"gensetId,omitempty"`
	Genset   *Genset    `gorm:"foreignKey:GensetID"      json:"genset,omitempty"`
	VenueID  *uuid.UUID `gorm:"type:uuid;index"          json:"venueId,omitempty"`
	Venue    *Venue     `gorm:"foreignKey:VenueID"       json:"venue,omitempty"`
	UserID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	User     *User      `gorm:"foreignKey:UserID"        json:"user,omitempty"`

	Action         LogAction    `gorm:"type:text;not null" json:"action"`
	PreviousStatus *PowerStatus `gorm:"type:text"          json:"previousStatus,omitempty"`
	NewStatus      *PowerStatus `gorm:"type:text"          json:"newStatus,omitempty"`

	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Notes     string    `gorm:"type:text"      json:"notes"`

	Details *datatypes.JSONType[LogDetails] `json:"details,omitempty"`
}

// ValidLogAction reports whether action is one of the known values.
func ValidLogAction(action LogAction) bool {
	for _, a := range AllLogActions {
		if a == action {
			return true
		}
	}
	return false
}
