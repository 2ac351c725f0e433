package models

import (
	"time"

	"github.com/google/uuid"
)

type DetachReason string

const (
	DetachVenueDeleted       DetachReason = "VENUE_DELETED"
	DetachManualReassignment DetachReason = "MANUAL_REASSIGNMENT"
	DetachOther              DetachReason = "OTHER"
)

// VenueAttachment records one interval during which a generator was
// assigned to a venue. VenueName is a snapshot taken at attach time so the
// history keeps its meaning after a venue rename or delete.
type VenueAttachment struct {
	BaseUUIDModel
	GensetID uuid.UUID `gorm:"type:uuid;index;not null" json:"gensetId"`
	VenueID  uuid.UUID `gorm:"type:uuid;not null"       json:"venueId"`
	VenueName string   `gorm:"type:text"                json:"venueName"`

	AttachedAt     time.Time     `gorm:"not null"  json:"attachedAt"`
	DetachedAt     *time.Time    `               json:"detachedAt,omitempty"`
	DetachedReason *DetachReason `gorm:"type:text" json:"detachedReason,omitempty"`
}

// Open reports whether this interval is still current.
func (a *VenueAttachment) Open() bool {
	return a.DetachedAt == nil
}
