package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PowerStatus string

const (
	StatusOn  PowerStatus = "ON"
	StatusOff PowerStatus = "OFF"
)

type CapacityUnit string

const (
	CapacityKW CapacityUnit = "KW"
	CapacityMW CapacityUnit = "MW"
	CapacityHP CapacityUnit = "HP"
)

type FuelType string

const (
	FuelDiesel     FuelType = "Diesel"
	FuelNaturalGas FuelType = "Natural Gas"
	FuelGasoline   FuelType = "Gasoline"
	FuelPropane    FuelType = "Propane"
)

// Genset is a backup power unit. Its venue reference is exclusive and
// nullable; "no venue" is a valid state but blocks energizing.
type Genset struct {
	BaseUUIDModel
	Name         string          `gorm:"type:text;not null"          json:"name"`
	Model        string          `gorm:"type:text"                   json:"model"`
	SerialNumber *string         `gorm:"type:text;uniqueIndex"       json:"serialNumber,omitempty"`
	Capacity     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"capacity"`
	CapacityUnit CapacityUnit    `gorm:"type:text;default:KW"        json:"capacityUnit"`
	FuelType     *FuelType       `gorm:"type:text"                   json:"fuelType,omitempty"`
	Status       PowerStatus     `gorm:"type:text;default:OFF"       json:"status"`
	IsActive     bool            `gorm:"type:bool"                   json:"isActive"`

	VenueID *uuid.UUID `gorm:"type:uuid"          json:"venueId,omitempty"`
	Venue   *Venue     `gorm:"foreignKey:VenueID" json:"venue,omitempty"`

	LastStatusChange      time.Time  `gorm:"autoCreateTime"                   json:"lastStatusChange"`
	LastStatusChangedByID *uuid.UUID `gorm:"type:uuid"                        json:"lastStatusChangedById,omitempty"`
	LastStatusChangedBy   *User      `gorm:"foreignKey:LastStatusChangedByID" json:"lastStatusChangedBy,omitempty"`

	CreatedByID uuid.UUID `gorm:"type:uuid"              json:"createdById"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`

	// VenueHistory is append-only; at most one entry is open (DetachedAt
	// unset) at any time.
	VenueHistory []VenueAttachment `gorm:"foreignKey:GensetID" json:"venueHistory,omitempty"`
}

// OpenAttachment returns the current open venue interval, or nil when the
// generator is unassigned.
func (g *Genset) OpenAttachment() *VenueAttachment {
	for i := range g.VenueHistory {
		if g.VenueHistory[i].DetachedAt == nil {
			return &g.VenueHistory[i]
		}
	}
	return nil
}
