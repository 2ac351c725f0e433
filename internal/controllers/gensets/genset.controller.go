package gensetController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gentrack/internal/apperrors"
	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"
	"gentrack/internal/policy"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GensetControllerInterface interface {
	List(ctx context.Context, actor *User) ([]Genset, error)
	Get(ctx context.Context, actor *User, id uuid.UUID) (*Genset, error)
	Create(ctx context.Context, actor *User, req CreateGensetRequest) (*Genset, error)
	Update(ctx context.Context, actor *User, id uuid.UUID, req UpdateGensetRequest) (*Genset, error)
	Delete(ctx context.Context, actor *User, id uuid.UUID) error
	Toggle(ctx context.Context, actor *User, id uuid.UUID) (*ToggleResult, error)
}

type GensetController struct {
	gensetRepo repositories.GensetRepository
	venueRepo  repositories.VenueRepository
	logRepo    repositories.LogRepository
	log        logger.Logger
}

func New(
	gensetRepo repositories.GensetRepository,
	venueRepo repositories.VenueRepository,
	logRepo repositories.LogRepository,
) GensetControllerInterface {
	return &GensetController{
		gensetRepo: gensetRepo,
		venueRepo:  venueRepo,
		logRepo:    logRepo,
		log:        logger.New("gensetController"),
	}
}

type CreateGensetRequest struct {
	Name         string          `json:"name"`
	Model        string          `json:"model,omitempty"`
	SerialNumber *string         `json:"serialNumber,omitempty"`
	Capacity     decimal.Decimal `json:"capacity"`
	CapacityUnit CapacityUnit    `json:"capacityUnit,omitempty"`
	FuelType     *FuelType       `json:"fuelType,omitempty"`
	VenueID      *uuid.UUID      `json:"venueId,omitempty"`
}

type UpdateGensetRequest struct {
	Name         string          `json:"name"`
	Model        string          `json:"model,omitempty"`
	SerialNumber *string         `json:"serialNumber,omitempty"`
	Capacity     decimal.Decimal `json:"capacity"`
	CapacityUnit CapacityUnit    `json:"capacityUnit,omitempty"`
	FuelType     *FuelType       `json:"fuelType,omitempty"`
	// VenueID reassigns the generator when set; nil leaves the current
	// venue untouched.
	VenueID *uuid.UUID `json:"venueId,omitempty"`
}

type ToggleResult struct {
	Genset         *Genset     `json:"genset"`
	PreviousStatus PowerStatus `json:"previousStatus"`
	NewStatus      PowerStatus `json:"newStatus"`
}

// List returns the active generators visible to the actor: all of them for
// admins, the assigned venue's for regular users.
func (c *GensetController) List(ctx context.Context, actor *User) ([]Genset, error) {
	log := c.log.Function("List")

	scope, err := policy.VenueScope(actor)
	if err != nil {
		return nil, err
	}

	gensets, err := c.gensetRepo.ListActive(ctx, scope)
	if err != nil {
		return nil, log.Err("failed to list gensets", err)
	}

	return gensets, nil
}

func (c *GensetController) Get(ctx context.Context, actor *User, id uuid.UUID) (*Genset, error) {
	genset, err := c.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanViewGenset(actor, genset) {
		return nil, apperrors.Forbidden("generator not in your assigned venue")
	}

	return genset, nil
}

// Create registers a generator, always starting OFF. When a venue is given
// it must exist and be active; the venue history is seeded with the initial
// attachment.
func (c *GensetController) Create(
	ctx context.Context,
	actor *User,
	req CreateGensetRequest,
) (*Genset, error) {
	log := c.log.Function("Create")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if err := validateGensetFields(req.Name, req.Capacity, req.CapacityUnit, req.FuelType); err != nil {
		return nil, err
	}

	var venue *Venue
	if req.VenueID != nil {
		var err error
		venue, err = c.getActiveVenue(ctx, *req.VenueID)
		if err != nil {
			return nil, err
		}
	}

	unit := req.CapacityUnit
	if unit == "" {
		unit = CapacityKW
	}

	genset := &Genset{
		Name:             req.Name,
		Model:            req.Model,
		SerialNumber:     req.SerialNumber,
		Capacity:         req.Capacity,
		CapacityUnit:     unit,
		FuelType:         req.FuelType,
		Status:           StatusOff,
		IsActive:         true,
		LastStatusChange: time.Now(),
		CreatedByID:      actor.ID,
	}

	if err := c.gensetRepo.Create(ctx, genset); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("serial number already exists")
		}
		return nil, log.Err("failed to create genset", err)
	}

	if venue != nil {
		if err := c.gensetRepo.Attach(ctx, genset, venue, DetachOther, time.Now()); err != nil {
			return nil, log.Err("failed to attach genset to venue", err)
		}
	}

	c.recordAudit(ctx, &Log{
		GensetID:  &genset.ID,
		VenueID:   genset.VenueID,
		UserID:    actor.ID,
		Action:    ActionCreated,
		NewStatus: statusPtr(StatusOff),
		Timestamp: time.Now(),
		Notes:     "Generator created",
	})

	return c.gensetRepo.GetByID(ctx, genset.ID)
}

// Update edits generator fields; a changed venue closes the open history
// interval as a manual reassignment and opens a new one.
func (c *GensetController) Update(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	req UpdateGensetRequest,
) (*Genset, error) {
	log := c.log.Function("Update")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if err := validateGensetFields(req.Name, req.Capacity, req.CapacityUnit, req.FuelType); err != nil {
		return nil, err
	}

	genset, err := c.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	genset.Name = req.Name
	genset.Model = req.Model
	genset.SerialNumber = req.SerialNumber
	genset.Capacity = req.Capacity
	if req.CapacityUnit != "" {
		genset.CapacityUnit = req.CapacityUnit
	}
	genset.FuelType = req.FuelType

	if err := c.gensetRepo.Update(ctx, genset); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("serial number already exists")
		}
		return nil, log.Err("failed to update genset", err)
	}

	if req.VenueID != nil {
		venue, err := c.getActiveVenue(ctx, *req.VenueID)
		if err != nil {
			return nil, err
		}

		if err := c.gensetRepo.Attach(ctx, genset, venue, DetachManualReassignment, time.Now()); err != nil {
			return nil, log.Err("failed to reassign genset venue", err)
		}
	}

	c.recordAudit(ctx, &Log{
		GensetID:  &genset.ID,
		VenueID:   genset.VenueID,
		UserID:    actor.ID,
		Action:    ActionUpdated,
		NewStatus: statusPtr(genset.Status),
		Timestamp: time.Now(),
		Notes:     "Generator updated",
	})

	return c.gensetRepo.GetByID(ctx, genset.ID)
}

// Delete marks the generator inactive. The record and its history remain
// for reporting; it simply stops appearing in listings.
func (c *GensetController) Delete(ctx context.Context, actor *User, id uuid.UUID) error {
	log := c.log.Function("Delete")

	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	genset, err := c.getActive(ctx, id)
	if err != nil {
		return err
	}

	genset.IsActive = false
	if err := c.gensetRepo.Update(ctx, genset); err != nil {
		return log.Err("failed to soft delete genset", err)
	}

	c.recordAudit(ctx, &Log{
		GensetID:       &genset.ID,
		VenueID:        genset.VenueID,
		UserID:         actor.ID,
		Action:         ActionDeleted,
		PreviousStatus: statusPtr(genset.Status),
		Timestamp:      time.Now(),
		Notes:          "Generator deleted",
	})

	return nil
}

// Toggle flips the power state. Turning OFF is always permitted; turning ON
// requires an active venue. The status write commits before the audit entry
// is attempted, and a failed audit write never rolls the toggle back.
func (c *GensetController) Toggle(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
) (*ToggleResult, error) {
	log := c.log.Function("Toggle")

	genset, err := c.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanMutateGenset(actor, genset) {
		return nil, apperrors.Forbidden("Access denied. Generator not in your assigned venue.")
	}

	previous := genset.Status
	target := StatusOn
	if previous == StatusOn {
		target = StatusOff
	}

	if target == StatusOn {
		if genset.VenueID == nil || genset.Venue == nil {
			return nil, apperrors.NoVenueAssigned()
		}
		if !genset.Venue.IsActive {
			return nil, apperrors.VenueInactive(genset.Venue.Name)
		}
	}

	now := time.Now()
	if err := c.gensetRepo.SetStatus(ctx, genset.ID, previous, target, actor.ID, now); err != nil {
		if errors.Is(err, repositories.ErrStatusRaced) {
			return nil, apperrors.Conflict("generator was toggled by someone else, refresh and retry")
		}
		return nil, log.Err("failed to set genset status", err)
	}

	genset.Status = target
	genset.LastStatusChange = now
	genset.LastStatusChangedByID = &actor.ID

	action := ActionTurnOn
	verb := "turned on"
	if target == StatusOff {
		action = ActionTurnOff
		verb = "turned off"
	}

	c.recordAudit(ctx, &Log{
		GensetID:       &genset.ID,
		VenueID:        genset.VenueID,
		UserID:         actor.ID,
		Action:         action,
		PreviousStatus: statusPtr(previous),
		NewStatus:      statusPtr(target),
		Timestamp:      now,
		Notes:          fmt.Sprintf("Generator %s by %s", verb, actor.Username),
	})

	return &ToggleResult{
		Genset:         genset,
		PreviousStatus: previous,
		NewStatus:      target,
	}, nil
}

// recordAudit writes a log entry best-effort: the state change is already
// durable, so an audit failure is reported but never propagated.
func (c *GensetController) recordAudit(ctx context.Context, entry *Log) {
	if err := c.logRepo.Create(ctx, entry); err != nil {
		c.log.Function("recordAudit").
			Er("audit log write failed after state change", err,
				"action", entry.Action, "gensetID", entry.GensetID)
	}
}

func (c *GensetController) getActive(ctx context.Context, id uuid.UUID) (*Genset, error) {
	genset, err := c.gensetRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("generator")
		}
		return nil, apperrors.Internal(err)
	}

	if !genset.IsActive {
		return nil, apperrors.NotFound("generator")
	}

	return genset, nil
}

func (c *GensetController) getActiveVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	venue, err := c.venueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("venue")
		}
		return nil, apperrors.Internal(err)
	}

	if !venue.IsActive {
		return nil, apperrors.Validation("venue has been deactivated")
	}

	return venue, nil
}

func validateGensetFields(
	name string,
	capacity decimal.Decimal,
	unit CapacityUnit,
	fuel *FuelType,
) error {
	if name == "" {
		return apperrors.Validation("name is required")
	}

	if !capacity.IsPositive() {
		return apperrors.Validation("capacity must be a positive number")
	}

	switch unit {
	case "", CapacityKW, CapacityMW, CapacityHP:
	default:
		return apperrors.Validation("invalid capacity unit")
	}

	if fuel != nil {
		switch *fuel {
		case FuelDiesel, FuelNaturalGas, FuelGasoline, FuelPropane:
		default:
			return apperrors.Validation("invalid fuel type")
		}
	}

	return nil
}

func statusPtr(s PowerStatus) *PowerStatus {
	return &s
}
