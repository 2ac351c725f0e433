package venueController

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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VenueControllerInterface interface {
	List(ctx context.Context, actor *User) ([]Venue, error)
	Create(ctx context.Context, actor *User, req VenueRequest) (*Venue, error)
	Update(ctx context.Context, actor *User, id uuid.UUID, req VenueRequest) (*Venue, error)
	Delete(ctx context.Context, actor *User, id uuid.UUID) (*DeleteVenueResult, error)
}

type VenueController struct {
	venueRepo  repositories.VenueRepository
	gensetRepo repositories.GensetRepository
	logRepo    repositories.LogRepository
	log        logger.Logger
}

func New(
	venueRepo repositories.VenueRepository,
	gensetRepo repositories.GensetRepository,
	logRepo repositories.LogRepository,
) VenueControllerInterface {
	return &VenueController{
		venueRepo:  venueRepo,
		gensetRepo: gensetRepo,
		logRepo:    logRepo,
		log:        logger.New("venueController"),
	}
}

type VenueRequest struct {
	Name          string `json:"name"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
}

type DeleteVenueResult struct {
	UntaggedGenerators int `json:"untaggedGenerators"`
}

func (c *VenueController) List(ctx context.Context, actor *User) ([]Venue, error) {
	log := c.log.Function("List")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	venues, err := c.venueRepo.ListActive(ctx)
	if err != nil {
		return nil, log.Err("failed to list venues", err)
	}

	return venues, nil
}

func (c *VenueController) Create(
	ctx context.Context,
	actor *User,
	req VenueRequest,
) (*Venue, error) {
	log := c.log.Function("Create")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, apperrors.Validation("name is required")
	}

	venue := &Venue{
		Name:          req.Name,
		Location:      req.Location,
		Description:   req.Description,
		ContactPerson: req.ContactPerson,
		IsActive:      true,
		CreatedByID:   actor.ID,
	}

	if err := c.venueRepo.Create(ctx, venue); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("venue name already exists")
		}
		return nil, log.Err("failed to create venue", err)
	}

	return venue, nil
}

func (c *VenueController) Update(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	req VenueRequest,
) (*Venue, error) {
	log := c.log.Function("Update")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, apperrors.Validation("name is required")
	}

	venue, err := c.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	venue.Name = req.Name
	venue.Location = req.Location
	venue.Description = req.Description
	venue.ContactPerson = req.ContactPerson

	if err := c.venueRepo.Update(ctx, venue); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("venue name already exists")
		}
		return nil, log.Err("failed to update venue", err)
	}

	return venue, nil
}

// Delete deactivates a venue and force-detaches every generator attached to
// it. Each generator is handled as its own atomic unit (detach + audit
// entry); a failure on one does not stop the cascade, so a crash can leave
// the cascade partially applied but never a generator half-done. The
// summary entry records how many generators were untagged.
func (c *VenueController) Delete(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
) (*DeleteVenueResult, error) {
	log := c.log.Function("Delete")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	venue, err := c.getActive(ctx, id)
	if err != nil {
		return nil, err
	}

	attached, err := c.gensetRepo.ListActive(ctx, &venue.ID)
	if err != nil {
		return nil, log.Err("failed to list attached gensets", err)
	}

	now := time.Now()
	untagged := make([]uuid.UUID, 0, len(attached))
	for i := range attached {
		genset := &attached[i]

		entry := &Log{
			GensetID:       &genset.ID,
			VenueID:        &venue.ID,
			UserID:         actor.ID,
			Action:         ActionVenueUntag,
			PreviousStatus: &genset.Status,
			NewStatus:      &genset.Status,
			Timestamp:      now,
			Notes:          fmt.Sprintf("Generator untagged due to venue deletion: %s", venue.Name),
		}
		if err := c.gensetRepo.Detach(ctx, genset, DetachVenueDeleted, now, entry); err != nil {
			log.Er("failed to untag genset during venue deletion", err,
				"gensetID", genset.ID, "venueID", venue.ID)
			continue
		}

		untagged = append(untagged, genset.ID)
	}

	venue.IsActive = false
	if err := c.venueRepo.Update(ctx, venue); err != nil {
		return nil, log.Err("failed to soft delete venue", err)
	}

	details := datatypes.NewJSONType(LogDetails{
		UntaggedCount: len(untagged),
		GensetIDs:     untagged,
	})
	c.recordAudit(ctx, &Log{
		VenueID:   &venue.ID,
		UserID:    actor.ID,
		Action:    ActionVenueDeleted,
		Timestamp: now,
		Notes:     fmt.Sprintf("Venue deleted: %s. %d generators untagged.", venue.Name, len(untagged)),
		Details:   &details,
	})

	return &DeleteVenueResult{UntaggedGenerators: len(untagged)}, nil
}

func (c *VenueController) recordAudit(ctx context.Context, entry *Log) {
	if err := c.logRepo.Create(ctx, entry); err != nil {
		c.log.Function("recordAudit").
			Er("audit log write failed after state change", err,
				"action", entry.Action, "venueID", entry.VenueID)
	}
}

func (c *VenueController) getActive(ctx context.Context, id uuid.UUID) (*Venue, error) {
	venue, err := c.venueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("venue")
		}
		return nil, apperrors.Internal(err)
	}

	if !venue.IsActive {
		return nil, apperrors.NotFound("venue")
	}

	return venue, nil
}
