package repositories

import (
	"context"
	"errors"
	"time"

	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStatusRaced is returned when a compare-and-set status update finds the
// generator no longer in the expected state.
var ErrStatusRaced = errors.New("generator status changed concurrently")

type GensetRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Genset, error)
	ListActive(ctx context.Context, venueID *uuid.UUID) ([]Genset, error)
	Create(ctx context.Context, genset *Genset) error
	Update(ctx context.Context, genset *Genset) error
	SetStatus(ctx context.Context, id uuid.UUID, from, to PowerStatus, byUserID uuid.UUID, at time.Time) error
	Attach(ctx context.Context, genset *Genset, venue *Venue, reason DetachReason, at time.Time) error
	Detach(ctx context.Context, genset *Genset, reason DetachReason, at time.Time, entry *Log) error
}

type gensetRepository struct {
	db  database.DB
	log logger.Logger
}

func NewGensetRepository(db database.DB) GensetRepository {
	return &gensetRepository{
		db:  db,
		log: logger.New("gensetRepository"),
	}
}

func (r *gensetRepository) GetByID(ctx context.Context, id uuid.UUID) (*Genset, error) {
	log := r.log.Function("GetByID")

	var genset Genset
	if err := r.db.SQLWithContext(ctx).
		Preload("Venue").
		Preload("LastStatusChangedBy").
		Preload("VenueHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("venue_attachments.attached_at ASC")
		}).
		First(&genset, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get genset by id", err, "id", id)
	}

	return &genset, nil
}

// ListActive returns active generators, optionally restricted to one venue.
func (r *gensetRepository) ListActive(ctx context.Context, venueID *uuid.UUID) ([]Genset, error) {
	log := r.log.Function("ListActive")

	query := r.db.SQLWithContext(ctx).
		Preload("Venue").
		Preload("LastStatusChangedBy").
		Where("is_active = ?", true)

	if venueID != nil {
		query = query.Where("venue_id = ?", *venueID)
	}

	var gensets []Genset
	if err := query.Order("name ASC").Find(&gensets).Error; err != nil {
		return nil, log.Err("failed to list active gensets", err)
	}

	return gensets, nil
}

func (r *gensetRepository) Create(ctx context.Context, genset *Genset) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(genset).Error; err != nil {
		return log.Err("failed to create genset", err, "name", genset.Name)
	}

	return nil
}

func (r *gensetRepository) Update(ctx context.Context, genset *Genset) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(genset).Error; err != nil {
		return log.Err("failed to update genset", err, "gensetID", genset.ID)
	}

	return nil
}

// SetStatus flips the power state with a compare-and-set on the current
// status column, so two racing toggles cannot both win.
func (r *gensetRepository) SetStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to PowerStatus,
	byUserID uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("SetStatus")

	result := r.db.SQLWithContext(ctx).
		Model(&Genset{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":                    to,
			"last_status_change":        at,
			"last_status_changed_by_id": byUserID,
		})
	if result.Error != nil {
		return log.Err("failed to update genset status", result.Error, "gensetID", id)
	}

	if result.RowsAffected == 0 {
		return log.Err("genset status compare-and-set lost", ErrStatusRaced,
			"gensetID", id, "expected", from, "target", to)
	}

	return nil
}

// Attach assigns the generator to venue, closing any open history interval
// first. Attaching to the current venue is a no-op.
func (r *gensetRepository) Attach(
	ctx context.Context,
	genset *Genset,
	venue *Venue,
	reason DetachReason,
	at time.Time,
) error {
	log := r.log.Function("Attach")

	if genset.VenueID != nil && *genset.VenueID == venue.ID {
		return nil
	}

	err := r.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := closeOpenAttachment(tx, genset.ID, reason, at); err != nil {
			return err
		}

		next := VenueAttachment{
			GensetID:   genset.ID,
			VenueID:    venue.ID,
			VenueName:  venue.Name,
			AttachedAt: at,
		}
		if err := tx.Create(&next).Error; err != nil {
			return err
		}

		return tx.Model(&Genset{}).
			Where("id = ?", genset.ID).
			Update("venue_id", venue.ID).Error
	})
	if err != nil {
		return log.Err("failed to attach genset to venue", err,
			"gensetID", genset.ID, "venueID", venue.ID)
	}

	genset.VenueID = &venue.ID
	genset.Venue = venue
	return nil
}

// Detach clears the generator's venue, closes its open history interval
// with the given reason, and writes the audit entry, all in one
// transaction. A detached generator must never exist without a record of
// it, so the entry rolls back together with the detach on failure.
// Detaching an unassigned generator is a no-op.
func (r *gensetRepository) Detach(
	ctx context.Context,
	genset *Genset,
	reason DetachReason,
	at time.Time,
	entry *Log,
) error {
	log := r.log.Function("Detach")

	if genset.VenueID == nil {
		return nil
	}

	err := r.db.SQLWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := closeOpenAttachment(tx, genset.ID, reason, at); err != nil {
			return err
		}

		if err := tx.Model(&Genset{}).
			Where("id = ?", genset.ID).
			Update("venue_id", nil).Error; err != nil {
			return err
		}

		return tx.Create(entry).Error
	})
	if err != nil {
		return log.Err("failed to detach genset with audit entry", err, "gensetID", genset.ID)
	}

	genset.VenueID = nil
	genset.Venue = nil
	return nil
}

func closeOpenAttachment(tx *gorm.DB, gensetID uuid.UUID, reason DetachReason, at time.Time) error {
	return tx.Model(&VenueAttachment{}).
		Where("genset_id = ? AND detached_at IS NULL", gensetID).
		Updates(map[string]any{
			"detached_at":     at,
			"detached_reason": reason,
		}).Error
}
