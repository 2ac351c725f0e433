package repositories

import (
	"context"

	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"

	"github.com/google/uuid"
)

type VenueRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	ListActive(ctx context.Context) ([]Venue, error)
	Create(ctx context.Context, venue *Venue) error
	Update(ctx context.Context, venue *Venue) error
}

type venueRepository struct {
	db  database.DB
	log logger.Logger
}

func NewVenueRepository(db database.DB) VenueRepository {
	return &venueRepository{
		db:  db,
		log: logger.New("venueRepository"),
	}
}

func (r *venueRepository) GetByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	log := r.log.Function("GetByID")

	var venue Venue
	if err := r.db.SQLWithContext(ctx).First(&venue, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get venue by id", err, "id", id)
	}

	return &venue, nil
}

func (r *venueRepository) ListActive(ctx context.Context) ([]Venue, error) {
	log := r.log.Function("ListActive")

	var venues []Venue
	if err := r.db.SQLWithContext(ctx).
		Preload("CreatedBy").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&venues).Error; err != nil {
		return nil, log.Err("failed to list active venues", err)
	}

	return venues, nil
}

func (r *venueRepository) Create(ctx context.Context, venue *Venue) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(venue).Error; err != nil {
		return log.Err("failed to create venue", err, "name", venue.Name)
	}

	return nil
}

func (r *venueRepository) Update(ctx context.Context, venue *Venue) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(venue).Error; err != nil {
		return log.Err("failed to update venue", err, "venueID", venue.ID)
	}

	return nil
}
