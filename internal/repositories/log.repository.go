package repositories

import (
	"context"

	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogFilter narrows a log query. Nil fields are ignored.
type LogFilter struct {
	GensetID *uuid.UUID
	VenueID  *uuid.UUID
	UserID   *uuid.UUID
	Action   *LogAction

	Page  int
	Limit int
}

type LogRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Log, error)
	Create(ctx context.Context, entry *Log) error
	Update(ctx context.Context, entry *Log) error
	Delete(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, filter LogFilter) ([]Log, int64, error)
	DistinctActions(ctx context.Context) ([]LogAction, error)
}

type logRepository struct {
	db  database.DB
	log logger.Logger
}

func NewLogRepository(db database.DB) LogRepository {
	return &logRepository{
		db:  db,
		log: logger.New("logRepository"),
	}
}

func (r *logRepository) GetByID(ctx context.Context, id uuid.UUID) (*Log, error) {
	log := r.log.Function("GetByID")

	var entry Log
	if err := r.db.SQLWithContext(ctx).
		Preload("Genset").
		Preload("Venue").
		Preload("User").
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get log entry by id", err, "id", id)
	}

	return &entry, nil
}

func (r *logRepository) Create(ctx context.Context, entry *Log) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(entry).Error; err != nil {
		return log.Err("failed to create log entry", err, "action", entry.Action)
	}

	return nil
}

func (r *logRepository) Update(ctx context.Context, entry *Log) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(entry).Error; err != nil {
		return log.Err("failed to update log entry", err, "logID", entry.ID)
	}

	return nil
}

// Delete removes the row permanently. Log entries are the one entity with a
// hard delete, reserved for correcting manual mistakes.
func (r *logRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).Unscoped().Delete(&Log{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete log entry", result.Error, "logID", id)
	}
	if result.RowsAffected == 0 {
		return log.Err("log entry not found", gorm.ErrRecordNotFound, "logID", id)
	}

	return nil
}

// Query returns entries newest first with the total count for pagination.
func (r *logRepository) Query(ctx context.Context, filter LogFilter) ([]Log, int64, error) {
	log := r.log.Function("Query")

	query := r.db.SQLWithContext(ctx).Model(&Log{})

	if filter.GensetID != nil {
		query = query.Where("genset_id = ?", *filter.GensetID)
	}
	if filter.VenueID != nil {
		query = query.Where("venue_id = ?", *filter.VenueID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count log entries", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var entries []Log
	if err := query.
		Preload("Genset").
		Preload("Venue").
		Preload("User").
		Order("timestamp DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entries).Error; err != nil {
		return nil, 0, log.Err("failed to query log entries", err)
	}

	return entries, total, nil
}

func (r *logRepository) DistinctActions(ctx context.Context) ([]LogAction, error) {
	log := r.log.Function("DistinctActions")

	var actions []LogAction
	if err := r.db.SQLWithContext(ctx).
		Model(&Log{}).
		Distinct("action").
		Order("action ASC").
		Pluck("action", &actions).Error; err != nil {
		return nil, log.Err("failed to list distinct log actions", err)
	}

	return actions, nil
}
