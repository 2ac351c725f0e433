package repositories

import (
	"context"
	"time"

	"gentrack/internal/database"
	"gentrack/internal/logger"
	. "gentrack/internal/models"

	"github.com/google/uuid"
)

type TrendRow struct {
	Day    string    `gorm:"column:day"`
	Action LogAction `gorm:"column:action"`
	Count  int64     `gorm:"column:count"`
}

type UserActivityRow struct {
	UserID   uuid.UUID `gorm:"column:user_id"   json:"userId"`
	Username string    `gorm:"column:username"  json:"username"`
	Count    int64     `gorm:"column:count"     json:"count"`
}

type StatsRepository interface {
	ToggleTrend(ctx context.Context, venueID *uuid.UUID, since time.Time) ([]TrendRow, error)
	UserActivity(ctx context.Context, since time.Time, limit int) ([]UserActivityRow, error)
}

type statsRepository struct {
	db  database.DB
	log logger.Logger
}

func NewStatsRepository(db database.DB) StatsRepository {
	return &statsRepository{
		db:  db,
		log: logger.New("statsRepository"),
	}
}

// ToggleTrend counts TURN_ON/TURN_OFF entries per calendar day. date() is
// understood by both postgres and sqlite.
func (r *statsRepository) ToggleTrend(
	ctx context.Context,
	venueID *uuid.UUID,
	since time.Time,
) ([]TrendRow, error) {
	log := r.log.Function("ToggleTrend")

	query := r.db.SQL.WithContext(ctx).
		Model(&Log{}).
		Select("date(timestamp) AS day, action, count(*) AS count").
		Where("action IN ?", []LogAction{ActionTurnOn, ActionTurnOff}).
		Where("timestamp >= ?", since).
		Group("day, action").
		Order("day ASC")

	if venueID != nil {
		query = query.Where("venue_id = ?", *venueID)
	}

	var rows []TrendRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, log.Err("failed to query toggle trend", err)
	}

	return rows, nil
}

func (r *statsRepository) UserActivity(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]UserActivityRow, error) {
	log := r.log.Function("UserActivity")

	var rows []UserActivityRow
	err := r.db.SQL.WithContext(ctx).
		Model(&Log{}).
		Select("logs.user_id AS user_id, users.username AS username, count(*) AS count").
		Joins("JOIN users ON users.id = logs.user_id").
		Where("logs.timestamp >= ?", since).
		Group("logs.user_id, users.username").
		Order("count DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, log.Err("failed to query user activity", err)
	}

	return rows, nil
}
