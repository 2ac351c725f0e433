package logController

import (
	"context"
	"errors"
	"strings"
	"time"

	"gentrack/internal/apperrors"
	"gentrack/internal/logger"
	. "gentrack/internal/models"
	"gentrack/internal/policy"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogControllerInterface interface {
	Query(ctx context.Context, actor *User, req QueryRequest) (*QueryResult, error)
	CreateManual(ctx context.Context, actor *User, req ManualLogRequest) (*Log, error)
	Edit(ctx context.Context, actor *User, id uuid.UUID, req ManualLogRequest) (*Log, error)
	Delete(ctx context.Context, actor *User, id uuid.UUID) error
	FilterOptions(ctx context.Context, actor *User) (*FilterOptionsResult, error)
}

type LogController struct {
	logRepo    repositories.LogRepository
	gensetRepo repositories.GensetRepository
	venueRepo  repositories.VenueRepository
	userRepo   repositories.UserRepository
	log        logger.Logger
}

func New(
	logRepo repositories.LogRepository,
	gensetRepo repositories.GensetRepository,
	venueRepo repositories.VenueRepository,
	userRepo repositories.UserRepository,
) LogControllerInterface {
	return &LogController{
		logRepo:    logRepo,
		gensetRepo: gensetRepo,
		venueRepo:  venueRepo,
		userRepo:   userRepo,
		log:        logger.New("logController"),
	}
}

type QueryRequest struct {
	GensetID *uuid.UUID `json:"gensetId,omitempty"`
	VenueID  *uuid.UUID `json:"venueId,omitempty"`
	UserID   *uuid.UUID `json:"userId,omitempty"`
	Action   *LogAction `json:"action,omitempty"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type QueryResult struct {
	Logs       []Log      `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

type ManualLogRequest struct {
	GensetID        uuid.UUID  `json:"gensetId"`
	Action          LogAction  `json:"action"`
	Notes           string     `json:"notes"`
	CustomTimestamp *time.Time `json:"customTimestamp,omitempty"`
}

type FilterOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type GensetFilterOption struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	VenueName string    `json:"venueName"`
}

type FilterOptionsResult struct {
	Venues  []FilterOption       `json:"venues"`
	Gensets []GensetFilterOption `json:"gensets"`
	Users   []FilterOption       `json:"users"`
	Actions []LogAction          `json:"actions"`
}

// Query returns audit entries newest first. Non-admin callers are pinned to
// their assigned venue regardless of the filter they send.
func (c *LogController) Query(
	ctx context.Context,
	actor *User,
	req QueryRequest,
) (*QueryResult, error) {
	log := c.log.Function("Query")

	filter := repositories.LogFilter{
		GensetID: req.GensetID,
		VenueID:  req.VenueID,
		UserID:   req.UserID,
		Action:   req.Action,
		Page:     req.Page,
		Limit:    req.Limit,
	}

	if err := policy.ScopeLogFilter(actor, &filter); err != nil {
		return nil, err
	}

	entries, total, err := c.logRepo.Query(ctx, filter)
	if err != nil {
		return nil, log.Err("failed to query logs", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}

	return &QueryResult{
		Logs: entries,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// CreateManual records a backdatable admin entry. Status context comes from
// the generator's current state; a manual entry never replays a toggle.
func (c *LogController) CreateManual(
	ctx context.Context,
	actor *User,
	req ManualLogRequest,
) (*Log, error) {
	log := c.log.Function("CreateManual")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	genset, err := c.validateManualRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := &Log{
		GensetID: &genset.ID,
		VenueID:  genset.VenueID,
		UserID:   actor.ID,
		Action:   req.Action,
		Notes:    strings.TrimSpace(req.Notes),
	}

	entry.Timestamp = time.Now()
	if req.CustomTimestamp != nil {
		entry.Timestamp = *req.CustomTimestamp
	}

	applyStatusContext(entry, req.Action, genset.Status)

	if err := c.logRepo.Create(ctx, entry); err != nil {
		return nil, log.Err("failed to create manual log entry", err)
	}

	return c.logRepo.GetByID(ctx, entry.ID)
}

// Edit rewrites a manual-style entry in place. The status context fields
// are recomputed from the generator's current status rather than trusted
// from the client, since editing an entry never replays the toggle itself.
func (c *LogController) Edit(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	req ManualLogRequest,
) (*Log, error) {
	log := c.log.Function("Edit")

	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}

	entry, err := c.logRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("log entry")
		}
		return nil, apperrors.Internal(err)
	}

	genset, err := c.validateManualRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	entry.GensetID = &genset.ID
	entry.VenueID = genset.VenueID
	entry.Action = req.Action
	entry.Notes = strings.TrimSpace(req.Notes)
	if req.CustomTimestamp != nil {
		entry.Timestamp = *req.CustomTimestamp
	}

	entry.PreviousStatus = nil
	entry.NewStatus = nil
	applyStatusContext(entry, req.Action, genset.Status)

	if err := c.logRepo.Update(ctx, entry); err != nil {
		return nil, log.Err("failed to update log entry", err)
	}

	return c.logRepo.GetByID(ctx, entry.ID)
}

// Delete removes an entry permanently. Admin-only; this is the single place
// audit history is not append-only, kept for correcting manual mistakes.
func (c *LogController) Delete(ctx context.Context, actor *User, id uuid.UUID) error {
	log := c.log.Function("Delete")

	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}

	if err := c.logRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("log entry")
		}
		return log.Err("failed to delete log entry", err)
	}

	return nil
}

// FilterOptions lists the venues, generators, users, and actions the caller
// can filter logs by, already narrowed to their scope.
func (c *LogController) FilterOptions(
	ctx context.Context,
	actor *User,
) (*FilterOptionsResult, error) {
	log := c.log.Function("FilterOptions")

	result := &FilterOptionsResult{
		Venues:  []FilterOption{},
		Gensets: []GensetFilterOption{},
		Users:   []FilterOption{},
	}

	scope, err := policy.VenueScope(actor)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		venues, err := c.venueRepo.ListActive(ctx)
		if err != nil {
			return nil, log.Err("failed to list venues", err)
		}
		for _, v := range venues {
			result.Venues = append(result.Venues, FilterOption{ID: v.ID, Name: v.Name})
		}

		users, err := c.userRepo.ListActive(ctx)
		if err != nil {
			return nil, log.Err("failed to list users", err)
		}
		for _, u := range users {
			result.Users = append(result.Users, FilterOption{ID: u.ID, Name: u.Username})
		}
	} else if actor.AssignedVenue != nil && actor.AssignedVenue.IsActive {
		result.Venues = append(result.Venues, FilterOption{
			ID:   actor.AssignedVenue.ID,
			Name: actor.AssignedVenue.Name,
		})
	}

	gensets, err := c.gensetRepo.ListActive(ctx, scope)
	if err != nil {
		return nil, log.Err("failed to list gensets", err)
	}
	for _, g := range gensets {
		option := GensetFilterOption{ID: g.ID, Name: g.Name, VenueName: "No Venue"}
		if g.Venue != nil {
			option.VenueName = g.Venue.Name
		}
		result.Gensets = append(result.Gensets, option)
	}

	actions, err := c.logRepo.DistinctActions(ctx)
	if err != nil {
		return nil, log.Err("failed to list log actions", err)
	}
	result.Actions = actions

	return result, nil
}

func (c *LogController) validateManualRequest(
	ctx context.Context,
	req ManualLogRequest,
) (*Genset, error) {
	if req.GensetID == uuid.Nil {
		return nil, apperrors.Validation("generator is required")
	}
	if !ValidLogAction(req.Action) {
		return nil, apperrors.Validation("invalid log action")
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, apperrors.Validation("notes are required")
	}
	if len(notes) > MaxLogNotesLength {
		return nil, apperrors.Validation("notes exceed the 500 character limit")
	}

	genset, err := c.gensetRepo.GetByID(ctx, req.GensetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("generator")
		}
		return nil, apperrors.Internal(err)
	}

	if genset.VenueID == nil {
		return nil, apperrors.Validation("generator must be assigned to a venue for manual log entries")
	}

	return genset, nil
}

// applyStatusContext fills the status fields from the generator's current
// state: both for TURN_ON/TURN_OFF (the entry documents, it does not act),
// the new status alone for MANUAL, nothing for anything else.
func applyStatusContext(entry *Log, action LogAction, current PowerStatus) {
	switch action {
	case ActionTurnOn, ActionTurnOff:
		status := current
		entry.PreviousStatus = &status
		entry.NewStatus = &status
	case ActionManual:
		status := current
		entry.NewStatus = &status
	}
}
