package statsController

import (
	"context"
	"time"

	"gentrack/internal/logger"
	. "gentrack/internal/models"
	"gentrack/internal/policy"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	trendDays         = 30
	userActivityLimit = 10
)

type StatsControllerInterface interface {
	Dashboard(ctx context.Context, actor *User) (*DashboardStats, error)
}

type StatsController struct {
	gensetRepo repositories.GensetRepository
	statsRepo  repositories.StatsRepository
	log        logger.Logger
}

func New(
	gensetRepo repositories.GensetRepository,
	statsRepo repositories.StatsRepository,
) StatsControllerInterface {
	return &StatsController{
		gensetRepo: gensetRepo,
		statsRepo:  statsRepo,
		log:        logger.New("statsController"),
	}
}

type StatusTotals struct {
	Total int `json:"total"`
	On    int `json:"on"`
	Off   int `json:"off"`
}

type VenueBreakdown struct {
	VenueID    *uuid.UUID      `json:"venueId"`
	VenueName  string          `json:"venueName"`
	Total      int             `json:"total"`
	On         int             `json:"on"`
	CapacityKW decimal.Decimal `json:"capacityKw"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	TurnOns  int64  `json:"turnOns"`
	TurnOffs int64  `json:"turnOffs"`
}

type DashboardStats struct {
	Totals       StatusTotals                  `json:"totals"`
	CapacityKW   decimal.Decimal               `json:"capacityKw"`
	RunningKW    decimal.Decimal               `json:"runningKw"`
	Venues       []VenueBreakdown              `json:"venues"`
	Trend        []TrendPoint                  `json:"trend"`
	UserActivity []repositories.UserActivityRow `json:"userActivity,omitempty"`
}

// Dashboard aggregates fleet numbers for the caller's scope: admins see the
// whole fleet, everyone else only their assigned venue. Capacity figures are
// normalized to kilowatts.
func (c *StatsController) Dashboard(ctx context.Context, actor *User) (*DashboardStats, error) {
	log := c.log.Function("Dashboard")

	scope, err := policy.VenueScope(actor)
	if err != nil {
		return nil, err
	}

	gensets, err := c.gensetRepo.ListActive(ctx, scope)
	if err != nil {
		return nil, log.Err("failed to list gensets", err)
	}

	stats := &DashboardStats{
		CapacityKW: decimal.Zero,
		RunningKW:  decimal.Zero,
		Venues:     []VenueBreakdown{},
		Trend:      []TrendPoint{},
	}

	byVenue := map[string]*VenueBreakdown{}
	venueOrder := []string{}

	for i := range gensets {
		g := &gensets[i]
		kw := capacityKW(g)

		stats.Totals.Total++
		stats.CapacityKW = stats.CapacityKW.Add(kw)
		if g.Status == StatusOn {
			stats.Totals.On++
			stats.RunningKW = stats.RunningKW.Add(kw)
		} else {
			stats.Totals.Off++
		}

		key := "unassigned"
		name := "No Venue"
		if g.Venue != nil {
			key = g.Venue.ID.String()
			name = g.Venue.Name
		}
		breakdown, ok := byVenue[key]
		if !ok {
			breakdown = &VenueBreakdown{
				VenueID:    g.VenueID,
				VenueName:  name,
				CapacityKW: decimal.Zero,
			}
			byVenue[key] = breakdown
			venueOrder = append(venueOrder, key)
		}
		breakdown.Total++
		if g.Status == StatusOn {
			breakdown.On++
		}
		breakdown.CapacityKW = breakdown.CapacityKW.Add(kw)
	}

	for _, key := range venueOrder {
		stats.Venues = append(stats.Venues, *byVenue[key])
	}

	since := time.Now().AddDate(0, 0, -trendDays)
	rows, err := c.statsRepo.ToggleTrend(ctx, scope, since)
	if err != nil {
		return nil, err
	}
	stats.Trend = buildTrend(rows)

	if actor.IsAdmin() {
		activity, err := c.statsRepo.UserActivity(ctx, since, userActivityLimit)
		if err != nil {
			return nil, err
		}
		stats.UserActivity = activity
	}

	return stats, nil
}

var (
	mwToKW = decimal.NewFromInt(1000)
	hpToKW = decimal.RequireFromString("0.7457")
)

func capacityKW(g *Genset) decimal.Decimal {
	switch g.CapacityUnit {
	case CapacityMW:
		return g.Capacity.Mul(mwToKW)
	case CapacityHP:
		return g.Capacity.Mul(hpToKW).Round(2)
	default:
		return g.Capacity
	}
}

// buildTrend folds the per-day-per-action rows into one point per day,
// preserving date order from the query.
func buildTrend(rows []repositories.TrendRow) []TrendPoint {
	points := []TrendPoint{}
	index := map[string]int{}

	for _, row := range rows {
		i, ok := index[row.Day]
		if !ok {
			i = len(points)
			index[row.Day] = i
			points = append(points, TrendPoint{Date: row.Day})
		}
		switch row.Action {
		case ActionTurnOn:
			points[i].TurnOns += row.Count
		case ActionTurnOff:
			points[i].TurnOffs += row.Count
		}
	}

	return points
}
