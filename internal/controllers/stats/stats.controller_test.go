package statsController

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gentrack/internal/database"
	. "gentrack/internal/models"
	"gentrack/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTest(t *testing.T) (repositories.Repository, StatsControllerInterface) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := database.DB{SQL: gormDB}
	require.NoError(t, db.MigrateModels())

	repos := repositories.New(db)
	controller := New(repos.Genset, repos.Stats)
	return repos, controller
}

func TestCapacityKW(t *testing.T) {
	tests := []struct {
		name     string
		capacity string
		unit     CapacityUnit
		want     string
	}{
		{"kilowatts pass through", "150", CapacityKW, "150"},
		{"megawatts scale up", "1.5", CapacityMW, "1500"},
		{"horsepower converts", "100", CapacityHP, "74.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Genset{
				Capacity:     decimal.RequireFromString(tt.capacity),
				CapacityUnit: tt.unit,
			}
			assert.True(t, capacityKW(g).Equal(decimal.RequireFromString(tt.want)),
				"got %s", capacityKW(g))
		})
	}
}

func TestBuildTrend(t *testing.T) {
	rows := []repositories.TrendRow{
		{Day: "2026-08-01", Action: ActionTurnOn, Count: 3},
		{Day: "2026-08-01", Action: ActionTurnOff, Count: 2},
		{Day: "2026-08-02", Action: ActionTurnOff, Count: 1},
	}

	points := buildTrend(rows)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-01", points[0].Date)
	assert.Equal(t, int64(3), points[0].TurnOns)
	assert.Equal(t, int64(2), points[0].TurnOffs)
	assert.Equal(t, "2026-08-02", points[1].Date)
	assert.Equal(t, int64(0), points[1].TurnOns)
	assert.Equal(t, int64(1), points[1].TurnOffs)
}

func TestDashboard(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()

	admin := &User{Username: "admin", Email: "admin@example.com", Role: RoleAdmin, IsActive: true}
	require.NoError(t, admin.SetPassword("password"))
	require.NoError(t, repos.User.Create(ctx, admin))

	venue := &Venue{Name: "Fairgrounds", IsActive: true, CreatedByID: admin.ID}
	require.NoError(t, repos.Venue.Create(ctx, venue))

	newGenset := func(name string, status PowerStatus, attach bool) *Genset {
		g := &Genset{
			Name:             name,
			Capacity:         decimal.NewFromInt(100),
			CapacityUnit:     CapacityKW,
			Status:           status,
			IsActive:         true,
			LastStatusChange: time.Now(),
			CreatedByID:      admin.ID,
		}
		require.NoError(t, repos.Genset.Create(ctx, g))
		if attach {
			require.NoError(t, repos.Genset.Attach(ctx, g, venue, DetachOther, time.Now()))
		}
		return g
	}

	g1 := newGenset("GEN-1", StatusOn, true)
	newGenset("GEN-2", StatusOff, true)
	newGenset("GEN-3", StatusOff, false)

	require.NoError(t, repos.Log.Create(ctx, &Log{
		GensetID:  &g1.ID,
		VenueID:   &venue.ID,
		UserID:    admin.ID,
		Action:    ActionTurnOn,
		Timestamp: time.Now().Add(-time.Hour),
	}))

	stats, err := controller.Dashboard(ctx, admin)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Totals.Total)
	assert.Equal(t, 1, stats.Totals.On)
	assert.Equal(t, 2, stats.Totals.Off)
	assert.True(t, stats.CapacityKW.Equal(decimal.NewFromInt(300)))
	assert.True(t, stats.RunningKW.Equal(decimal.NewFromInt(100)))

	require.Len(t, stats.Venues, 2)
	names := []string{stats.Venues[0].VenueName, stats.Venues[1].VenueName}
	assert.Contains(t, names, "Fairgrounds")
	assert.Contains(t, names, "No Venue")

	require.Len(t, stats.Trend, 1)
	assert.Equal(t, int64(1), stats.Trend[0].TurnOns)

	require.NotEmpty(t, stats.UserActivity)
	assert.Equal(t, "admin", stats.UserActivity[0].Username)

	// Operators only see their venue and no user activity.
	operator := &User{
		Username:        "operator",
		Email:           "operator@example.com",
		Role:            RoleUser,
		IsActive:        true,
		AssignedVenueID: &venue.ID,
	}
	require.NoError(t, operator.SetPassword("password"))
	require.NoError(t, repos.User.Create(ctx, operator))

	scoped, err := controller.Dashboard(ctx, operator)
	require.NoError(t, err)
	assert.Equal(t, 2, scoped.Totals.Total)
	assert.Empty(t, scoped.UserActivity)
}
