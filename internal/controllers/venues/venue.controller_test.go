package venueController

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gentrack/internal/apperrors"
	"gentrack/internal/database"
	. "gentrack/internal/models"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTest(t *testing.T) (repositories.Repository, VenueControllerInterface) {
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
	controller := New(repos.Venue, repos.Genset, repos.Log)
	return repos, controller
}

func createAdmin(t *testing.T, repos repositories.Repository) *User {
	t.Helper()

	admin := &User{
		Username: "admin",
		Email:    "admin@example.com",
		Role:     RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, admin.SetPassword("password"))
	require.NoError(t, repos.User.Create(context.Background(), admin))
	return admin
}

func attachGenset(t *testing.T, repos repositories.Repository, admin *User, name string, venue *Venue, status PowerStatus) *Genset {
	t.Helper()
	ctx := context.Background()

	genset := &Genset{
		Name:             name,
		Capacity:         decimal.NewFromInt(50),
		CapacityUnit:     CapacityKW,
		Status:           status,
		IsActive:         true,
		LastStatusChange: time.Now(),
		CreatedByID:      admin.ID,
	}
	require.NoError(t, repos.Genset.Create(ctx, genset))
	if venue != nil {
		require.NoError(t, repos.Genset.Attach(ctx, genset, venue, DetachOther, time.Now()))
	}
	return genset
}

func TestCreateAndUpdateVenue(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	admin := createAdmin(t, repos)

	venue, err := controller.Create(ctx, admin, VenueRequest{
		Name:     "Fairgrounds",
		Location: "East Side",
	})
	require.NoError(t, err)
	assert.True(t, venue.IsActive)
	assert.Equal(t, admin.ID, venue.CreatedByID)

	_, err = controller.Create(ctx, admin, VenueRequest{Name: "Fairgrounds"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = controller.Create(ctx, admin, VenueRequest{})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	updated, err := controller.Update(ctx, admin, venue.ID, VenueRequest{
		Name:     "Fairgrounds South",
		Location: "East Side",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fairgrounds South", updated.Name)
}

func TestDeleteVenueCascade(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	admin := createAdmin(t, repos)

	venue, err := controller.Create(ctx, admin, VenueRequest{Name: "Fairgrounds"})
	require.NoError(t, err)
	other, err := controller.Create(ctx, admin, VenueRequest{Name: "Depot"})
	require.NoError(t, err)

	running := attachGenset(t, repos, admin, "GEN-1", venue, StatusOn)
	idle := attachGenset(t, repos, admin, "GEN-2", venue, StatusOff)
	elsewhere := attachGenset(t, repos, admin, "GEN-3", other, StatusOff)

	result, err := controller.Delete(ctx, admin, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.UntaggedGenerators)

	// Venue is deactivated, not removed.
	stored, err := repos.Venue.GetByID(ctx, venue.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// Both generators lost their venue but kept their power state.
	for _, g := range []*Genset{running, idle} {
		reloaded, err := repos.Genset.GetByID(ctx, g.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.VenueID)

		require.Len(t, reloaded.VenueHistory, 1)
		interval := reloaded.VenueHistory[0]
		assert.False(t, interval.Open())
		require.NotNil(t, interval.DetachedReason)
		assert.Equal(t, DetachVenueDeleted, *interval.DetachedReason)
		assert.Equal(t, "Fairgrounds", interval.VenueName)
	}
	reloaded, err := repos.Genset.GetByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOn, reloaded.Status)

	// The generator on the other venue is untouched.
	untouched, err := repos.Genset.GetByID(ctx, elsewhere.ID)
	require.NoError(t, err)
	require.NotNil(t, untouched.VenueID)
	assert.Equal(t, other.ID, *untouched.VenueID)

	// One untag entry per generator, status context unchanged.
	untagAction := ActionVenueUntag
	untags, total, err := repos.Log.Query(ctx, repositories.LogFilter{Action: &untagAction})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, entry := range untags {
		require.NotNil(t, entry.PreviousStatus)
		require.NotNil(t, entry.NewStatus)
		assert.Equal(t, *entry.PreviousStatus, *entry.NewStatus)
		assert.Contains(t, entry.Notes, "venue deletion: Fairgrounds")
	}

	// One summary entry with the structured count, no generator reference.
	deletedAction := ActionVenueDeleted
	summaries, total, err := repos.Log.Query(ctx, repositories.LogFilter{Action: &deletedAction})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	summary := summaries[0]
	assert.Nil(t, summary.GensetID)
	require.NotNil(t, summary.Details)
	details := summary.Details.Data()
	assert.Equal(t, 2, details.UntaggedCount)
	assert.Len(t, details.GensetIDs, 2)
	assert.Contains(t, summary.Notes, "Venue deleted: Fairgrounds. 2 generators untagged.")
}

func TestUntagRollsBackWhenAuditWriteFails(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	admin := createAdmin(t, repos)

	venue, err := controller.Create(ctx, admin, VenueRequest{Name: "Fairgrounds"})
	require.NoError(t, err)
	genset := attachGenset(t, repos, admin, "GEN-1", venue, StatusOff)

	// Occupy an ID so the audit insert inside the detach transaction hits a
	// primary key collision.
	taken := uuid.New()
	require.NoError(t, repos.Log.Create(ctx, &Log{
		BaseUUIDModel: BaseUUIDModel{ID: taken},
		GensetID:      &genset.ID,
		UserID:        admin.ID,
		Action:        ActionManual,
		Timestamp:     time.Now(),
	}))

	entry := &Log{
		BaseUUIDModel: BaseUUIDModel{ID: taken},
		GensetID:      &genset.ID,
		VenueID:       &venue.ID,
		UserID:        admin.ID,
		Action:        ActionVenueUntag,
		Timestamp:     time.Now(),
	}
	err = repos.Genset.Detach(ctx, genset, DetachVenueDeleted, time.Now(), entry)
	require.Error(t, err)

	// The detach rolled back with the entry: still attached, interval still
	// open, and no untag record exists.
	reloaded, err := repos.Genset.GetByID(ctx, genset.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.VenueID)
	assert.Equal(t, venue.ID, *reloaded.VenueID)
	require.NotNil(t, reloaded.OpenAttachment())

	untagAction := ActionVenueUntag
	_, total, err := repos.Log.Query(ctx, repositories.LogFilter{Action: &untagAction})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestDeleteVenueWithoutGensets(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	admin := createAdmin(t, repos)

	venue, err := controller.Create(ctx, admin, VenueRequest{Name: "Empty Lot"})
	require.NoError(t, err)

	result, err := controller.Delete(ctx, admin, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UntaggedGenerators)

	// Deleting again fails: the venue is already gone from the active set.
	_, err = controller.Delete(ctx, admin, venue.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVenueAdminOnly(t *testing.T) {
	repos, controller := setupTest(t)
	ctx := context.Background()
	createAdmin(t, repos)

	operator := &User{
		Username: "operator",
		Email:    "operator@example.com",
		Role:     RoleUser,
		IsActive: true,
	}
	require.NoError(t, operator.SetPassword("password"))
	require.NoError(t, repos.User.Create(ctx, operator))

	_, err := controller.Create(ctx, operator, VenueRequest{Name: "Nope"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = controller.List(ctx, operator)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = controller.Delete(ctx, operator, uuid.New())
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}
