package policy

import (
	"testing"

	"gentrack/internal/apperrors"
	. "gentrack/internal/models"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func user(role Role, venueID *uuid.UUID) *User {
	return &User{
		BaseUUIDModel:   BaseUUIDModel{ID: uuid.New()},
		Username:        "someone",
		Role:            role,
		IsActive:        true,
		AssignedVenueID: venueID,
	}
}

func TestVenueScope(t *testing.T) {
	venueID := uuid.New()

	scope, err := VenueScope(user(RoleAdmin, nil))
	require.NoError(t, err)
	assert.Nil(t, scope, "admins are unrestricted")

	scope, err = VenueScope(user(RoleUser, &venueID))
	require.NoError(t, err)
	require.NotNil(t, scope)
	assert.Equal(t, venueID, *scope)

	_, err = VenueScope(user(RoleUser, nil))
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestScopeLogFilter(t *testing.T) {
	ownVenue := uuid.New()
	otherVenue := uuid.New()

	// A non-admin's venue filter is overridden, whatever they asked for.
	filter := repositories.LogFilter{VenueID: &otherVenue}
	require.NoError(t, ScopeLogFilter(user(RoleUser, &ownVenue), &filter))
	require.NotNil(t, filter.VenueID)
	assert.Equal(t, ownVenue, *filter.VenueID)

	// Admins keep their requested filter.
	filter = repositories.LogFilter{VenueID: &otherVenue}
	require.NoError(t, ScopeLogFilter(user(RoleAdmin, nil), &filter))
	require.NotNil(t, filter.VenueID)
	assert.Equal(t, otherVenue, *filter.VenueID)
}

func TestCanViewGenset(t *testing.T) {
	venueID := uuid.New()
	otherID := uuid.New()

	attached := &Genset{VenueID: &venueID}
	unattached := &Genset{}

	tests := []struct {
		name   string
		user   *User
		genset *Genset
		want   bool
	}{
		{"admin sees everything", user(RoleAdmin, nil), attached, true},
		{"admin sees unattached", user(RoleAdmin, nil), unattached, true},
		{"user in venue", user(RoleUser, &venueID), attached, true},
		{"user in other venue", user(RoleUser, &otherID), attached, false},
		{"user without venue", user(RoleUser, nil), attached, false},
		{"user cannot see unattached", user(RoleUser, &venueID), unattached, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewGenset(tt.user, tt.genset))
			assert.Equal(t, tt.want, CanMutateGenset(tt.user, tt.genset))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(user(RoleAdmin, nil)))
	assert.ErrorIs(t, RequireAdmin(user(RoleUser, nil)), apperrors.ErrForbidden)
}
