package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	user := &User{Username: "deakins"}
	require.NoError(t, user.SetPassword("hunter2"))

	assert.NotEqual(t, "hunter2", user.PasswordHash)
	assert.True(t, user.CheckPassword("hunter2"))
	assert.False(t, user.CheckPassword("Hunter2"))
	assert.False(t, user.CheckPassword(""))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}

func TestToProfileOmitsSecrets(t *testing.T) {
	user := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Username:      "deakins",
		Email:         "deakins@example.com",
		Role:          RoleUser,
	}
	require.NoError(t, user.SetPassword("hunter2"))

	profile := user.ToProfile()
	assert.Equal(t, user.ID.String(), profile.ID)
	assert.Equal(t, "deakins", profile.Username)
	assert.Equal(t, RoleUser, profile.Role)
}

func TestValidLogAction(t *testing.T) {
	for _, action := range AllLogActions {
		assert.True(t, ValidLogAction(action), string(action))
	}
	assert.False(t, ValidLogAction(LogAction("EXPLODED")))
}

func TestVenueAttachmentOpen(t *testing.T) {
	interval := &VenueAttachment{}
	assert.True(t, interval.Open())

	now := interval.AttachedAt
	interval.DetachedAt = &now
	assert.False(t, interval.Open())
}
