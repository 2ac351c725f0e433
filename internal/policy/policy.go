// Package policy holds the role-scoping rules every controller consults.
// Admins see and mutate everything; regular users are confined to their
// assigned venue.
package policy

import (
	"gentrack/internal/apperrors"
	. "gentrack/internal/models"
	"gentrack/internal/repositories"

	"github.com/google/uuid"
)

// VenueScope resolves the venue restriction for a user: nil for admins
// (unrestricted), the assigned venue for regular users. A regular user with
// no assigned venue gets Forbidden for any venue-scoped operation.
func VenueScope(user *User) (*uuid.UUID, error) {
	if user.IsAdmin() {
		return nil, nil
	}

	if user.AssignedVenueID == nil {
		return nil, apperrors.Forbidden("no venue assigned to user")
	}

	return user.AssignedVenueID, nil
}

// ScopeLogFilter intersects a log filter with the caller's venue scope. For
// non-admins any requested venue filter is overridden by the assigned venue.
func ScopeLogFilter(user *User, filter *repositories.LogFilter) error {
	scope, err := VenueScope(user)
	if err != nil {
		return err
	}

	if scope != nil {
		filter.VenueID = scope
	}

	return nil
}

// CanViewGenset reports whether the user may read this generator.
func CanViewGenset(user *User, genset *Genset) bool {
	if user.IsAdmin() {
		return true
	}

	if user.AssignedVenueID == nil || genset.VenueID == nil {
		return false
	}

	return *genset.VenueID == *user.AssignedVenueID
}

// CanMutateGenset reports whether the user may change this generator's
// state. Same rule as viewing: mutation inside scope only.
func CanMutateGenset(user *User, genset *Genset) bool {
	return CanViewGenset(user, genset)
}

// RequireAdmin fails with Forbidden unless the user is an admin. Inventory,
// venue, user, and manual log management are admin-only.
func RequireAdmin(user *User) error {
	if !user.IsAdmin() {
		return apperrors.Forbidden("administrator access required")
	}
	return nil
}
