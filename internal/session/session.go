// Package session routes a user to login, plan setup or the active challenge.
package session

import (
	"github.com/julianstephens/thirty/internal/constants"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/models"
)

// UserSource reports the logged-in user
type UserSource interface {
	CurrentUser() (*models.User, error)
}

// PlanSource reports whether a user has committed to a plan
type PlanSource interface {
	GetPlan(userID string) (*models.Plan, error)
}

// Snapshot is the resolved session
type Snapshot struct {
	State constants.SessionState
	User  *models.User
	Plan  *models.Plan
}

// Resolve derives the session state from the stored session and plan
func Resolve(users UserSource, plans PlanSource) (Snapshot, error) {
	u, err := users.CurrentUser()
	if err != nil {
		return Snapshot{}, err
	}
	if u == nil {
		return Snapshot{State: constants.StateUnauthenticated}, nil
	}

	p, err := plans.GetPlan(u.ID)
	if err != nil {
		return Snapshot{}, err
	}
	if p == nil {
		return Snapshot{State: constants.StateNeedsPlan, User: u}, nil
	}
	return Snapshot{State: constants.StateActive, User: u, Plan: p}, nil
}

// Require returns the routing error for a screen that needs state want
func Require(have, want constants.SessionState) error {
	if have == want {
		return nil
	}
	switch {
	case have == constants.StateUnauthenticated:
		return apperrors.ErrNotAuthenticated
	case want == constants.StateActive:
		return apperrors.ErrPlanRequired
	case want == constants.StateNeedsPlan:
		return apperrors.ErrPlanExists
	}
	// want Unauthenticated while logged in: screens that need a logged-out
	// session (sign-up, login) just replace the session
	return nil
}

// RequireUser resolves the session and demands at least a logged-in user
func RequireUser(users UserSource, plans PlanSource) (Snapshot, error) {
	snap, err := Resolve(users, plans)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.State == constants.StateUnauthenticated {
		return snap, apperrors.ErrNotAuthenticated
	}
	return snap, nil
}

// RequireState resolves the session and demands exactly want
func RequireState(users UserSource, plans PlanSource, want constants.SessionState) (Snapshot, error) {
	snap, err := Resolve(users, plans)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, Require(snap.State, want)
}
