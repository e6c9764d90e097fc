package statemachine

import (
	"errors"
	"fmt"

	"ride-booking-api/models"
)

var (
	ErrSelfAction          = errors.New("accounts cannot perform this action on themselves")
	ErrInsufficientTier    = errors.New("insufficient role for this action")
	ErrPrimeAdminImmutable = errors.New("the prime admin account cannot be modified")
	ErrInvalidTransition   = errors.New("invalid role transition")
	ErrNotAdmin            = errors.New("target account is not an admin")
)

// Transition defines a valid role change and the lowest tier allowed to perform it
type Transition struct {
	From  models.UserRole
	To    models.UserRole
	Actor models.UserRole
}

// validTransitions is the authoritative role change table. Nothing moves an
// account into or out of prime_admin.
var validTransitions = []Transition{
	// promote a standard account to admin
	{From: models.RoleUser, To: models.RoleAdmin, Actor: models.RolePrimeAdmin},
	// demote an admin back to standard
	{From: models.RoleAdmin, To: models.RoleUser, Actor: models.RolePrimeAdmin},
}

type transitionKey struct {
	From models.UserRole
	To   models.UserRole
}

var transitionMap = func() map[transitionKey]models.UserRole {
	m := make(map[transitionKey]models.UserRole)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = t.Actor
	}
	return m
}()

// Subject is the account an action is applied to.
type Subject struct {
	ID   int64
	Role models.UserRole
}

// Actor is the authenticated account performing an action.
type Actor struct {
	ID   int64
	Role models.UserRole
}

// ValidTransitionsFrom returns the roles an account can move to from role
func ValidTransitionsFrom(role models.UserRole) []models.UserRole {
	var nexts []models.UserRole
	for _, t := range validTransitions {
		if t.From == role {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanChangeRole checks whether actor may move target to the given role. A
// change to the role the target already holds is allowed and is a no-op.
func CanChangeRole(actor Actor, target Subject, to models.UserRole) error {
	if actor.ID == target.ID {
		return ErrSelfAction
	}
	if target.Role == models.RolePrimeAdmin || to == models.RolePrimeAdmin {
		return ErrPrimeAdminImmutable
	}
	if !to.Valid() || !target.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTransition, to)
	}
	if target.Role == to {
		return nil
	}
	min, ok := transitionMap[transitionKey{target.Role, to}]
	if !ok {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, target.Role, to)
	}
	if !actor.Role.Satisfies(min) {
		return fmt.Errorf("%w: %s → %s requires %s", ErrInsufficientTier, target.Role, to, min)
	}
	return nil
}

// CanDelete checks whether actor may delete target. Admins can only be
// removed by the prime admin, and the prime admin never.
func CanDelete(actor Actor, target Subject) error {
	if actor.ID == target.ID {
		return ErrSelfAction
	}
	if target.Role == models.RolePrimeAdmin {
		return ErrPrimeAdminImmutable
	}
	if !actor.Role.IsElevated() {
		return ErrInsufficientTier
	}
	if target.Role.IsElevated() && !actor.Role.Outranks(target.Role) {
		return fmt.Errorf("%w: admins cannot delete other admins", ErrInsufficientTier)
	}
	return nil
}

// CanUpdate checks whether actor may edit target's profile through the
// management surface. Elevated targets need a strictly higher actor.
func CanUpdate(actor Actor, target Subject) error {
	if !actor.Role.IsElevated() {
		return ErrInsufficientTier
	}
	if target.Role.IsElevated() && !actor.Role.Outranks(target.Role) {
		if target.Role == models.RolePrimeAdmin {
			return ErrPrimeAdminImmutable
		}
		return fmt.Errorf("%w: admins cannot edit other admins", ErrInsufficientTier)
	}
	return nil
}

// CanRemoveAdmin guards the admin roster endpoint: only admin-tier targets qualify.
func CanRemoveAdmin(actor Actor, target Subject) error {
	if target.Role == models.RolePrimeAdmin {
		return ErrPrimeAdminImmutable
	}
	if target.Role != models.RoleAdmin {
		return ErrNotAdmin
	}
	return CanDelete(actor, target)
}

func SubjectOf(u *models.User) Subject {
	return Subject{ID: u.ID, Role: u.Role}
}
