package store

import (
	"context"
	"errors"
	"fmt"

	"ride-booking-api/models"
)

var (
	ErrIdentityLinked   = errors.New("email is linked to a different third-party identity")
	ErrSignupNotAllowed = errors.New("no account may be created for this identity")
)

// FederatedIdentity is what a third-party provider vouches for.
type FederatedIdentity struct {
	Provider  string
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// Key is the stored federated_id: provider and subject together.
func (f FederatedIdentity) Key() string {
	return f.Provider + ":" + f.Subject
}

// SignInFederated resolves the account for a verified third-party identity.
// A known identity returns its account; an existing account with the same
// email gets the identity linked; otherwise, when allowSignup accepts the
// email, a verified standard account is created with the given credits.
// Elevated accounts never sign in this way.
func (s *Store) SignInFederated(ctx context.Context, id FederatedIdentity, credits int, allowSignup func(email string) bool) (*models.User, bool, error) {
	key := id.Key()
	id.Email = NormalizeEmail(id.Email)
	db := s.db.WithContext(ctx)

	var linked models.User
	err := db.Where("federated_id = ?", key).First(&linked).Error
	if err == nil {
		if linked.Role.IsElevated() {
			return nil, false, ErrFederatedElevated
		}
		return &linked, false, nil
	}
	if err = notFound(err); !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up identity: %w", err)
	}

	existing, err := s.FindByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if existing.Role.IsElevated() {
			return nil, false, ErrFederatedElevated
		}
		if existing.IsFederated() {
			return nil, false, ErrIdentityLinked
		}
		// the provider verified the address, so a pending code is moot
		if err := s.updateColumns(ctx, existing.ID, map[string]interface{}{
			"federated_id":   key,
			"is_verified":    true,
			"otp_code":       nil,
			"otp_expires_at": nil,
		}); err != nil {
			return nil, false, err
		}
		u, err := s.FindByID(ctx, existing.ID)
		return u, false, err
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	if allowSignup != nil && !allowSignup(id.Email) {
		return nil, false, ErrSignupNotAllowed
	}
	u := &models.User{
		Email:       id.Email,
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		FederatedID: &key,
		IsVerified:  true,
		Role:        models.RoleUser,
		Credits:     credits,
	}
	if err := s.CreateAccount(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}
