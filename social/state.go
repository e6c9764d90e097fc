package social

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateAudience = "oauth-state"

var ErrInvalidState = errors.New("invalid or expired oauth state")

// StateSigner issues the self-contained state parameter of the authorization
// code flow. A state is bound to one provider and expires after ttl.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *StateSigner) Issue(provider string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   provider,
		Audience:  jwt.ClaimStrings{stateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return signed, nil
}

func (s *StateSigner) Verify(state, provider string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject != provider {
		return ErrInvalidState
	}
	return nil
}
