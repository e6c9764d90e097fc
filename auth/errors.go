package auth

import "errors"

var (
	// ErrInvalidToken covers every token failure: malformed, expired, bad signature.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrOTPMissing  = errors.New("no verification code has been issued")
	ErrOTPExpired  = errors.New("verification code has expired")
	ErrOTPMismatch = errors.New("invalid verification code")

	ErrMissingSecret = errors.New("token signing secret is required")
)
