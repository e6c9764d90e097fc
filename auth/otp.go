package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const DefaultOTPTTL = 5 * time.Minute

// OTPIssuer produces short-lived numeric codes. Every issuance starts from a
// fresh random seed, so a code says nothing about the account beyond being
// stored next to its expiry.
type OTPIssuer struct {
	TTL    time.Duration
	Digits int
	Issuer string
	Now    func() time.Time
}

func NewOTPIssuer(issuer string, ttl time.Duration, digits int) *OTPIssuer {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	if digits != 8 {
		digits = 6
	}
	if issuer == "" {
		issuer = "ride-booking"
	}
	return &OTPIssuer{TTL: ttl, Digits: digits, Issuer: issuer, Now: time.Now}
}

func (o *OTPIssuer) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Issue returns a new code for the account together with its expiry.
func (o *OTPIssuer) Issue(account string) (string, time.Time, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.Issuer,
		AccountName: account,
		Period:      uint(o.TTL.Seconds()),
		Digits:      otp.Digits(o.Digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate code seed: %w", err)
	}
	issuedAt := o.now()
	code, err := totp.GenerateCodeCustom(key.Secret(), issuedAt, totp.ValidateOpts{
		Period:    uint(o.TTL.Seconds()),
		Digits:    otp.Digits(o.Digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to derive code: %w", err)
	}
	return code, issuedAt.Add(o.TTL), nil
}

// Validate checks a supplied code against the stored one. Expiry is checked
// first so an expired code is reported as such even when it matches.
func (o *OTPIssuer) Validate(storedCode *string, storedExpiry *time.Time, supplied string) error {
	return ValidateCode(storedCode, storedExpiry, supplied, o.now())
}

func ValidateCode(storedCode *string, storedExpiry *time.Time, supplied string, now time.Time) error {
	if storedCode == nil || *storedCode == "" || storedExpiry == nil {
		return ErrOTPMissing
	}
	if !now.Before(*storedExpiry) {
		return ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*storedCode), []byte(supplied)) != 1 {
		return ErrOTPMismatch
	}
	return nil
}
