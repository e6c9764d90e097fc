package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole is the closed set of account tiers. Tiers are totally ordered:
// user < admin < prime_admin.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RolePrimeAdmin UserRole = "prime_admin"
)

var roleRank = map[UserRole]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RolePrimeAdmin: 3,
}

// Roles lists every role from lowest to highest tier.
func Roles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin, RolePrimeAdmin}
}

// ParseRole converts a raw string into a UserRole, rejecting anything outside the enumeration.
func ParseRole(raw string) (UserRole, error) {
	r := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q, must be one of: %s", raw, RolesString(Roles()))
	}
	return r, nil
}

func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank is 0 for unknown roles so they never satisfy any tier.
func (r UserRole) Rank() int {
	return roleRank[r]
}

// Satisfies reports whether r is at or above the minimum tier.
func (r UserRole) Satisfies(min UserRole) bool {
	return r.Valid() && min.Valid() && r.Rank() >= min.Rank()
}

// Outranks reports whether r is strictly above other.
func (r UserRole) Outranks(other UserRole) bool {
	return r.Valid() && r.Rank() > other.Rank()
}

// IsElevated is true for admin and prime_admin.
func (r UserRole) IsElevated() bool {
	return r.Satisfies(RoleAdmin)
}

func RolesString(roles []UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash *string    `json:"-"`
	FirstName    string     `json:"firstName" gorm:"not null"`
	LastName     string     `json:"lastName" gorm:"not null"`
	FederatedID  *string    `json:"-" gorm:"uniqueIndex"`
	IsVerified   bool       `json:"isVerified" gorm:"not null;default:false"`
	OTPCode      *string    `json:"-" gorm:"column:otp_code"`
	OTPExpiresAt *time.Time `json:"-" gorm:"column:otp_expires_at"`
	Role         UserRole   `json:"role" gorm:"not null;default:'user';index"`
	Credits      int        `json:"credits" gorm:"not null;default:0"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasPassword is false for accounts linked to a third-party identity only.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsFederated() bool {
	return u.FederatedID != nil && *u.FederatedID != ""
}

// Summary is the shape returned alongside issued tokens.
func (u *User) Summary() map[string]any {
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"role":      u.Role,
		"credits":   u.Credits,
	}
}
