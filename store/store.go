package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ride-booking-api/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPrimeAdminExists   = errors.New("a prime admin account already exists")
	ErrIDSpaceExhausted   = errors.New("could not allocate a unique account id")
	ErrFederatedElevated  = errors.New("third-party accounts cannot hold elevated roles")
	ErrCodeAlreadyUsed    = errors.New("verification code already used or replaced")
	ErrCreditsNotTracked  = errors.New("credits are only tracked for standard accounts")
	ErrNegativeCredits    = errors.New("credits cannot be negative")
	ErrInvalidAccountRole = errors.New("invalid account role")
)

const DefaultMaxIDAttempts = 10

// ID ranges: standard accounts get 8 digits, elevated accounts 10 digits.
const (
	userIDMin  int64 = 10_000_000
	userIDMax  int64 = 99_999_999
	adminIDMin int64 = 1_000_000_000
	adminIDMax int64 = 9_999_999_999
)

// IDRange returns the inclusive identifier range for accounts of the role.
func IDRange(role models.UserRole) (int64, int64) {
	if role.IsElevated() {
		return adminIDMin, adminIDMax
	}
	return userIDMin, userIDMax
}

// Store is the account store. It is safe for concurrent use; all ordering
// guarantees come from the database.
type Store struct {
	db            *gorm.DB
	maxIDAttempts int
	randInt       func(min, max int64) int64
}

type Option func(*Store)

func WithMaxIDAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxIDAttempts = n
		}
	}
}

// WithIDSource replaces the random identifier source, used by tests to force collisions.
func WithIDSource(f func(min, max int64) int64) Option {
	return func(s *Store) {
		s.randInt = f
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:            db,
		maxIDAttempts: DefaultMaxIDAttempts,
		randInt: func(min, max int64) int64 {
			return min + rand.Int63n(max-min+1)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateAccount allocates an identifier in the tier's range and inserts the
// account. The identifier is regenerated on collision, at most maxIDAttempts times.
func (s *Store) CreateAccount(ctx context.Context, u *models.User) error {
	if !u.Role.Valid() {
		return ErrInvalidAccountRole
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Role.IsElevated() && u.IsFederated() {
		return ErrFederatedElevated
	}

	db := s.db.WithContext(ctx)
	if taken, err := s.emailTaken(db, u.Email, 0); err != nil {
		return err
	} else if taken {
		return ErrEmailTaken
	}
	if u.Role == models.RolePrimeAdmin {
		if _, err := s.FindPrimeAdmin(ctx); err == nil {
			return ErrPrimeAdminExists
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	min, max := IDRange(u.Role)
	for attempt := 0; attempt < s.maxIDAttempts; attempt++ {
		candidate := s.randInt(min, max)
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", candidate).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check account id: %w", err)
		}
		if count > 0 {
			continue
		}
		u.ID = candidate
		err := db.Create(u).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create account: %w", err)
		}
		// lost a race: either the email or the id was taken in between
		if taken, checkErr := s.emailTaken(db, u.Email, 0); checkErr == nil && taken {
			return ErrEmailTaken
		}
	}
	u.ID = 0
	return ErrIDSpaceExhausted
}

func (s *Store) emailTaken(db *gorm.DB, email string, exceptID int64) (bool, error) {
	var count int64
	q := db.Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) FindPrimeAdmin(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("role = ?", models.RolePrimeAdmin).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListUsers returns every account, optionally restricted to one role.
func (s *Store) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	q := s.db.WithContext(ctx).Order("created_at asc")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return users, nil
}

// SetOTP stores a freshly issued code, replacing any previous one.
func (s *Store) SetOTP(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"otp_code": code, "otp_expires_at": expiresAt})
	if res.Error != nil {
		return fmt.Errorf("failed to store code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// consumeOTP clears the code only if it is still the one the caller validated,
// applying extra column updates in the same statement. Zero affected rows means
// another request consumed or replaced it first.
func (s *Store) consumeOTP(ctx context.Context, id int64, code string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"otp_code": nil, "otp_expires_at": nil}
	for k, v := range extra {
		updates[k] = v
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND otp_code = ?", id, code).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to consume code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCodeAlreadyUsed
	}
	return nil
}

// MarkVerified consumes the verification code and flips the verified flag.
func (s *Store) MarkVerified(ctx context.Context, id int64, code string) error {
	return s.consumeOTP(ctx, id, code, map[string]interface{}{"is_verified": true})
}

// ResetPassword consumes the reset code and stores the new password hash.
func (s *Store) ResetPassword(ctx context.Context, id int64, code, passwordHash string) error {
	return s.consumeOTP(ctx, id, code, map[string]interface{}{"password_hash": passwordHash})
}

func (s *Store) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.updateColumns(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

// ProfileUpdate holds the optional fields an account may change. Verification
// is one-way: MarkVerified can set the flag but nothing here clears it.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	MarkVerified bool
}

func (p ProfileUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.FirstName != nil {
		cols["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		cols["last_name"] = *p.LastName
	}
	if p.Email != nil {
		cols["email"] = NormalizeEmail(*p.Email)
	}
	if p.MarkVerified {
		cols["is_verified"] = true
	}
	return cols
}

// UpdateProfile applies the non-nil fields and returns the refreshed account.
func (s *Store) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) (*models.User, error) {
	cols := p.columns()
	if email, ok := cols["email"].(string); ok {
		taken, err := s.emailTaken(s.db.WithContext(ctx), email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}
	if len(cols) > 0 {
		if err := s.updateColumns(ctx, id, cols); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
	}
	return s.FindByID(ctx, id)
}

// SetRole changes an account's tier. A prime admin can only be created
// through CreateAccount, never by promotion.
func (s *Store) SetRole(ctx context.Context, id int64, role models.UserRole) error {
	if !role.Valid() {
		return ErrInvalidAccountRole
	}
	if role == models.RolePrimeAdmin {
		return ErrPrimeAdminExists
	}
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsElevated() && u.IsFederated() {
		return ErrFederatedElevated
	}
	return s.updateColumns(ctx, id, map[string]interface{}{"role": role})
}

func (s *Store) updateColumns(ctx context.Context, id int64, cols map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("failed to update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllAdmins removes every admin-tier account; the prime admin is untouched.
func (s *Store) DeleteAllAdmins(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Delete(&models.User{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete admin accounts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
