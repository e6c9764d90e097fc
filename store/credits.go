package store

import (
	"context"
	"fmt"

	"ride-booking-api/models"

	"gorm.io/gorm"
)

// SetCredits overwrites a standard account's balance and appends the audit
// record in the same transaction. The returned record carries both balances.
func (s *Store) SetCredits(ctx context.Context, userID, actorID int64, credits int, reason string) (*models.CreditAdjustment, error) {
	if credits < 0 {
		return nil, ErrNegativeCredits
	}
	var adj models.CreditAdjustment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			return notFound(err)
		}
		if u.Role != models.RoleUser {
			return ErrCreditsNotTracked
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("credits", credits).Error; err != nil {
			return fmt.Errorf("failed to update credits: %w", err)
		}
		adj = models.CreditAdjustment{
			UserID:          userID,
			ActorID:         actorID,
			PreviousCredits: u.Credits,
			NewCredits:      credits,
			Reason:          reason,
		}
		if err := tx.Create(&adj).Error; err != nil {
			return fmt.Errorf("failed to record credit adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

// CreditHistory lists a user's adjustments, newest first.
func (s *Store) CreditHistory(ctx context.Context, userID int64) ([]models.CreditAdjustment, error) {
	var history []models.CreditAdjustment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load credit history: %w", err)
	}
	return history, nil
}

// BackfillCredits gives the default balance to standard accounts still at zero.
func (s *Store) BackfillCredits(ctx context.Context, credits int) (int64, error) {
	if credits < 0 {
		return 0, ErrNegativeCredits
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND credits = 0", models.RoleUser).
		Update("credits", credits)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to backfill credits: %w", res.Error)
	}
	return res.RowsAffected, nil
}
