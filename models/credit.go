package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrAppendOnly is returned when something tries to rewrite the credit audit trail.
var ErrAppendOnly = errors.New("credit adjustments are append-only")

// CreditAdjustment records every balance change made by an elevated actor.
type CreditAdjustment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          int64     `json:"userId" gorm:"not null;index"`
	ActorID         int64     `json:"actorId" gorm:"not null"`
	PreviousCredits int       `json:"previousCredits" gorm:"not null"`
	NewCredits      int       `json:"newCredits" gorm:"not null"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (CreditAdjustment) BeforeUpdate(*gorm.DB) error {
	return ErrAppendOnly
}

func (CreditAdjustment) BeforeDelete(*gorm.DB) error {
	return ErrAppendOnly
}

// Delta is the signed change applied by the adjustment.
func (a CreditAdjustment) Delta() int {
	return a.NewCredits - a.PreviousCredits
}
