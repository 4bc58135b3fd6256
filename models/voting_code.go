package models

import "time"

// VotingCode is a bounded-use access token granting voting rights.
// A use is consumed once per fully completed session, never per category step.
type VotingCode struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"uniqueIndex;not null"`
	MaxUses     int       `json:"max_uses" gorm:"not null;default:2"`
	CurrentUses int       `json:"current_uses" gorm:"not null;default:0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	// Email this code was sent to, if any.
	Email           *string   `json:"email,omitempty"`
	CreatedByUserID uint      `json:"created_by_user_id"`
	CreatedByUser   User      `json:"-" gorm:"foreignKey:CreatedByUserID"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (VotingCode) TableName() string {
	return "voting_codes"
}

// CanVote reports whether the code is still redeemable.
func (vc *VotingCode) CanVote() bool {
	return vc.IsActive && vc.CurrentUses < vc.MaxUses
}
