package models

import "time"

// Vote is an immutable, permanent record of one (code, category, person)
// selection. The composite unique index on (voting_code_id, category_id) is
// the backstop against double finalization: a second finalize attempt for
// the same session violates it and aborts the whole transaction.
type Vote struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	VotingCodeID uint       `json:"voting_code_id" gorm:"not null;uniqueIndex:idx_vote_code_category"`
	VotingCode   VotingCode `json:"-" gorm:"foreignKey:VotingCodeID"`
	CategoryID   uint       `json:"category_id" gorm:"not null;uniqueIndex:idx_vote_code_category;index"`
	Category     Category   `json:"-" gorm:"foreignKey:CategoryID"`
	PersonID     uint       `json:"person_id" gorm:"not null"`
	Person       Person     `json:"-" gorm:"foreignKey:PersonID"`
	IPAddress    string     `json:"ip_address"`
	UserAgent    string     `json:"user_agent"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Vote) TableName() string {
	return "votes"
}
