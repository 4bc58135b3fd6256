package models

import "time"

// VoteStatistic is one row of the derive-on-write tally cache: vote count
// and percentage for a (category, person) pair. The whole set for a category
// is replaced whenever a vote is finalized in it; rows only exist for
// persons who actually received votes.
type VoteStatistic struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CategoryID uint      `json:"category_id" gorm:"not null;uniqueIndex:idx_stat_category_person"`
	Category   Category  `json:"-" gorm:"foreignKey:CategoryID"`
	PersonID   uint      `json:"person_id" gorm:"not null;uniqueIndex:idx_stat_category_person"`
	Person     Person    `json:"-" gorm:"foreignKey:PersonID"`
	VoteCount  int       `json:"vote_count" gorm:"not null;default:0"`
	Percentage float64   `json:"percentage" gorm:"not null;default:0"`
	UpdatedAt  time.Time `json:"last_updated"`
}

// TableName explicitly sets the table name for GORM.
func (VoteStatistic) TableName() string {
	return "vote_statistics"
}
