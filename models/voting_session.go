package models

import (
	"strconv"
	"time"
)

// VotingSession tracks one code's progress through the category sequence.
// Each code has at most one session (unique index on VotingCodeID).
//
// CategoryIDs is the ordered active-category list snapshotted when the
// session is created; all index-based navigation runs against the snapshot
// so admin changes to category active flags cannot shift indices under an
// in-progress voter.
//
// PendingVotes maps category ID (as string, JSON object keys) to the
// selected person ID. Entries stay revisable until Finalize.
type VotingSession struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	VotingCodeID uint            `json:"voting_code_id" gorm:"uniqueIndex;not null"`
	VotingCode   VotingCode      `json:"-" gorm:"foreignKey:VotingCodeID"`
	CategoryIDs  []uint          `json:"category_ids" gorm:"serializer:json"`
	PendingVotes map[string]uint `json:"pending_votes" gorm:"serializer:json"`
	CurrentIndex int             `json:"current_category_index" gorm:"default:0"`
	IsCompleted  bool            `json:"is_completed" gorm:"default:false"`
	IPAddress    string          `json:"ip_address"`
	UserAgent    string          `json:"user_agent"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (VotingSession) TableName() string {
	return "voting_sessions"
}

// CurrentCategoryID returns the snapshotted category at the current index,
// or false when the index has stepped past the end of the list.
func (s *VotingSession) CurrentCategoryID() (uint, bool) {
	if s.CurrentIndex >= 0 && s.CurrentIndex < len(s.CategoryIDs) {
		return s.CategoryIDs[s.CurrentIndex], true
	}
	return 0, false
}

// IsFinalCategory reports whether the voter is on (or past) the last category.
func (s *VotingSession) IsFinalCategory() bool {
	return s.CurrentIndex >= len(s.CategoryIDs)-1
}

// SelectedPersonID returns the staged selection for a category, if any.
func (s *VotingSession) SelectedPersonID(categoryID uint) (uint, bool) {
	personID, ok := s.PendingVotes[strconv.FormatUint(uint64(categoryID), 10)]
	return personID, ok
}
