package repository

import (
	"errors"
	"fmt"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"gorm.io/gorm"
)

// GormVotingSessionRepository handles database operations for voting sessions
type GormVotingSessionRepository struct {
	db *gorm.DB
}

// NewGormVotingSessionRepository creates a new instance of GormVotingSessionRepository
func NewGormVotingSessionRepository(db *gorm.DB) VotingSessionRepository {
	return &GormVotingSessionRepository{db: db}
}

// GetOrCreate returns the session for the code, creating one with the given
// category snapshot when none exists. The unique index on voting_code_id
// closes the race between two first visits with the same code: the loser of
// the insert fetches the winner's row instead of erroring.
func (r *GormVotingSessionRepository) GetOrCreate(codeID uint, categoryIDs []uint, ipAddress, userAgent string) (*models.VotingSession, bool, error) {
	var session models.VotingSession
	err := r.db.Where("voting_code_id = ?", codeID).First(&session).Error
	if err == nil {
		return &session, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up session for code ID %d: %w", codeID, err)
	}

	session = models.VotingSession{
		VotingCodeID: codeID,
		CategoryIDs:  categoryIDs,
		PendingVotes: map[string]uint{},
		CurrentIndex: 0,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	}
	err = r.db.Create(&session).Error
	if err == nil {
		return &session, true, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the insert race, use the existing session
		var existing models.VotingSession
		if err := r.db.Where("voting_code_id = ?", codeID).First(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to fetch session after insert race for code ID %d: %w", codeID, err)
		}
		return &existing, false, nil
	}
	return nil, false, fmt.Errorf("failed to create session for code ID %d: %w", codeID, err)
}

// GetByCodeID retrieves the session for a voting code
func (r *GormVotingSessionRepository) GetByCodeID(codeID uint) (*models.VotingSession, error) {
	var session models.VotingSession
	err := r.db.Where("voting_code_id = ?", codeID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session for code ID %d: %w", codeID, err)
	}
	return &session, nil
}

// SavePendingVotes persists the session's staged selections. The update goes
// through the schema field (Select + Updates on the model) so the JSON
// serializer applies; a raw column Update would hand the map to the driver.
func (r *GormVotingSessionRepository) SavePendingVotes(session *models.VotingSession) error {
	err := r.db.Model(session).Select("pending_votes").Updates(session).Error
	if err != nil {
		return fmt.Errorf("failed to save pending votes for session ID %d: %w", session.ID, err)
	}
	return nil
}

// SaveIndex persists the session's current category index
func (r *GormVotingSessionRepository) SaveIndex(session *models.VotingSession) error {
	err := r.db.Model(session).Update("current_index", session.CurrentIndex).Error
	if err != nil {
		return fmt.Errorf("failed to save index for session ID %d: %w", session.ID, err)
	}
	return nil
}

// CountCompleted returns the number of completed sessions (the live counter)
func (r *GormVotingSessionRepository) CountCompleted() (int64, error) {
	var count int64
	err := r.db.Model(&models.VotingSession{}).Where("is_completed = ?", true).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	return count, nil
}
