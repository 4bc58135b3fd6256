package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"gorm.io/gorm"
)

// VotingService drives a code's session through the category sequence and
// performs the atomic finalization that turns staged selections into
// permanent votes.
type VotingService struct {
	db           *gorm.DB
	sessionRepo  repository.VotingSessionRepository
	categoryRepo repository.CategoryRepositoryInterface
	tally        *TallyService
}

// NewVotingService creates a new voting service
func NewVotingService(
	db *gorm.DB,
	sessionRepo repository.VotingSessionRepository,
	categoryRepo repository.CategoryRepositoryInterface,
	tally *TallyService,
) *VotingService {
	return &VotingService{
		db:           db,
		sessionRepo:  sessionRepo,
		categoryRepo: categoryRepo,
		tally:        tally,
	}
}

// StartOrResumeSession returns the code's session, creating one when the code
// is redeemed for the first time. New sessions snapshot the ordered active
// category ID list so later admin changes cannot shift indices mid-vote.
func (s *VotingService) StartOrResumeSession(code *models.VotingCode, ipAddress, userAgent string) (*models.VotingSession, error) {
	categories, err := s.categoryRepo.ListActive()
	if err != nil {
		return nil, err
	}
	categoryIDs := make([]uint, len(categories))
	for i, c := range categories {
		categoryIDs[i] = c.ID
	}

	session, created, err := s.sessionRepo.GetOrCreate(code.ID, categoryIDs, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("created voting session %d for code %s (%d categories)", session.ID, code.Code, len(categoryIDs))
	}
	return session, nil
}

// CurrentCategory returns the category at the session's current index, or
// nil when the index has stepped past the snapshot (the caller must then
// finalize).
func (s *VotingService) CurrentCategory(session *models.VotingSession) (*models.Category, error) {
	categoryID, ok := session.CurrentCategoryID()
	if !ok {
		return nil, nil
	}
	return s.categoryRepo.GetByID(categoryID)
}

// Categories returns the session's snapshotted categories in voting order
func (s *VotingService) Categories(session *models.VotingSession) ([]models.Category, error) {
	return s.categoryRepo.GetByIDs(session.CategoryIDs)
}

// StageVote records (or overwrites) the pending selection for a category.
// Person existence is validated by the caller before staging.
func (s *VotingService) StageVote(session *models.VotingSession, categoryID, personID uint) error {
	if session.IsCompleted {
		return ErrSessionCompleted
	}
	if session.PendingVotes == nil {
		session.PendingVotes = map[string]uint{}
	}
	session.PendingVotes[strconv.FormatUint(uint64(categoryID), 10)] = personID
	return s.sessionRepo.SavePendingVotes(session)
}

// Advance moves the session to the next category. Callers check
// IsFinalCategory first to decide between advancing and finalizing.
func (s *VotingService) Advance(session *models.VotingSession) error {
	if session.IsCompleted {
		return ErrSessionCompleted
	}
	session.CurrentIndex++
	return s.sessionRepo.SaveIndex(session)
}

// Regress moves the session back one category, floored at the first
func (s *VotingService) Regress(session *models.VotingSession) error {
	if session.IsCompleted {
		return ErrSessionCompleted
	}
	if session.CurrentIndex <= 0 {
		return nil
	}
	session.CurrentIndex--
	return s.sessionRepo.SaveIndex(session)
}

// Finalize atomically converts the session's staged selections into
// permanent votes, consumes one use of the code and completes the session.
// Any constraint violation (a concurrent finalize of the same session, a
// code spent in a race) rolls the whole group back and returns
// ErrFinalizationConflict; the session stays in progress for retry.
//
// Tally recomputation runs after the commit: a failure there leaves the
// statistics transiently stale but never un-finalizes the votes.
func (s *VotingService) Finalize(session *models.VotingSession) error {
	if session.IsCompleted {
		return ErrSessionCompleted
	}
	if len(session.PendingVotes) != len(session.CategoryIDs) {
		return ErrIncompleteBallot
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for categoryKey, personID := range session.PendingVotes {
			categoryID, err := strconv.ParseUint(categoryKey, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed pending vote key %q: %w", categoryKey, err)
			}
			vote := models.Vote{
				VotingCodeID: session.VotingCodeID,
				CategoryID:   uint(categoryID),
				PersonID:     personID,
				IPAddress:    session.IPAddress,
				UserAgent:    session.UserAgent,
			}
			if err := tx.Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrFinalizationConflict
				}
				return fmt.Errorf("failed to create vote for category %d: %w", categoryID, err)
			}
		}

		if err := repository.ConsumeUseTx(tx, session.VotingCodeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFinalizationConflict
			}
			return err
		}

		// the is_completed guard makes the completion flip first-wins
		result := tx.Model(&models.VotingSession{}).
			Where("id = ? AND is_completed = ?", session.ID, false).
			Update("is_completed", true)
		if result.Error != nil {
			return fmt.Errorf("failed to complete session ID %d: %w", session.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrFinalizationConflict
		}
		return nil
	})
	if err != nil {
		return err
	}

	session.IsCompleted = true

	for _, categoryID := range session.CategoryIDs {
		if err := s.tally.Recompute(categoryID); err != nil {
			log.Printf("tally recompute failed for category %d after finalizing session %d: %v", categoryID, session.ID, err)
		}
	}
	return nil
}
