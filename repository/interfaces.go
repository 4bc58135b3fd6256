package repository

import (
	"github.com/mbrandt-dev/klassenvote-backend/models"
)

// PersonRepositoryInterface defines the methods for candidate data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	GetByID(id uint) (*models.Person, error)
	ListAll() ([]models.Person, error)
	Update(person *models.Person) error
	Delete(id uint) error
	Count() (int64, error)
}

// CategoryRepositoryInterface defines the methods for category data operations
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	GetByIDs(ids []uint) ([]models.Category, error)
	ListAll() ([]models.Category, error)
	ListActive() ([]models.Category, error)
	Update(category *models.Category) error
	UpdateImagePath(categoryID uint, imagePath *string) error
	Delete(id uint) error
}

// VotingCodeRepository defines the methods for voting code data operations
type VotingCodeRepository interface {
	Create(code *models.VotingCode) error
	GetByID(id uint) (*models.VotingCode, error)
	// GetActiveByCode matches active codes only, case-sensitive.
	GetActiveByCode(code string) (*models.VotingCode, error)
	Update(code *models.VotingCode) error
	Deactivate(id uint) error
	ListAll() ([]models.VotingCode, error)
	Delete(id uint) error
}

// VotingSessionRepository defines the methods for session data operations
type VotingSessionRepository interface {
	// GetOrCreate returns the existing session for the code or atomically
	// creates a fresh one with the given category snapshot. The bool reports
	// whether a new session was created.
	GetOrCreate(codeID uint, categoryIDs []uint, ipAddress, userAgent string) (*models.VotingSession, bool, error)
	GetByCodeID(codeID uint) (*models.VotingSession, error)
	SavePendingVotes(session *models.VotingSession) error
	SaveIndex(session *models.VotingSession) error
	CountCompleted() (int64, error)
}

// VoteRepository defines the methods for permanent vote records
type VoteRepository interface {
	CountByCategory(categoryID uint) (int64, error)
	// CountsByPerson returns per-person vote counts for a category.
	CountsByPerson(categoryID uint) ([]PersonVoteCount, error)
	ListByCode(codeID uint) ([]models.Vote, error)
	// Delete is the privileged override; votes are never edited.
	Delete(id uint) error
}

// PersonVoteCount is one group of the tally aggregation.
type PersonVoteCount struct {
	PersonID uint
	Count    int
}

// VoteStatisticRepository defines the methods for the derived tally cache
type VoteStatisticRepository interface {
	// ReplaceForCategory deletes all prior statistics rows for the category
	// and inserts the given set in a single transaction.
	ReplaceForCategory(categoryID uint, stats []models.VoteStatistic) error
	ListByCategory(categoryID uint) ([]models.VoteStatistic, error)
	// ListTopByCategory returns up to limit rows ordered by vote count
	// descending, then person first name ascending.
	ListTopByCategory(categoryID uint, limit int) ([]RankedStatistic, error)
}

// RankedStatistic is a statistics row joined with the person's names for display.
type RankedStatistic struct {
	PersonID   uint    `json:"person_id"`
	PersonName string  `json:"person_name"`
	FirstName  string  `json:"first_name"`
	VoteCount  int     `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

// UserRepository defines the methods for admin account operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Count() (int64, error)
}
