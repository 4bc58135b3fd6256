package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"gorm.io/gorm"
)

// GormVoteStatisticRepository handles database operations for the tally cache
type GormVoteStatisticRepository struct {
	db *gorm.DB
}

// NewGormVoteStatisticRepository creates a new instance of GormVoteStatisticRepository
func NewGormVoteStatisticRepository(db *gorm.DB) VoteStatisticRepository {
	return &GormVoteStatisticRepository{db: db}
}

// ReplaceForCategory swaps the category's statistics set in one transaction
// so no reader ever observes the empty intermediate state.
func (r *GormVoteStatisticRepository) ReplaceForCategory(categoryID uint, stats []models.VoteStatistic) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.VoteStatistic{}).Error; err != nil {
			return fmt.Errorf("failed to clear statistics for category ID %d: %w", categoryID, err)
		}
		if len(stats) == 0 {
			return nil
		}
		if err := tx.Create(&stats).Error; err != nil {
			return fmt.Errorf("failed to insert statistics for category ID %d: %w", categoryID, err)
		}
		return nil
	})
}

// ListByCategory retrieves the statistics rows for a category, highest count first
func (r *GormVoteStatisticRepository) ListByCategory(categoryID uint) ([]models.VoteStatistic, error) {
	var stats []models.VoteStatistic
	err := r.db.Where("category_id = ?", categoryID).
		Order("vote_count DESC, person_id ASC").
		Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics for category ID %d: %w", categoryID, err)
	}
	return stats, nil
}

// ListTopByCategory returns the top rows for a category joined with person
// names, ordered by vote count descending then first name ascending.
func (r *GormVoteStatisticRepository) ListTopByCategory(categoryID uint, limit int) ([]RankedStatistic, error) {
	queryBuilder := sqlite.Select(
		"vote_statistics.person_id",
		"people.name AS person_name",
		"people.first_name",
		"vote_statistics.vote_count",
		"vote_statistics.percentage",
	).
		From("vote_statistics").
		Join("people ON people.id = vote_statistics.person_id").
		Where(sq.Eq{"vote_statistics.category_id": categoryID}).
		OrderBy("vote_statistics.vote_count DESC", "people.first_name ASC").
		Limit(uint64(limit))

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListTopByCategory: %w", err)
	}

	var ranked []RankedStatistic
	if err := r.db.Raw(sqlStr, args...).Scan(&ranked).Error; err != nil {
		return nil, fmt.Errorf("failed to query top statistics for category ID %d: %w", categoryID, err)
	}
	return ranked, nil
}
