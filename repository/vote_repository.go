package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"gorm.io/gorm"
)

var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// GormVoteRepository handles database operations for permanent vote records.
// Votes are only ever created inside the finalize transaction; this
// repository covers the read side and the privileged delete override.
type GormVoteRepository struct {
	db *gorm.DB
}

// NewGormVoteRepository creates a new instance of GormVoteRepository
func NewGormVoteRepository(db *gorm.DB) VoteRepository {
	return &GormVoteRepository{db: db}
}

// CountByCategory returns the total number of votes finalized in a category
func (r *GormVoteRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for category ID %d: %w", categoryID, err)
	}
	return count, nil
}

// CountsByPerson groups a category's votes by person
func (r *GormVoteRepository) CountsByPerson(categoryID uint) ([]PersonVoteCount, error) {
	queryBuilder := sqlite.Select("person_id", "COUNT(*) AS count").
		From("votes").
		Where(sq.Eq{"category_id": categoryID}).
		GroupBy("person_id")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for CountsByPerson: %w", err)
	}

	var counts []PersonVoteCount
	if err := r.db.Raw(sqlStr, args...).Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to group votes for category ID %d: %w", categoryID, err)
	}
	return counts, nil
}

// ListByCode retrieves all votes finalized with a given code
func (r *GormVoteRepository) ListByCode(codeID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.Where("voting_code_id = ?", codeID).Order("created_at DESC").Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list votes for code ID %d: %w", codeID, err)
	}
	return votes, nil
}

// Delete removes a single vote record (privileged override only)
func (r *GormVoteRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Vote{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete vote ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
